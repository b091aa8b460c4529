package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/session"
	"shop-client/internal/store"
)

// Handler exposes the session's container operations over HTTP. It is the
// surface the UI layer calls; all semantics live in the stores.
type Handler struct {
	session *session.Session
}

func NewHandler(s *session.Session) *Handler {
	return &Handler{session: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/cart", h.GetCart)
	r.POST("/cart/items", h.AddCartItem)
	r.PUT("/cart/items/:productId", h.SetCartQuantity)
	r.DELETE("/cart/items/:productId", h.RemoveCartItem)
	r.DELETE("/cart", h.ClearCart)

	r.GET("/wishlist", h.GetWishlist)
	r.POST("/wishlist/items", h.AddWishlistItem)
	r.DELETE("/wishlist/items/:productId", h.RemoveWishlistItem)
	r.POST("/wishlist/sync", h.SyncWishlist)

	r.GET("/orders", h.GetOrders)
	r.GET("/orders/:orderId", h.GetOrder)
	r.POST("/orders", h.CreateOrder)
	r.POST("/orders/:orderId/cancel", h.CancelOrder)
	r.POST("/orders/refresh", h.RefreshOrders)

	r.GET("/addresses", h.GetAddresses)

	r.POST("/auth/token", h.SetToken)
	r.DELETE("/auth/token", h.ClearToken)
}

// failure maps the error taxonomy onto status codes; the message is the
// caller-presentable part of the result.
func failure(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gateway.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, domain.ErrInvalidDraft):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrTerminalStatus):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}

func (h *Handler) cartView() cartView {
	return cartView{
		Lines:     h.session.Cart.Lines(),
		Totals:    h.session.Cart.Totals(),
		LineCount: h.session.Cart.LineCount(),
	}
}

func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.session.Cart.Add(req.product())
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) SetCartQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.session.Cart.SetQuantity(c.Param("productId"), req.Quantity)
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	h.session.Cart.Remove(c.Param("productId"))
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) ClearCart(c *gin.Context) {
	h.session.Cart.Clear()
	c.JSON(http.StatusOK, h.cartView())
}

func (h *Handler) GetWishlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"wishlist": h.session.Wishlist.Entries()})
}

func (h *Handler) AddWishlistItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	added := h.session.Wishlist.Add(c.Request.Context(), req.product())
	c.JSON(http.StatusOK, gin.H{"added": added, "wishlist": h.session.Wishlist.Entries()})
}

func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	h.session.Wishlist.Remove(c.Request.Context(), c.Param("productId"))
	c.JSON(http.StatusOK, gin.H{"wishlist": h.session.Wishlist.Entries()})
}

func (h *Handler) SyncWishlist(c *gin.Context) {
	if err := h.session.Wishlist.Sync(c.Request.Context()); err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wishlist": h.session.Wishlist.Entries()})
}

func (h *Handler) ordersView() ordersView {
	stale, lastErr := h.session.Orders.Stale()
	view := ordersView{
		Orders:    h.session.Orders.All(),
		Stale:     stale,
		LocalOnly: h.session.Orders.LocalOnly(),
	}
	if lastErr != nil {
		view.Error = lastErr.Error()
	}
	return view
}

func (h *Handler) GetOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.ordersView())
}

func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.session.Orders.Get(c.Param("orderId"))
	if !ok {
		failure(c, store.ErrOrderNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) RefreshOrders(c *gin.Context) {
	if err := h.session.Orders.Load(c.Request.Context()); err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ordersView())
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := domain.OrderDraft{
		Items:           h.session.Cart.Lines(),
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
		Notes:           req.Notes,
		ClientRequestID: uuid.NewString(),
	}
	order, err := h.session.Orders.Create(c.Request.Context(), draft)
	if err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *Handler) CancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.session.Orders.Cancel(c.Request.Context(), c.Param("orderId"), req.Reason); err != nil {
		failure(c, err)
		return
	}
	order, _ := h.session.Orders.Get(c.Param("orderId"))
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *Handler) GetAddresses(c *gin.Context) {
	addresses, err := h.session.Addresses(c.Request.Context())
	if err != nil {
		failure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

func (h *Handler) SetToken(c *gin.Context) {
	var req setTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.session.Tokens.SetToken(c.Request.Context(), req.Token); err != nil {
		failure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ClearToken(c *gin.Context) {
	if err := h.session.Tokens.Clear(c.Request.Context()); err != nil {
		failure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
