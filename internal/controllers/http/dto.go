package http

import (
	"shop-client/internal/domain"
	"shop-client/internal/pricing"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Price     int64  `json:"price" binding:"min=0"`
	Stock     int64  `json:"stock" binding:"min=0"`
	Image     string `json:"image"`
}

func (r addCartItemRequest) product() domain.Product {
	return domain.Product{ID: r.ProductID, Name: r.Name, Price: r.Price, Stock: r.Stock, Image: r.Image}
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type cancelOrderRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type createOrderRequest struct {
	DeliveryAddress domain.Address `json:"deliveryAddress" binding:"required"`
	PaymentMethod   string         `json:"paymentMethod" binding:"required"`
	Notes           string         `json:"notes"`
}

type setTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type cartView struct {
	Lines     []domain.CartLine `json:"lines"`
	Totals    pricing.Totals    `json:"totals"`
	LineCount int               `json:"lineCount"`
}

type ordersView struct {
	Orders    []domain.Order `json:"orders"`
	Stale     bool           `json:"stale"`
	LocalOnly bool           `json:"localOnly"`
	Error     string         `json:"error,omitempty"`
}
