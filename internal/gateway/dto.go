package gateway

import (
	"time"

	"shop-client/internal/domain"
)

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type orderResponse struct {
	Order domain.Order `json:"order"`
}

type wishlistResponse struct {
	Wishlist []wishlistItem `json:"wishlist"`
}

type addressesResponse struct {
	Addresses []domain.Address `json:"addresses"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type wishlistItemRequest struct {
	ProductID string `json:"productId"`
}

// wishlistItem accepts both wire shapes the backend has shipped: the flat
// one with the product at top level, and the legacy one nested under
// item.product. normalize folds either into the canonical entry.
type wishlistItem struct {
	ProductID string          `json:"productId"`
	Product   *domain.Product `json:"product"`
	AddedAt   time.Time       `json:"addedAt"`
	Item      *struct {
		Product *domain.Product `json:"product"`
		AddedAt time.Time       `json:"addedAt"`
	} `json:"item"`
}

func (w wishlistItem) normalize() (domain.WishlistEntry, bool) {
	p := w.Product
	addedAt := w.AddedAt
	if p == nil && w.Item != nil {
		p = w.Item.Product
		if addedAt.IsZero() {
			addedAt = w.Item.AddedAt
		}
	}
	if p == nil {
		return domain.WishlistEntry{}, false
	}
	id := w.ProductID
	if id == "" {
		id = p.ID
	}
	if id == "" {
		return domain.WishlistEntry{}, false
	}
	return domain.WishlistEntry{ProductID: id, Product: *p, AddedAt: addedAt}, true
}
