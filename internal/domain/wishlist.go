package domain

import "time"

// WishlistEntry holds a saved product. The snapshot is for offline display
// and gets refreshed opportunistically when the remote list is pulled.
// AddedAt is set once at creation and never mutated.
type WishlistEntry struct {
	ProductID string    `json:"productId"`
	Product   Product   `json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}
