// Package gateway abstracts request/response calls to the backend. The
// containers depend on the Gateway interface; the resty client is the one
// real implementation.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"shop-client/internal/domain"
)

// ErrAuthRequired means the backend rejected the call for want of a valid
// session. Containers switch to local-only mode on it instead of failing.
var ErrAuthRequired = errors.New("gateway: authentication required")

// RemoteError is a transient remote failure with a message the caller can
// show. State is left at its last-known-good value; the containers never
// retry on their own.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("remote: %s", e.Message)
	}
	return fmt.Sprintf("remote: %s (status %d)", e.Message, e.Status)
}

// TokenSource provides the current session token, if any.
type TokenSource interface {
	Token() (string, bool)
}

type Gateway interface {
	FetchOrders(ctx context.Context) ([]domain.Order, error)
	CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error)
	FetchWishlist(ctx context.Context) ([]domain.WishlistEntry, error)
	AddWishlistItem(ctx context.Context, productID string) error
	RemoveWishlistItem(ctx context.Context, productID string) error
	FetchAddresses(ctx context.Context) ([]domain.Address, error)
}
