// Package persist is the scoped durable key/value store every container
// writes its snapshots through. Values are opaque JSON blobs; the store
// must survive process restart.
package persist

import (
	"context"
	"errors"
)

// Logical keys the containers persist under.
const (
	KeyCartLines       = "cart.lines"
	KeyWishlistEntries = "wishlist.entries"
	KeyOrdersCache     = "orders.cache"
	KeyAuthToken       = "auth.token"
)

// ErrNotFound distinguishes a missing key from a storage failure.
var ErrNotFound = errors.New("persist: key not found")

type Adapter interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
