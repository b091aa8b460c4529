package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/metrics"
	"shop-client/internal/persist"
)

// Wishlist holds the saved items. Local mutation is applied first and the
// remote sync is best-effort: the wishlist is allowed to be eventually
// consistent, favoring the client, so the UI stays responsive.
type Wishlist struct {
	mu      sync.Mutex
	entries []domain.WishlistEntry

	gw      gateway.Gateway
	adapter persist.Adapter
	log     *logrus.Entry
}

func NewWishlist(gw gateway.Gateway, adapter persist.Adapter) *Wishlist {
	w := &Wishlist{
		gw:      gw,
		adapter: adapter,
		log:     logrus.WithField("component", "wishlist"),
	}
	w.hydrate()
	return w
}

func (w *Wishlist) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := w.adapter.Get(ctx, persist.KeyWishlistEntries)
	if err != nil {
		if err != persist.ErrNotFound {
			w.log.WithError(err).Warn("failed to restore wishlist snapshot")
		}
		return
	}
	var entries []domain.WishlistEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		w.log.WithError(err).Warn("discarding corrupt wishlist snapshot")
		return
	}
	w.entries = entries
}

func (w *Wishlist) persistLocked(ctx context.Context) {
	b, err := json.Marshal(w.entries)
	if err != nil {
		w.log.WithError(err).Error("failed to marshal wishlist")
		return
	}
	if err := w.adapter.Set(ctx, persist.KeyWishlistEntries, b); err != nil {
		metrics.PersistFailures.WithLabelValues(persist.KeyWishlistEntries).Inc()
		w.log.WithError(err).Warn("failed to persist wishlist")
	}
}

// Add saves the product locally and reports whether a new entry was
// created; a duplicate productId is a no-op, not an error, and keeps the
// original addedAt. The remote add is best-effort: its failure is logged
// and the local entry stays.
func (w *Wishlist) Add(ctx context.Context, p domain.Product) bool {
	w.mu.Lock()
	for _, e := range w.entries {
		if e.ProductID == p.ID {
			w.mu.Unlock()
			return false
		}
	}
	w.entries = append(w.entries, domain.WishlistEntry{
		ProductID: p.ID,
		Product:   p,
		AddedAt:   time.Now().UTC(),
	})
	w.persistLocked(ctx)
	w.mu.Unlock()

	if err := w.gw.AddWishlistItem(ctx, p.ID); err != nil {
		metrics.WishlistRemoteFailures.WithLabelValues("add").Inc()
		w.log.WithError(err).WithField("productId", p.ID).Warn("remote wishlist add failed, keeping local entry")
	}
	return true
}

// Remove deletes locally first; the symmetric remote removal is attempted
// afterwards and its failure is logged, not surfaced. Local truth wins.
func (w *Wishlist) Remove(ctx context.Context, productID string) {
	w.mu.Lock()
	found := false
	for i, e := range w.entries {
		if e.ProductID == productID {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			found = true
			break
		}
	}
	if found {
		w.persistLocked(ctx)
	}
	w.mu.Unlock()

	if err := w.gw.RemoveWishlistItem(ctx, productID); err != nil {
		metrics.WishlistRemoteFailures.WithLabelValues("remove").Inc()
		w.log.WithError(err).WithField("productId", productID).Warn("remote wishlist remove failed")
	}
}

// Sync pulls the authoritative remote list and replaces local entries.
// An auth-required response leaves the local list alone: the wishlist
// keeps operating in local-only mode.
func (w *Wishlist) Sync(ctx context.Context) error {
	entries, err := w.gw.FetchWishlist(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrAuthRequired) {
			w.log.Info("not authenticated, wishlist stays local-only")
			return nil
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = entries
	w.persistLocked(ctx)
	return nil
}

// Entries returns a copy of the saved items.
func (w *Wishlist) Entries() []domain.WishlistEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.WishlistEntry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Contains reports whether a product is already saved.
func (w *Wishlist) Contains(productID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, e := range w.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}
