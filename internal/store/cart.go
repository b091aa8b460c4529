// Package store holds the three state containers: cart, wishlist and
// orders. Each container owns its slice of state exclusively; mutations
// are serialized so back-to-back calls always observe each other's
// effects in call order. Cross-container effects go through explicit
// collaborator interfaces, never shared references.
package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"shop-client/internal/domain"
	"shop-client/internal/metrics"
	"shop-client/internal/persist"
	"shop-client/internal/pricing"
)

// Cart holds the cart lines and their derived totals. Every mutation
// recomputes totals and enqueues a snapshot write; persistence is
// best-effort and never rolls back the in-memory state.
type Cart struct {
	mu     sync.Mutex
	lines  []domain.CartLine
	totals pricing.Totals
	cfg    pricing.Config

	adapter persist.Adapter
	writes  chan []byte
	wg      sync.WaitGroup
	log     *logrus.Entry
}

func NewCart(cfg pricing.Config, adapter persist.Adapter) *Cart {
	c := &Cart{
		cfg:     cfg,
		adapter: adapter,
		writes:  make(chan []byte, 16),
		log:     logrus.WithField("component", "cart"),
	}
	c.hydrate()
	c.totals = pricing.ComputeTotals(c.lines, c.cfg)

	c.wg.Add(1)
	go c.writer()
	return c
}

// hydrate restores the last persisted snapshot so a restart shows the
// previous session's cart before any user action.
func (c *Cart) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := c.adapter.Get(ctx, persist.KeyCartLines)
	if err != nil {
		if err != persist.ErrNotFound {
			c.log.WithError(err).Warn("failed to restore cart snapshot")
		}
		return
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(b, &lines); err != nil {
		c.log.WithError(err).Warn("discarding corrupt cart snapshot")
		return
	}
	c.lines = lines
}

// writer applies snapshot writes one at a time, in issue order. Failures
// are logged and counted; the live session is never compromised by them.
func (c *Cart) writer() {
	defer c.wg.Done()
	for b := range c.writes {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.adapter.Set(ctx, persist.KeyCartLines, b); err != nil {
			metrics.PersistFailures.WithLabelValues(persist.KeyCartLines).Inc()
			c.log.WithError(err).Warn("failed to persist cart")
		}
		cancel()
	}
}

// persistLocked marshals the current lines and hands them to the writer.
// Called with the mutex held so writes are enqueued in mutation order.
func (c *Cart) persistLocked() {
	b, err := json.Marshal(c.lines)
	if err != nil {
		c.log.WithError(err).Error("failed to marshal cart")
		return
	}
	c.writes <- b
}

func clampQuantity(n, stock int64) int64 {
	if n < 0 {
		return 0
	}
	if n > stock {
		return stock
	}
	return n
}

// Add inserts the product with quantity 1, or bumps an existing line by
// one, clamped to stock. The line's price and stock are refreshed from
// the given product since the catalog may have changed underneath it.
func (c *Cart) Add(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Name = p.Name
			c.lines[i].UnitPrice = p.Price
			c.lines[i].Stock = p.Stock
			c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity+1, p.Stock)
			if c.lines[i].Quantity == 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			}
			c.recomputeLocked()
			return
		}
	}
	if p.Stock <= 0 {
		return
	}
	c.lines = append(c.lines, domain.CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Stock:     p.Stock,
		Quantity:  1,
	})
	c.recomputeLocked()
}

// Remove deletes the line unconditionally; absent lines are a no-op.
func (c *Cart) Remove(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.recomputeLocked()
			return
		}
	}
}

// SetQuantity clamps n to [0, stock]; zero removes the line.
func (c *Cart) SetQuantity(productID string, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			q := clampQuantity(n, c.lines[i].Stock)
			if q == 0 {
				c.lines = append(c.lines[:i], c.lines[i+1:]...)
			} else {
				c.lines[i].Quantity = q
			}
			c.recomputeLocked()
			return
		}
	}
}

// Clear empties the cart; called after a successful order placement.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.recomputeLocked()
}

func (c *Cart) recomputeLocked() {
	c.totals = pricing.ComputeTotals(c.lines, c.cfg)
	c.persistLocked()
}

// Lines returns a copy; the cart's lines are never shared by reference.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Totals() pricing.Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

func (c *Cart) LineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Close drains pending snapshot writes.
func (c *Cart) Close() {
	close(c.writes)
	c.wg.Wait()
}
