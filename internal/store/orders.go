package store

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/metrics"
	"shop-client/internal/persist"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrTerminalStatus = errors.New("order is in a terminal status")
)

// CartClearer is the one cross-container effect the order store performs:
// a successful order placement empties the cart through an explicit call.
type CartClearer interface {
	Clear()
}

// Orders mirrors the remote order list. The remote service is the single
// source of truth for status transitions; this container only reconciles.
// A load that loses the race against a newer load is dropped, never
// applied: the last issued request wins.
type Orders struct {
	mu        sync.Mutex
	orders    []domain.Order
	stale     bool
	lastErr   error
	localOnly bool

	// loadSeq hands out request sequence numbers; appliedSeq (guarded by
	// mu) records the newest request whose outcome has been applied.
	loadSeq    uint64
	appliedSeq uint64

	gw      gateway.Gateway
	adapter persist.Adapter
	cart    CartClearer
	log     *logrus.Entry
}

func NewOrders(gw gateway.Gateway, adapter persist.Adapter, cart CartClearer) *Orders {
	o := &Orders{
		gw:      gw,
		adapter: adapter,
		cart:    cart,
		log:     logrus.WithField("component", "orders"),
	}
	o.hydrate()
	return o
}

// hydrate restores the cached list for offline display before the first
// remote load completes.
func (o *Orders) hydrate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := o.adapter.Get(ctx, persist.KeyOrdersCache)
	if err != nil {
		if err != persist.ErrNotFound {
			o.log.WithError(err).Warn("failed to restore orders cache")
		}
		return
	}
	var orders []domain.Order
	if err := json.Unmarshal(b, &orders); err != nil {
		o.log.WithError(err).Warn("discarding corrupt orders cache")
		return
	}
	o.orders = orders
	o.stale = true
}

func (o *Orders) persistLocked(ctx context.Context) {
	b, err := json.Marshal(o.orders)
	if err != nil {
		o.log.WithError(err).Error("failed to marshal orders cache")
		return
	}
	if err := o.adapter.Set(ctx, persist.KeyOrdersCache, b); err != nil {
		metrics.PersistFailures.WithLabelValues(persist.KeyOrdersCache).Inc()
		o.log.WithError(err).Warn("failed to persist orders cache")
	}
}

// Load fetches the remote order list and replaces the in-memory list
// wholesale. Responses are applied at most once and only if no response
// from a later request has been applied already, so an older response
// arriving after a newer one can never clobber it. On failure the
// last-known list is kept and the stale flag is set.
func (o *Orders) Load(ctx context.Context) error {
	seq := atomic.AddUint64(&o.loadSeq, 1)

	orders, err := o.gw.FetchOrders(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if seq <= o.appliedSeq {
		// A newer request already settled; this outcome is obsolete.
		metrics.OrderLoads.WithLabelValues("superseded").Inc()
		return nil
	}
	o.appliedSeq = seq

	if err != nil {
		if errors.Is(err, gateway.ErrAuthRequired) {
			// Not fatal: serve the cached list in local-only mode.
			o.localOnly = true
			metrics.OrderLoads.WithLabelValues("auth").Inc()
			o.log.Info("not authenticated, serving cached orders")
			return nil
		}
		o.stale = true
		o.lastErr = err
		metrics.OrderLoads.WithLabelValues("error").Inc()
		return err
	}

	for i := range orders {
		orders[i].Normalize()
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	o.orders = orders
	o.stale = false
	o.lastErr = nil
	o.localOnly = false
	o.persistLocked(ctx)
	metrics.OrderLoads.WithLabelValues("ok").Inc()
	return nil
}

// Create validates the draft before any network call, submits it, and on
// success prepends the returned order and clears the cart. A failed call
// leaves every container untouched; retrying is the caller's decision.
func (o *Orders) Create(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	created, err := o.gw.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}
	created.Normalize()

	o.mu.Lock()
	o.orders = append([]domain.Order{*created}, o.orders...)
	o.persistLocked(ctx)
	o.mu.Unlock()

	o.cart.Clear()
	return created, nil
}

// Cancel asks the server to cancel and, once the server confirms, mirrors
// the cancelled status locally. Terminal orders are rejected before the
// network call since no transition can leave a terminal state.
func (o *Orders) Cancel(ctx context.Context, orderID, reason string) error {
	o.mu.Lock()
	idx := o.indexLocked(orderID)
	if idx < 0 {
		o.mu.Unlock()
		return ErrOrderNotFound
	}
	if o.orders[idx].OrderStatus.Terminal() {
		o.mu.Unlock()
		return ErrTerminalStatus
	}
	o.mu.Unlock()

	if _, err := o.gw.CancelOrder(ctx, orderID, reason); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if idx := o.indexLocked(orderID); idx >= 0 {
		o.orders[idx].OrderStatus = domain.StatusCancelled
		o.persistLocked(ctx)
	}
	return nil
}

func (o *Orders) indexLocked(orderID string) int {
	for i := range o.orders {
		if o.orders[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

// HandlePush treats any order notification as a signal to refetch. The
// payload is not trusted beyond that: applying a possibly partial or
// stale delta would let the list drift.
func (o *Orders) HandlePush(evt domain.PushEvent) {
	o.log.WithFields(logrus.Fields{"kind": evt.Kind, "orderId": evt.OrderID}).Debug("push notification, reloading orders")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.Load(ctx); err != nil {
		o.log.WithError(err).Warn("push-triggered reload failed")
	}
}

// All returns a copy of the current list, newest first.
func (o *Orders) All() []domain.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.Order, len(o.orders))
	copy(out, o.orders)
	return out
}

func (o *Orders) Get(orderID string) (domain.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if idx := o.indexLocked(orderID); idx >= 0 {
		return o.orders[idx], true
	}
	return domain.Order{}, false
}

// Stale reports whether the list may lag the server, with the error that
// caused it (nil when only the initial cache hydrate has run).
func (o *Orders) Stale() (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stale, o.lastErr
}

// LocalOnly reports whether the last load stopped at authentication.
func (o *Orders) LocalOnly() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.localOnly
}
