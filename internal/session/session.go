package session

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/persist"
	"shop-client/internal/pricing"
	"shop-client/internal/push"
	"shop-client/internal/store"
)

// Options carries the push-channel coordinates.
type Options struct {
	AMQPURL       string
	OrderExchange string
}

// Session wires one user's containers together with the push channel.
// Lifecycle is create → Start → use → Close; nothing here is a process
// global, so two sessions never share state.
type Session struct {
	Cart     *store.Cart
	Wishlist *store.Wishlist
	Orders   *store.Orders
	Tokens   *TokenStore
	Push     *push.Channel

	gw       gateway.Gateway
	opts     Options
	consumer *push.Consumer
	unsubs   []func()
	log      *logrus.Entry
}

func New(gw gateway.Gateway, adapter persist.Adapter, pcfg pricing.Config, tokens *TokenStore, opts Options) *Session {
	cart := store.NewCart(pcfg, adapter)
	return &Session{
		Cart:     cart,
		Wishlist: store.NewWishlist(gw, adapter),
		Orders:   store.NewOrders(gw, adapter, cart),
		Tokens:   tokens,
		Push:     push.NewChannel(),
		gw:       gw,
		opts:     opts,
		log:      logrus.WithField("component", "session"),
	}
}

// Start connects the push channel when a token is present and performs
// the initial reconciliation: the order load and the wishlist sync run in
// parallel. A dead push broker degrades to polling-by-user-action, it
// does not fail the session.
func (s *Session) Start(ctx context.Context) error {
	if _, ok := s.Tokens.Token(); ok {
		userID, _ := s.Tokens.UserID()
		if userID == "" {
			userID = "anonymous"
		}
		consumer, err := push.NewConsumer(s.opts.AMQPURL, s.opts.OrderExchange, userID, s.Push)
		if err != nil {
			s.log.WithError(err).Warn("push channel unavailable, continuing without live updates")
		} else {
			s.consumer = consumer
			s.unsubs = append(s.unsubs,
				s.Push.Subscribe(domain.EventOrderCreated, s.Orders.HandlePush),
				s.Push.Subscribe(domain.EventOrderStatusUpdated, s.Orders.HandlePush),
			)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Orders.Load(ctx) })
	g.Go(func() error { return s.Wishlist.Sync(ctx) })
	return g.Wait()
}

// Addresses is the checkout read path; the core only passes it through.
func (s *Session) Addresses(ctx context.Context) ([]domain.Address, error) {
	return s.gw.FetchAddresses(ctx)
}

// Close releases every push registration and drains pending cart writes.
// It is safe to call on a session that never started.
func (s *Session) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	if s.consumer != nil {
		s.consumer.Close()
		s.consumer = nil
	}
	s.Push.Close()
	s.Cart.Close()
}
