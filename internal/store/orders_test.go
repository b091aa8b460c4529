package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/mocks"
	"shop-client/internal/persist"
	"shop-client/internal/pricing"
)

func newTestOrders(t *testing.T, gw gateway.Gateway) (*Orders, *Cart, *persist.Memory) {
	t.Helper()
	mem := persist.NewMemory()
	cart := NewCart(pricing.DefaultConfig(), mem)
	t.Cleanup(cart.Close)
	return NewOrders(gw, mem, cart), cart, mem
}

func TestOrdersLoad(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name       string
		setupMocks func(*mocks.MockGateway)
		wantErr    bool
		wantIDs    []string
		wantStale  bool
	}{
		{
			name: "replaces list wholesale, newest first",
			setupMocks: func(gw *mocks.MockGateway) {
				gw.On("FetchOrders", mock.Anything).Return([]domain.Order{
					testOrder("o1", domain.StatusPending, now.Add(-2*time.Hour)),
					testOrder("o2", domain.StatusConfirmed, now),
					testOrder("o3", domain.StatusPreparing, now.Add(-time.Hour)),
				}, nil)
			},
			wantIDs: []string{"o2", "o3", "o1"},
		},
		{
			name: "normalizes legacy status field",
			setupMocks: func(gw *mocks.MockGateway) {
				legacy := testOrder("o1", "", now)
				legacy.LegacyStatus = domain.StatusOutForDelivery
				gw.On("FetchOrders", mock.Anything).Return([]domain.Order{legacy}, nil)
			},
			wantIDs: []string{"o1"},
		},
		{
			name: "transient failure keeps nothing but flags stale",
			setupMocks: func(gw *mocks.MockGateway) {
				gw.On("FetchOrders", mock.Anything).Return(nil, &gateway.RemoteError{Message: "timeout"})
			},
			wantErr:   true,
			wantStale: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(mocks.MockGateway)
			tt.setupMocks(gw)
			o, _, _ := newTestOrders(t, gw)

			err := o.Load(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			got := o.All()
			ids := make([]string, len(got))
			for i, ord := range got {
				ids[i] = ord.OrderID
				assert.True(t, ord.OrderStatus.Valid(), "order %s has status %q", ord.OrderID, ord.OrderStatus)
				assert.Empty(t, ord.LegacyStatus)
			}
			if len(tt.wantIDs) > 0 {
				assert.Equal(t, tt.wantIDs, ids)
			}

			stale, _ := o.Stale()
			assert.Equal(t, tt.wantStale, stale)
			gw.AssertExpectations(t)
		})
	}
}

func TestOrdersLoadFailureKeepsLastKnownList(t *testing.T) {
	now := time.Now().UTC()
	gw := new(mocks.MockGateway)
	gw.On("FetchOrders", mock.Anything).Return([]domain.Order{testOrder("o1", domain.StatusPending, now)}, nil).Once()
	gw.On("FetchOrders", mock.Anything).Return(nil, &gateway.RemoteError{Message: "timeout"}).Once()

	o, _, _ := newTestOrders(t, gw)
	require.NoError(t, o.Load(context.Background()))
	require.Error(t, o.Load(context.Background()))

	// The failed load did not clear the previous data.
	require.Len(t, o.All(), 1)
	stale, lastErr := o.Stale()
	assert.True(t, stale)
	assert.Error(t, lastErr)
}

func TestOrdersLoadAuthRequiredServesCache(t *testing.T) {
	now := time.Now().UTC()
	mem := persist.NewMemory()
	cached, _ := json.Marshal([]domain.Order{testOrder("o1", domain.StatusDelivered, now)})
	require.NoError(t, mem.Set(context.Background(), persist.KeyOrdersCache, cached))

	gw := new(mocks.MockGateway)
	gw.On("FetchOrders", mock.Anything).Return(nil, gateway.ErrAuthRequired)

	cart := NewCart(pricing.DefaultConfig(), mem)
	t.Cleanup(cart.Close)
	o := NewOrders(gw, mem, cart)

	// Not authenticated is handled gracefully: no error, cache intact.
	require.NoError(t, o.Load(context.Background()))
	assert.True(t, o.LocalOnly())
	require.Len(t, o.All(), 1)
	assert.Equal(t, "o1", o.All()[0].OrderID)
}

func TestOrdersLastResponseWins(t *testing.T) {
	now := time.Now().UTC()
	oldList := []domain.Order{testOrder("old", domain.StatusPending, now.Add(-time.Hour))}
	newList := []domain.Order{testOrder("new", domain.StatusConfirmed, now)}

	entered := make(chan struct{})
	release := make(chan struct{})

	gw := new(mocks.MockGateway)
	// The first load stalls in flight until the second one has finished.
	gw.On("FetchOrders", mock.Anything).Once().Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(oldList, nil)
	gw.On("FetchOrders", mock.Anything).Once().Return(newList, nil)

	o, _, _ := newTestOrders(t, gw)

	firstDone := make(chan error, 1)
	go func() { firstDone <- o.Load(context.Background()) }()
	<-entered

	require.NoError(t, o.Load(context.Background()))
	close(release)
	require.NoError(t, <-firstDone)

	// The older response arrived last but must not overwrite the newer one.
	got := o.All()
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].OrderID)
	gw.AssertExpectations(t)
}

func TestOrdersCreateClearsCartOnSuccess(t *testing.T) {
	gw := new(mocks.MockGateway)
	gw.On("CreateOrder", mock.Anything, mock.AnythingOfType("domain.OrderDraft")).
		Return(&domain.Order{OrderID: "o9", OrderStatus: domain.StatusPending, CreatedAt: time.Now()}, nil)

	o, cart, _ := newTestOrders(t, gw)
	cart.Add(testProduct("p1", 200, 10))
	cart.Add(testProduct("p1", 200, 10))

	created, err := o.Create(context.Background(), testDraft(cart.Lines()))
	require.NoError(t, err)
	assert.Equal(t, "o9", created.OrderID)

	assert.Zero(t, cart.LineCount())
	require.Len(t, o.All(), 1)
	assert.Equal(t, "o9", o.All()[0].OrderID)
}

func TestOrdersCreateFailureLeavesEverythingUntouched(t *testing.T) {
	gw := new(mocks.MockGateway)
	gw.On("CreateOrder", mock.Anything, mock.AnythingOfType("domain.OrderDraft")).
		Return(nil, &gateway.RemoteError{Message: "payment declined"})

	o, cart, _ := newTestOrders(t, gw)
	cart.Add(testProduct("p1", 200, 10))

	_, err := o.Create(context.Background(), testDraft(cart.Lines()))
	require.Error(t, err)

	var remoteErr *gateway.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "payment declined", remoteErr.Message)

	assert.Equal(t, 1, cart.LineCount())
	assert.Empty(t, o.All())
}

func TestOrdersCreateRejectsMalformedDraftBeforeNetwork(t *testing.T) {
	gw := new(mocks.MockGateway) // no expectations: any call fails the test
	o, cart, _ := newTestOrders(t, gw)
	cart.Add(testProduct("p1", 200, 10))

	draft := testDraft(cart.Lines())
	draft.DeliveryAddress = domain.Address{}

	_, err := o.Create(context.Background(), draft)
	require.ErrorIs(t, err, domain.ErrInvalidDraft)
	assert.Equal(t, 1, cart.LineCount())
	gw.AssertExpectations(t)
}

func TestOrdersSnapshotImmuneToCatalogChanges(t *testing.T) {
	// The server snapshots the draft lines at creation time.
	created := &domain.Order{
		OrderID: "o1",
		Items: []domain.OrderLine{
			{ProductID: "p1", Name: "Product p1", UnitPrice: 200, Quantity: 1, LineTotal: 200},
		},
		OrderStatus: domain.StatusPending,
		CreatedAt:   time.Now(),
	}
	gw := new(mocks.MockGateway)
	var submitted domain.OrderDraft
	gw.On("CreateOrder", mock.Anything, mock.AnythingOfType("domain.OrderDraft")).
		Run(func(args mock.Arguments) {
			submitted = args.Get(1).(domain.OrderDraft)
		}).
		Return(created, nil)

	o, cart, _ := newTestOrders(t, gw)
	cart.Add(testProduct("p1", 200, 10))

	_, err := o.Create(context.Background(), testDraft(cart.Lines()))
	require.NoError(t, err)
	require.Len(t, submitted.Items, 1)
	assert.Equal(t, int64(200), submitted.Items[0].UnitPrice)

	// The catalog price changes afterwards; the order line must not follow.
	cart.Add(testProduct("p1", 999, 10))

	order, ok := o.Get("o1")
	require.True(t, ok)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(200), order.Items[0].UnitPrice)
}

func TestOrdersCancel(t *testing.T) {
	now := time.Now().UTC()

	t.Run("mirrors the confirmed cancellation", func(t *testing.T) {
		gw := new(mocks.MockGateway)
		gw.On("FetchOrders", mock.Anything).Return([]domain.Order{testOrder("o1", domain.StatusPending, now)}, nil)
		cancelled := testOrder("o1", domain.StatusCancelled, now)
		gw.On("CancelOrder", mock.Anything, "o1", "changed my mind").Return(&cancelled, nil)

		o, _, _ := newTestOrders(t, gw)
		require.NoError(t, o.Load(context.Background()))

		require.NoError(t, o.Cancel(context.Background(), "o1", "changed my mind"))
		got, _ := o.Get("o1")
		assert.Equal(t, domain.StatusCancelled, got.OrderStatus)
	})

	t.Run("remote failure leaves status untouched", func(t *testing.T) {
		gw := new(mocks.MockGateway)
		gw.On("FetchOrders", mock.Anything).Return([]domain.Order{testOrder("o1", domain.StatusPending, now)}, nil)
		gw.On("CancelOrder", mock.Anything, "o1", "reason").Return(nil, &gateway.RemoteError{Message: "too late"})

		o, _, _ := newTestOrders(t, gw)
		require.NoError(t, o.Load(context.Background()))

		require.Error(t, o.Cancel(context.Background(), "o1", "reason"))
		got, _ := o.Get("o1")
		assert.Equal(t, domain.StatusPending, got.OrderStatus)
	})

	t.Run("terminal orders rejected before the network call", func(t *testing.T) {
		gw := new(mocks.MockGateway)
		gw.On("FetchOrders", mock.Anything).Return([]domain.Order{testOrder("o1", domain.StatusDelivered, now)}, nil)

		o, _, _ := newTestOrders(t, gw)
		require.NoError(t, o.Load(context.Background()))

		assert.ErrorIs(t, o.Cancel(context.Background(), "o1", "reason"), ErrTerminalStatus)
		gw.AssertExpectations(t)
	})

	t.Run("unknown order", func(t *testing.T) {
		gw := new(mocks.MockGateway)
		o, _, _ := newTestOrders(t, gw)
		assert.ErrorIs(t, o.Cancel(context.Background(), "ghost", "reason"), ErrOrderNotFound)
	})
}

func TestOrdersHandlePushTriggersReload(t *testing.T) {
	now := time.Now().UTC()
	gw := new(mocks.MockGateway)
	gw.On("FetchOrders", mock.Anything).Return([]domain.Order{testOrder("o1", domain.StatusConfirmed, now)}, nil).Once()

	o, _, _ := newTestOrders(t, gw)

	// The event payload claims a status the list does not have; the store
	// must refetch instead of applying it.
	o.HandlePush(domain.PushEvent{Kind: domain.EventOrderStatusUpdated, OrderID: "o1", Status: "delivered"})

	got := o.All()
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusConfirmed, got[0].OrderStatus)
	gw.AssertExpectations(t)
}

func TestOrdersHydratesFromCache(t *testing.T) {
	now := time.Now().UTC()
	mem := persist.NewMemory()
	cached, _ := json.Marshal([]domain.Order{testOrder("o1", domain.StatusReady, now)})
	require.NoError(t, mem.Set(context.Background(), persist.KeyOrdersCache, cached))

	cart := NewCart(pricing.DefaultConfig(), mem)
	t.Cleanup(cart.Close)
	o := NewOrders(new(mocks.MockGateway), mem, cart)

	require.Len(t, o.All(), 1)
	stale, _ := o.Stale()
	assert.True(t, stale, "cached data is stale until the first load")
}
