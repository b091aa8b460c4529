package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shop-client/internal/domain"
	"shop-client/internal/gateway"
	"shop-client/internal/persist"
)

type MockGateway struct {
	mock.Mock
}

var _ gateway.Gateway = (*MockGateway)(nil)

func (m *MockGateway) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockGateway) CreateOrder(ctx context.Context, draft domain.OrderDraft) (*domain.Order, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockGateway) CancelOrder(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockGateway) FetchWishlist(ctx context.Context) ([]domain.WishlistEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WishlistEntry), args.Error(1)
}

func (m *MockGateway) AddWishlistItem(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockGateway) RemoveWishlistItem(ctx context.Context, productID string) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *MockGateway) FetchAddresses(ctx context.Context) ([]domain.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

type MockAdapter struct {
	mock.Mock
}

var _ persist.Adapter = (*MockAdapter)(nil)

func (m *MockAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAdapter) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockAdapter) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
