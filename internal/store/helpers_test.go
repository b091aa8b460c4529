package store

import (
	"context"
	"errors"

	"shop-client/internal/persist"
)

// failingAdapter simulates a broken durable store: reads miss, writes fail.
type failingAdapter struct{}

func (failingAdapter) Get(context.Context, string) ([]byte, error) {
	return nil, persist.ErrNotFound
}

func (failingAdapter) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func (failingAdapter) Delete(context.Context, string) error {
	return errors.New("disk full")
}
