package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Get(ctx, KeyCartLines)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Set(ctx, KeyCartLines, []byte(`[1,2,3]`)))
	got, err := m.Get(ctx, KeyCartLines)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1,2,3]`), got)

	require.NoError(t, m.Delete(ctx, KeyCartLines))
	_, err = m.Get(ctx, KeyCartLines)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'z'

	got, _ := m.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), got, "stored value must not alias the caller's slice")
}
