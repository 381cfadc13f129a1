package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-crave/internal/storage"
)

func TestGetSetOverwrite(t *testing.T) {
	ctx := context.Background()
	kv := New()

	_, ok, err := kv.Get(ctx, storage.KeyOrders)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, storage.KeyOrders, []byte(`[1]`)))
	require.NoError(t, kv.Set(ctx, storage.KeyOrders, []byte(`[1,2]`)))

	v, ok, err := kv.Get(ctx, storage.KeyOrders)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[1,2]`, string(v))
}

func TestValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	kv := New()
	in := []byte(`0`)
	require.NoError(t, kv.Set(ctx, storage.KeyRevenue, in))
	in[0] = '9'

	v, _, _ := kv.Get(ctx, storage.KeyRevenue)
	assert.Equal(t, "0", string(v))
}

func TestClosed(t *testing.T) {
	kv := New()
	require.NoError(t, kv.Close())
	err := kv.Set(context.Background(), storage.KeyMenu, []byte(`[]`))
	assert.True(t, errors.Is(err, storage.ErrClosed))
}
