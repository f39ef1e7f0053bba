package killswitch

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	require.NoError(t, client.FlushDB(ctx).Err())

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.FlushDB(ctx).Err()
		_ = client.Close()
	})
	return client
}

func TestStore_DisableEnable(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)

	ctx := context.Background()

	sw, err := store.Disable(ctx, "orca-sol-usdc", "vault drained on mainnet")
	require.NoError(t, err)
	assert.Equal(t, "orca-sol-usdc", sw.Venue)
	assert.NotZero(t, sw.DisabledAt)

	disabled, err := store.IsDisabled(ctx, "orca-sol-usdc")
	require.NoError(t, err)
	assert.True(t, disabled)

	got, err := store.Get(ctx, "orca-sol-usdc")
	require.NoError(t, err)
	assert.Equal(t, "vault drained on mainnet", got.Reason)

	require.NoError(t, store.Enable(ctx, "orca-sol-usdc"))

	disabled, err = store.IsDisabled(ctx, "orca-sol-usdc")
	require.NoError(t, err)
	assert.False(t, disabled)

	_, err = store.Get(ctx, "orca-sol-usdc")
	assert.Equal(t, ErrNotFound, err)
}

func TestStore_List(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)

	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.Disable(ctx, "orca-sol-usdc", "")
	require.NoError(t, err)
	_, err = store.Disable(ctx, "rfq-usdc-sol", "desk offline")
	require.NoError(t, err)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_InvalidName(t *testing.T) {
	store, err := NewStore(setupTestRedis(t))
	require.NoError(t, err)

	ctx := context.Background()

	_, err = store.Disable(ctx, "has spaces", "")
	assert.Error(t, err)
	_, err = store.Get(ctx, "")
	assert.Error(t, err)
}
