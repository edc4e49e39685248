package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Hour)

	c, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, c.Empty())

	c.Add("Burger", 3, -1)
	require.NoError(t, store.Save(ctx, "s1", c))
	assert.True(t, mr.Exists("foodify:cart:s1"))
	assert.Equal(t, time.Hour, mr.TTL("foodify:cart:s1"))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []Line{{Product: "Burger", Quantity: 3}}, got.Lines)

	got.Clear()
	require.NoError(t, store.Save(ctx, "s1", got))
	assert.False(t, mr.Exists("foodify:cart:s1"), "empty carts are not stored")
}

func TestRedisStore_Expires(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	c := &Cart{}
	c.Add("Fries", 1, -1)
	require.NoError(t, store.Save(ctx, "s1", c))

	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestRedisStore_LoadRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	c := &Cart{}
	c.Add("Fries", 1, -1)
	require.NoError(t, store.Save(ctx, "s1", c))

	mr.FastForward(45 * time.Second)
	_, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("foodify:cart:s1"))

	mr.FastForward(45 * time.Second)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []Line{{Product: "Fries", Quantity: 1}}, got.Lines)
}

func TestRedisStore_CorruptValueYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	require.NoError(t, mr.Set("foodify:cart:s1", "{not json"))

	got, err := NewRedisStore(client, time.Minute).Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestRedisStore_ConnectionError(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestRedis(t)
	mr.Close()

	_, err := NewRedisStore(client, time.Minute).Load(ctx, "s1")
	require.Error(t, err)
}

func TestMemoryStore_IsolatesCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	c := &Cart{}
	c.Add("Burger", 1, -1)
	require.NoError(t, store.Save(ctx, "s1", c))

	c.Add("Burger", 5, -1)
	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity("Burger"))

	require.NoError(t, store.Delete(ctx, "s1"))
	got, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.Empty())
}
