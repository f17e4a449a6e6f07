package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/andes-sport/backend-tienda/internal/cache"
)

type payload struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func TestJSONCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewJSONCache(client, time.Minute)
	ctx := context.Background()

	var missing payload
	ok, err := c.GetJSON(ctx, cache.KeyProduct(1), &missing)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.SetJSON(ctx, cache.KeyProduct(1), payload{Name: "camiseta", Price: 2_000_000}))

	var got payload
	ok, err = c.GetJSON(ctx, cache.KeyProduct(1), &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "camiseta", got.Name)
	require.Equal(t, int64(2_000_000), got.Price)

	require.NoError(t, c.Delete(ctx, cache.KeysForProduct(1)...))
	ok, err = c.GetJSON(ctx, cache.KeyProduct(1), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONCacheTTLExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	c := cache.NewJSONCache(client, time.Second)
	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, cache.KeyBundle("B5"), payload{Name: "B5"}))

	mr.FastForward(2 * time.Second)

	var got payload
	ok, err := c.GetJSON(ctx, cache.KeyBundle("B5"), &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONCacheNilClient(t *testing.T) {
	c := cache.NewJSONCache(nil, time.Minute)
	ok, err := c.GetJSON(context.Background(), "any", &payload{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.SetJSON(context.Background(), "any", payload{}))
}
