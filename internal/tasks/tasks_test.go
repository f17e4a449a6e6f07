package tasks

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCacheInvalidateTaskPayload(t *testing.T) {
	task, err := NewCacheInvalidateTask("pricing:bundle:B5", "pricing:tiers:1")
	require.NoError(t, err)
	require.Equal(t, TypeCacheInvalidate, task.Type())

	var payload CacheInvalidatePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, []string{"pricing:bundle:B5", "pricing:tiers:1"}, payload.Keys)
}

func TestHandleCacheInvalidateDeletesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, mr.Set("pricing:bundle:B5", "cached"))
	require.NoError(t, mr.Set("pricing:tiers:1", "cached"))
	require.NoError(t, mr.Set("pricing:tiers:2", "untouched"))

	h := &Handler{Redis: client, Log: zerolog.Nop()}
	task, err := NewCacheInvalidateTask("pricing:bundle:B5", "pricing:tiers:1")
	require.NoError(t, err)
	require.NoError(t, h.HandleCacheInvalidate(context.Background(), task))

	require.False(t, mr.Exists("pricing:bundle:B5"))
	require.False(t, mr.Exists("pricing:tiers:1"))
	require.True(t, mr.Exists("pricing:tiers:2"))
}

func TestHandleCacheInvalidateBadPayloadSkipsRetry(t *testing.T) {
	h := &Handler{Log: zerolog.Nop()}
	task := asynq.NewTask(TypeCacheInvalidate, []byte("{not json"))
	err := h.HandleCacheInvalidate(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
