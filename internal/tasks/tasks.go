package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/andes-sport/backend-tienda/internal/obs"
)

// TypeCacheInvalidate removes stale pricing cache keys after admin mutations.
const TypeCacheInvalidate = "cache:invalidate"

// CacheInvalidatePayload lists the redis keys to delete.
type CacheInvalidatePayload struct {
	Keys []string `json:"keys"`
}

// NewCacheInvalidateTask builds the asynq task for the given keys.
func NewCacheInvalidateTask(keys ...string) (*asynq.Task, error) {
	payload, err := json.Marshal(CacheInvalidatePayload{Keys: keys})
	if err != nil {
		return nil, fmt.Errorf("marshal invalidate payload: %w", err)
	}
	return asynq.NewTask(TypeCacheInvalidate, payload, asynq.MaxRetry(5)), nil
}

// Enqueuer submits background tasks. It satisfies the invalidator interfaces
// of the services that mutate cached entities.
type Enqueuer struct {
	Client *asynq.Client
	Log    zerolog.Logger
}

// EnqueueInvalidate schedules deletion of the given cache keys. Enqueue
// failures are logged, not propagated: the mutation already committed and the
// cache converges via TTL anyway.
func (e *Enqueuer) EnqueueInvalidate(ctx context.Context, keys ...string) error {
	if e == nil || e.Client == nil || len(keys) == 0 {
		return nil
	}
	task, err := NewCacheInvalidateTask(keys...)
	if err != nil {
		return err
	}
	if _, err := e.Client.EnqueueContext(ctx, task); err != nil {
		e.Log.Error().Err(err).Strs("keys", keys).Msg("enqueue cache invalidation")
		return nil
	}
	return nil
}

// Handler processes background tasks against redis.
type Handler struct {
	Redis *redis.Client
	Log   zerolog.Logger
}

// HandleCacheInvalidate deletes the keys named in the task payload.
func (h *Handler) HandleCacheInvalidate(ctx context.Context, t *asynq.Task) error {
	var payload CacheInvalidatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		obs.CountInvalidation("bad_payload")
		return fmt.Errorf("unmarshal invalidate payload: %w", asynq.SkipRetry)
	}
	if h.Redis == nil || len(payload.Keys) == 0 {
		obs.CountInvalidation("noop")
		return nil
	}
	if err := h.Redis.Del(ctx, payload.Keys...).Err(); err != nil {
		obs.CountInvalidation("error")
		return fmt.Errorf("delete cache keys: %w", err)
	}
	obs.CountInvalidation("ok")
	h.Log.Debug().Strs("keys", payload.Keys).Msg("cache keys invalidated")
	return nil
}

// NewMux registers every task handler on an asynq mux.
func NewMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeCacheInvalidate, h.HandleCacheInvalidate)
	return mux
}
