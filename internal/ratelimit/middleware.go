package ratelimit

import (
	"net/http"
	"strconv"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/andes-sport/backend-tienda/internal/common"
)

// New builds a redis-backed per-client rate limiting middleware from a
// limiter format string such as "120-M". A store failure lets the request
// through rather than taking the endpoint down with redis.
func New(client *redis.Client, format string, prefix string) (func(http.Handler) http.Handler, error) {
	rate, err := limiter.NewRateFromFormatted(format)
	if err != nil {
		return nil, err
	}
	store, err := limiterredis.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, rate)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := instance.Get(r.Context(), common.ClientIP(r))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			headers := w.Header()
			headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))
			if lctx.Reached {
				common.JSONError(w, http.StatusTooManyRequests, common.CodeRateLimited, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
