package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimitEnforced(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mw, err := New(client, "2-M", "test:rl:")
	require.NoError(t, err)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing/calculate", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := do()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	second := do()
	require.Equal(t, http.StatusOK, second.Code)

	third := do()
	require.Equal(t, http.StatusTooManyRequests, third.Code)
	require.Contains(t, third.Body.String(), "RATE_LIMITED")
}

func TestDistinctClientsGetOwnBudget(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	mw, err := New(client, "1-M", "test:rl:")
	require.NoError(t, err)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1000").Code)
	require.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1000").Code)
	require.Equal(t, http.StatusOK, do("10.0.0.2:1000").Code)
}

func TestBadFormatRejected(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	_, err := New(client, "not-a-rate", "test:rl:")
	require.Error(t, err)
}
