package bundle_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/andes-sport/backend-tienda/internal/bundle"
	"github.com/andes-sport/backend-tienda/internal/cache"
	"github.com/andes-sport/backend-tienda/internal/common"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
)

type fakeQueries struct {
	bundles   map[string]dbgen.Bundle
	createErr error
	getCalls  int
}

func (f *fakeQueries) GetBundleByCode(_ context.Context, code string) (dbgen.Bundle, error) {
	f.getCalls++
	row, ok := f.bundles[code]
	if !ok {
		return dbgen.Bundle{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeQueries) CreateBundle(_ context.Context, arg dbgen.CreateBundleParams) (dbgen.Bundle, error) {
	if f.createErr != nil {
		return dbgen.Bundle{}, f.createErr
	}
	row := dbgen.Bundle{
		Code:        arg.Code,
		DiscountPct: arg.DiscountPct,
		Active:      arg.Active,
		ValidFrom:   arg.ValidFrom,
		ValidTo:     arg.ValidTo,
	}
	f.bundles[arg.Code] = row
	return row, nil
}

func (f *fakeQueries) UpdateBundle(_ context.Context, arg dbgen.UpdateBundleParams) (dbgen.Bundle, error) {
	if _, ok := f.bundles[arg.Code]; !ok {
		return dbgen.Bundle{}, pgx.ErrNoRows
	}
	row := dbgen.Bundle{
		Code:        arg.Code,
		DiscountPct: arg.DiscountPct,
		Active:      arg.Active,
		ValidFrom:   arg.ValidFrom,
		ValidTo:     arg.ValidTo,
	}
	f.bundles[arg.Code] = row
	return row, nil
}

func (f *fakeQueries) ListBundles(_ context.Context) ([]dbgen.Bundle, error) {
	out := make([]dbgen.Bundle, 0, len(f.bundles))
	for _, row := range f.bundles {
		out = append(out, row)
	}
	return out, nil
}

type captureInvalidator struct {
	keys []string
}

func (c *captureInvalidator) EnqueueInvalidate(_ context.Context, keys ...string) error {
	c.keys = append(c.keys, keys...)
	return nil
}

func activeBundle(code string, pct int32) dbgen.Bundle {
	return dbgen.Bundle{Code: code, DiscountPct: pct, Active: true}
}

func tstz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func TestResolveNormalizesCode(t *testing.T) {
	q := &fakeQueries{bundles: map[string]dbgen.Bundle{"B5": activeBundle("B5", 8)}}
	svc := &bundle.Service{Q: q}

	info, ok, err := svc.Resolve(context.Background(), "  b5 ")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "B5", info.Code)
	require.Equal(t, int32(8), info.DiscountPct)
}

func TestResolveUnknownCode(t *testing.T) {
	q := &fakeQueries{bundles: map[string]dbgen.Bundle{}}
	svc := &bundle.Service{Q: q}

	_, ok, err := svc.Resolve(context.Background(), "NOPE")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolveInactiveAndExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	inactive := activeBundle("B1", 5)
	inactive.Active = false
	expired := activeBundle("B2", 5)
	expired.ValidTo = tstz(now.Add(-time.Hour))
	future := activeBundle("B3", 5)
	future.ValidFrom = tstz(now.Add(time.Hour))

	q := &fakeQueries{bundles: map[string]dbgen.Bundle{"B1": inactive, "B2": expired, "B3": future}}
	svc := &bundle.Service{Q: q, Now: func() time.Time { return now }}

	for _, code := range []string{"B1", "B2", "B3"} {
		_, ok, err := svc.Resolve(context.Background(), code)
		require.NoError(t, err)
		require.False(t, ok, "code %s should not resolve", code)
	}
}

func TestResolveUsesCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := &fakeQueries{bundles: map[string]dbgen.Bundle{"B5": activeBundle("B5", 8)}}
	svc := &bundle.Service{Q: q, Cache: cache.NewJSONCache(client, time.Minute)}

	for i := 0; i < 3; i++ {
		_, ok, err := svc.Resolve(context.Background(), "B5")
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.Equal(t, 1, q.getCalls)
}

func TestCreateConflict(t *testing.T) {
	q := &fakeQueries{
		bundles:   map[string]dbgen.Bundle{},
		createErr: &pgconn.PgError{Code: "23505"},
	}
	svc := &bundle.Service{Q: q}

	_, err := svc.Create(context.Background(), bundle.CreateParams{Code: "B5", DiscountPct: 8, Active: true})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeConflict, appErr.Code)
	require.Equal(t, http.StatusConflict, appErr.HTTPStatus)
}

func TestUpdateUnknownCode(t *testing.T) {
	q := &fakeQueries{bundles: map[string]dbgen.Bundle{}}
	svc := &bundle.Service{Q: q}

	_, err := svc.Update(context.Background(), bundle.CreateParams{Code: "B9", DiscountPct: 3, Active: true})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestMutationsScheduleInvalidation(t *testing.T) {
	q := &fakeQueries{bundles: map[string]dbgen.Bundle{}}
	inv := &captureInvalidator{}
	svc := &bundle.Service{Q: q, Tasks: inv}

	_, err := svc.Create(context.Background(), bundle.CreateParams{Code: "b5", DiscountPct: 8, Active: true})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), bundle.CreateParams{Code: "B5", DiscountPct: 10, Active: true})
	require.NoError(t, err)

	require.Equal(t, []string{cache.KeyBundle("B5"), cache.KeyBundle("B5")}, inv.keys)
}

func TestStaleCacheDroppedOnUpdate(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q := &fakeQueries{bundles: map[string]dbgen.Bundle{"B5": activeBundle("B5", 8)}}
	svc := &bundle.Service{Q: q, Cache: cache.NewJSONCache(client, time.Minute)}

	info, ok, err := svc.Resolve(context.Background(), "B5")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(8), info.DiscountPct)

	_, err = svc.Update(context.Background(), bundle.CreateParams{Code: "B5", DiscountPct: 12, Active: true})
	require.NoError(t, err)

	info, ok, err = svc.Resolve(context.Background(), "B5")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(12), info.DiscountPct)
}

func TestResolveErrorPropagated(t *testing.T) {
	svc := &bundle.Service{Q: &erroringQueries{}}
	_, _, err := svc.Resolve(context.Background(), "B5")
	require.Error(t, err)
}

type erroringQueries struct{ fakeQueries }

func (e *erroringQueries) GetBundleByCode(context.Context, string) (dbgen.Bundle, error) {
	return dbgen.Bundle{}, errors.New("connection refused")
}
