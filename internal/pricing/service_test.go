package pricing_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/andes-sport/backend-tienda/internal/bundle"
	"github.com/andes-sport/backend-tienda/internal/cache"
	"github.com/andes-sport/backend-tienda/internal/common"
	"github.com/andes-sport/backend-tienda/internal/config"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
	"github.com/andes-sport/backend-tienda/internal/pricing"
)

type fakeStore struct {
	products map[int64]dbgen.Product
	tiers    map[int64][]dbgen.PricingTier
}

func (f *fakeStore) GetProductByID(_ context.Context, id int64) (dbgen.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeStore) ListTiersByProduct(_ context.Context, productID int64) ([]dbgen.PricingTier, error) {
	return f.tiers[productID], nil
}

type fakeBundles struct {
	known map[string]bundle.Info
}

func (f *fakeBundles) Resolve(_ context.Context, code string) (bundle.Info, bool, error) {
	info, ok := f.known[bundle.NormalizeCode(code)]
	return info, ok, nil
}

func newFixture() (*fakeStore, *fakeBundles) {
	store := &fakeStore{
		products: map[int64]dbgen.Product{
			1: {ID: 1, Slug: "camiseta-titular", Title: "Camiseta Titular", BasePrice: 2_000_000, Active: true},
		},
		tiers: map[int64][]dbgen.PricingTier{
			1: {
				{ID: 1, ProductID: 1, MinQty: 1, MaxQty: pgtype.Int4{Int32: 24, Valid: true}, UnitPrice: 2_000_000},
				{ID: 2, ProductID: 1, MinQty: 25, UnitPrice: 1_800_000},
			},
		},
	}
	bundles := &fakeBundles{known: map[string]bundle.Info{
		"B1": {Code: "B1", DiscountPct: 5},
		"B5": {Code: "B5", DiscountPct: 8},
	}}
	return store, bundles
}

func newService(store *fakeStore, bundles *fakeBundles, c *cache.JSONCache) *pricing.Service {
	return &pricing.Service{
		Q:                   store,
		Bundles:             bundles,
		Cache:               c,
		UnknownBundlePolicy: config.UnknownBundleIgnore,
	}
}

func TestCalculateScenarios(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)
	ctx := context.Background()

	cases := []struct {
		name       string
		qty        int
		bundleCode string
		wantUnit   pricing.Money
		wantPct    int
		wantTotal  pricing.Money
	}{
		{"tier price no bundle", 25, "", 1_800_000, 0, 45_000_000},
		{"tier price with B5", 25, "B5", 1_800_000, 8, 41_400_000},
		{"tier price with B1", 25, "B1", 1_800_000, 5, 42_750_000},
		{"single unit with B5", 1, "B5", 2_000_000, 8, 1_840_000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := svc.Calculate(ctx, 1, tc.qty, tc.bundleCode)
			require.NoError(t, err)
			require.Equal(t, tc.wantUnit, quote.UnitPrice)
			require.Equal(t, tc.qty, quote.Quantity)
			require.Equal(t, tc.wantPct, quote.DiscountPct)
			require.Equal(t, tc.wantTotal, quote.Total)
		})
	}
}

func TestCalculateIdempotent(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)
	ctx := context.Background()

	first, err := svc.Calculate(ctx, 1, 25, "B5")
	require.NoError(t, err)
	second, err := svc.Calculate(ctx, 1, 25, "B5")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestCalculateUnknownBundleIgnored(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)

	quote, err := svc.Calculate(context.Background(), 1, 25, "NOPE")
	require.NoError(t, err)
	require.Zero(t, quote.DiscountPct)
	require.Equal(t, pricing.Money(45_000_000), quote.Total)
}

func TestCalculateUnknownBundleRejected(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)
	svc.UnknownBundlePolicy = config.UnknownBundleReject

	_, err := svc.Calculate(context.Background(), 1, 25, "NOPE")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeUnknownBundle, appErr.Code)
	require.Equal(t, 422, appErr.HTTPStatus)
}

func TestCalculateUnknownProduct(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)

	_, err := svc.Calculate(context.Background(), 99, 5, "")
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestCalculateInvalidQuantity(t *testing.T) {
	store, bundles := newFixture()
	svc := newService(store, bundles, nil)

	for _, qty := range []int{0, -3} {
		_, err := svc.Calculate(context.Background(), 1, qty, "")
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, common.CodeBadRequest, appErr.Code)
	}
}

func TestCalculateFlatPricingFallback(t *testing.T) {
	store, bundles := newFixture()
	store.products[2] = dbgen.Product{ID: 2, Slug: "medias", Title: "Medias", BasePrice: 120_000, Active: true}
	svc := newService(store, bundles, nil)

	quote, err := svc.Calculate(context.Background(), 2, 40, "")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(120_000), quote.UnitPrice)
	require.Equal(t, pricing.Money(4_800_000), quote.Total)
}

func TestCalculateReadThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, bundles := newFixture()
	svc := newService(store, bundles, cache.NewJSONCache(client, time.Minute))
	ctx := context.Background()

	first, err := svc.Calculate(ctx, 1, 25, "")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(45_000_000), first.Total)

	// mutate the backing store; the cached tier table must keep serving
	store.tiers[1] = []dbgen.PricingTier{{ID: 9, ProductID: 1, MinQty: 1, UnitPrice: 5}}
	second, err := svc.Calculate(ctx, 1, 25, "")
	require.NoError(t, err)
	require.Equal(t, first, second)

	// expiry falls back to the store
	mr.FastForward(2 * time.Minute)
	third, err := svc.Calculate(ctx, 1, 25, "")
	require.NoError(t, err)
	require.Equal(t, pricing.Money(125), third.Total)
}
