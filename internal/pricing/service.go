package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/andes-sport/backend-tienda/internal/bundle"
	"github.com/andes-sport/backend-tienda/internal/cache"
	"github.com/andes-sport/backend-tienda/internal/common"
	"github.com/andes-sport/backend-tienda/internal/config"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
	"github.com/andes-sport/backend-tienda/internal/obs"
)

type querier interface {
	GetProductByID(ctx context.Context, id int64) (dbgen.Product, error)
	ListTiersByProduct(ctx context.Context, productID int64) ([]dbgen.PricingTier, error)
}

// BundleResolver resolves a bundle code into its discount, reporting whether
// the code is currently applicable.
type BundleResolver interface {
	Resolve(ctx context.Context, code string) (bundle.Info, bool, error)
}

// Service computes price quotes over the catalog's tier and bundle tables.
// Product and tier reads go through an explicit read-through cache with the
// TTL configured at construction; the arithmetic itself stays in engine.go.
type Service struct {
	Q       querier
	Bundles BundleResolver
	Cache   *cache.JSONCache
	// UnknownBundlePolicy is config.UnknownBundleIgnore (quote without a
	// discount) or config.UnknownBundleReject (422). One policy applies to
	// every quote call site so preview and checkout cannot diverge.
	UnknownBundlePolicy string
}

type cachedProduct struct {
	ID        int64 `json:"id"`
	BasePrice Money `json:"base_price"`
}

type cachedTier struct {
	MinQty    int32  `json:"min_qty"`
	MaxQty    *int32 `json:"max_qty,omitempty"`
	UnitPrice Money  `json:"unit_price"`
}

// maxQuantity bounds a single quote; beyond this the request is treated as
// malformed rather than risking tier arithmetic on absurd inputs.
const maxQuantity = 1_000_000

// Calculate resolves the tier unit price for the quantity, applies the bundle
// discount when one resolves, and returns the final quote.
func (s *Service) Calculate(ctx context.Context, productID int64, qty int, bundleCode string) (Quote, error) {
	if qty > maxQuantity {
		obs.CountQuote("invalid", false)
		return Quote{}, common.InvalidArgument("quantity", "quantity exceeds the supported maximum", nil)
	}
	if qty < 1 {
		obs.CountQuote("invalid", false)
		return Quote{}, common.InvalidArgument("quantity", "quantity must be a positive integer", ErrInvalidQuantity)
	}
	if productID < 1 {
		obs.CountQuote("invalid", false)
		return Quote{}, common.InvalidArgument("productId", "productId must be a positive integer", nil)
	}

	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		obs.CountQuote("error", false)
		return Quote{}, err
	}
	tiers, err := s.loadTiers(ctx, productID)
	if err != nil {
		obs.CountQuote("error", false)
		return Quote{}, err
	}

	unitPrice, err := ResolveUnitPrice(tiers, product.BasePrice, qty)
	if err != nil {
		obs.CountQuote("error", false)
		return Quote{}, fmt.Errorf("resolve unit price for product %d: %w", productID, err)
	}

	discountPct := 0
	if bundle.NormalizeCode(bundleCode) != "" {
		info, found, err := s.Bundles.Resolve(ctx, bundleCode)
		if err != nil {
			obs.CountQuote("error", false)
			return Quote{}, err
		}
		switch {
		case found:
			discountPct = int(info.DiscountPct)
		case s.UnknownBundlePolicy == config.UnknownBundleReject:
			obs.CountQuote("unknown_bundle", false)
			return Quote{}, common.UnknownBundle(bundle.NormalizeCode(bundleCode))
		}
	}

	quote, err := Compute(unitPrice, qty, discountPct)
	if err != nil {
		obs.CountQuote("error", false)
		return Quote{}, err
	}
	obs.CountQuote("ok", quote.DiscountPct > 0)
	return quote, nil
}

func (s *Service) loadProduct(ctx context.Context, id int64) (cachedProduct, error) {
	key := cache.KeyProduct(id)
	if s.Cache != nil {
		var cached cachedProduct
		hit, err := s.Cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			obs.CountCacheLookup("product", "hit")
			return cached, nil
		}
		obs.CountCacheLookup("product", "miss")
	}
	row, err := s.Q.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cachedProduct{}, common.NotFound("product not found", err)
		}
		return cachedProduct{}, fmt.Errorf("get product: %w", err)
	}
	result := cachedProduct{ID: row.ID, BasePrice: row.BasePrice}
	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, key, result)
	}
	return result, nil
}

func (s *Service) loadTiers(ctx context.Context, productID int64) ([]Tier, error) {
	key := cache.KeyTiers(productID)
	if s.Cache != nil {
		var cached []cachedTier
		hit, err := s.Cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			obs.CountCacheLookup("tiers", "hit")
			return tiersFromCached(cached), nil
		}
		obs.CountCacheLookup("tiers", "miss")
	}
	rows, err := s.Q.ListTiersByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list tiers: %w", err)
	}
	cached := make([]cachedTier, 0, len(rows))
	for _, row := range rows {
		t := cachedTier{MinQty: row.MinQty, UnitPrice: row.UnitPrice}
		if row.MaxQty.Valid {
			max := row.MaxQty.Int32
			t.MaxQty = &max
		}
		cached = append(cached, t)
	}
	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, key, cached)
	}
	return tiersFromCached(cached), nil
}

func tiersFromCached(cached []cachedTier) []Tier {
	tiers := make([]Tier, 0, len(cached))
	for _, c := range cached {
		tiers = append(tiers, Tier{MinQty: c.MinQty, MaxQty: c.MaxQty, UnitPrice: c.UnitPrice})
	}
	return tiers
}
