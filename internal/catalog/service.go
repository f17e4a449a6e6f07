package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/andes-sport/backend-tienda/internal/cache"
	"github.com/andes-sport/backend-tienda/internal/common"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
	"github.com/andes-sport/backend-tienda/internal/obs"
)

type queryProvider interface {
	CountProductsActive(ctx context.Context, search pgtype.Text) (int64, error)
	ListProductsActive(ctx context.Context, arg dbgen.ListProductsActiveParams) ([]dbgen.Product, error)
	GetProductByID(ctx context.Context, id int64) (dbgen.Product, error)
	ListTiersByProduct(ctx context.Context, productID int64) ([]dbgen.PricingTier, error)
}

// Service orchestrates catalog queries, DTO assembly, and caching.
type Service struct {
	queries      queryProvider
	cache        *cache.JSONCache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *cache.JSONCache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query string
	Page  int
	Limit int
}

// ProductListItem represents an entry in list responses.
type ProductListItem struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	BasePrice int64  `json:"base_price"`
}

// TierBand is one row of a product's volume-pricing grid. A nil MaxQty means
// the band is open-ended.
type TierBand struct {
	MinQty    int32  `json:"min_qty"`
	MaxQty    *int32 `json:"max_qty,omitempty"`
	UnitPrice int64  `json:"unit_price"`
}

// ProductDetail aggregates the detail payload, tier grid included.
type ProductDetail struct {
	ID        int64      `json:"id"`
	Slug      string     `json:"slug"`
	Title     string     `json:"title"`
	BasePrice int64      `json:"base_price"`
	Tiers     []TierBand `json:"tiers"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductListItem
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, common.InvalidArgument("page", "page must be a positive integer", err)
		}
		params.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, common.InvalidArgument("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	params.Limit = limit
	return params, nil
}

// ListProducts returns the filtered product list with pagination metadata. The
// unfiltered first page is the hot path for the storefront landing grid, so
// only that page is served through the cache.
func (s *Service) ListProducts(ctx context.Context, params ListParams) (ProductListResult, error) {
	key, cacheable := s.listCacheKey(params)
	if cacheable && s.cache != nil {
		var cached cachedList
		ok, err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil && ok {
			obs.CountCacheLookup("catalog", "hit")
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: params.Page, Limit: params.Limit}, nil
		}
		obs.CountCacheLookup("catalog", "miss")
	}

	search := optionalText(params.Query)
	total, err := s.queries.CountProductsActive(ctx, search)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	offset := int32((params.Page - 1) * params.Limit)
	if offset < 0 {
		offset = 0
	}
	rows, err := s.queries.ListProductsActive(ctx, dbgen.ListProductsActiveParams{
		Q:           search,
		LimitValue:  int32(params.Limit),
		OffsetValue: offset,
	})
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ProductListItem{
			ID:        row.ID,
			Slug:      row.Slug,
			Title:     row.Title,
			BasePrice: row.BasePrice,
		})
	}
	result := ProductListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}
	if cacheable && s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, cachedList{Items: items, Total: total})
	}
	return result, nil
}

// GetProductDetail returns a product together with its pricing tier grid.
func (s *Service) GetProductDetail(ctx context.Context, id int64) (ProductDetail, error) {
	if id < 1 {
		return ProductDetail{}, common.InvalidArgument("id", "id must be a positive integer", nil)
	}
	product, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductDetail{}, common.NotFound("product not found", err)
		}
		return ProductDetail{}, fmt.Errorf("get product: %w", err)
	}
	tiers, err := s.queries.ListTiersByProduct(ctx, product.ID)
	if err != nil {
		return ProductDetail{}, fmt.Errorf("list tiers: %w", err)
	}
	detail := ProductDetail{
		ID:        product.ID,
		Slug:      product.Slug,
		Title:     product.Title,
		BasePrice: product.BasePrice,
		Tiers:     make([]TierBand, 0, len(tiers)),
	}
	for _, row := range tiers {
		band := TierBand{MinQty: row.MinQty, UnitPrice: row.UnitPrice}
		if row.MaxQty.Valid {
			max := row.MaxQty.Int32
			band.MaxQty = &max
		}
		detail.Tiers = append(detail.Tiers, band)
	}
	return detail, nil
}

type cachedList struct {
	Items []ProductListItem `json:"items"`
	Total int64             `json:"total"`
}

func (s *Service) listCacheKey(params ListParams) (string, bool) {
	if params.Page != s.defaultPage || params.Limit != s.defaultLimit {
		return "", false
	}
	if params.Query != "" {
		return "", false
	}
	return cache.KeyCatalogFirstPage, true
}

func optionalText(value string) pgtype.Text {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: trimmed, Valid: true}
}
