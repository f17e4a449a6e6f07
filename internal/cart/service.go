package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/andes-sport/backend-tienda/internal/bundle"
	"github.com/andes-sport/backend-tienda/internal/common"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
	"github.com/andes-sport/backend-tienda/internal/pricing"
)

type querier interface {
	CreateCart(ctx context.Context, expiresAt pgtype.Timestamptz) (dbgen.Cart, error)
	GetCartByID(ctx context.Context, id pgtype.UUID) (dbgen.Cart, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]dbgen.ListCartItemsRow, error)
	UpsertCartItem(ctx context.Context, arg dbgen.UpsertCartItemParams) error
	DeleteCartItem(ctx context.Context, arg dbgen.DeleteCartItemParams) error
	SetCartBundle(ctx context.Context, arg dbgen.SetCartBundleParams) error
	ClearCartBundle(ctx context.Context, id pgtype.UUID) error
}

type quoter interface {
	Calculate(ctx context.Context, productID int64, qty int, bundleCode string) (pricing.Quote, error)
}

type bundleResolver interface {
	Resolve(ctx context.Context, code string) (bundle.Info, bool, error)
}

// Service encapsulates cart operations. Line prices are never stored; every
// read re-quotes each line through the pricing engine so carts and the
// calculate endpoint can never disagree.
type Service struct {
	Q       querier
	Pricing quoter
	Bundles bundleResolver
	TTL     time.Duration
	Now     func() time.Time
}

// Line is one priced cart row.
type Line struct {
	ProductID int64         `json:"product_id"`
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Quantity  int           `json:"quantity"`
	UnitPrice pricing.Money `json:"unit_price"`
	Subtotal  pricing.Money `json:"subtotal"`
}

// Summary carries cart totals. The bundle discount applies once to the summed
// subtotal, with the same rounding as a single-product quote.
type Summary struct {
	Subtotal    pricing.Money `json:"subtotal"`
	DiscountPct int           `json:"discount_pct,omitempty"`
	Total       pricing.Money `json:"total"`
}

// View is the full cart payload.
type View struct {
	ID         string    `json:"id"`
	BundleCode string    `json:"bundle_code,omitempty"`
	Items      []Line    `json:"items"`
	Summary    Summary   `json:"summary"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (s *Service) ttl() time.Duration {
	if s == nil || s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Create opens a new cart with the configured TTL.
func (s *Service) Create(ctx context.Context) (View, error) {
	if s == nil || s.Q == nil {
		return View{}, errors.New("cart service not configured")
	}
	expires := pgtype.Timestamptz{Time: s.now().Add(s.ttl()), Valid: true}
	row, err := s.Q.CreateCart(ctx, expires)
	if err != nil {
		return View{}, fmt.Errorf("create cart: %w", err)
	}
	return View{
		ID:        uuidString(row.ID),
		Items:     []Line{},
		ExpiresAt: row.ExpiresAt.Time,
	}, nil
}

// AddItem sets the quantity for a product line, inserting it when absent. The
// product and quantity are validated by quoting the line before any write.
func (s *Service) AddItem(ctx context.Context, cartID string, productID int64, qty int) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	_, cID, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if _, err := s.Pricing.Calculate(ctx, productID, qty, ""); err != nil {
		return err
	}
	if err := s.Q.UpsertCartItem(ctx, dbgen.UpsertCartItemParams{
		CartID:    cID,
		ProductID: productID,
		Qty:       int32(qty),
	}); err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// RemoveItem deletes a product line.
func (s *Service) RemoveItem(ctx context.Context, cartID string, productID int64) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	if productID < 1 {
		return common.InvalidArgument("productId", "productId must be a positive integer", nil)
	}
	_, cID, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if err := s.Q.DeleteCartItem(ctx, dbgen.DeleteCartItemParams{CartID: cID, ProductID: productID}); err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return nil
}

// ApplyBundle attaches a bundle code to the cart. Unlike the calculate
// endpoint, applying is an explicit user action, so an unknown or inactive
// code is always rejected regardless of the quote policy.
func (s *Service) ApplyBundle(ctx context.Context, cartID string, code string) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	normalized := bundle.NormalizeCode(code)
	if normalized == "" {
		return common.InvalidArgument("bundleCode", "bundleCode is required", nil)
	}
	_, cID, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	info, found, err := s.Bundles.Resolve(ctx, normalized)
	if err != nil {
		return err
	}
	if !found {
		return common.UnknownBundle(normalized)
	}
	if err := s.Q.SetCartBundle(ctx, dbgen.SetCartBundleParams{
		ID:         cID,
		BundleCode: pgtype.Text{String: info.Code, Valid: true},
	}); err != nil {
		return fmt.Errorf("set cart bundle: %w", err)
	}
	return nil
}

// ClearBundle detaches any applied bundle.
func (s *Service) ClearBundle(ctx context.Context, cartID string) error {
	if s == nil || s.Q == nil {
		return errors.New("cart service not configured")
	}
	_, cID, err := s.loadCart(ctx, cartID)
	if err != nil {
		return err
	}
	if err := s.Q.ClearCartBundle(ctx, cID); err != nil {
		return fmt.Errorf("clear cart bundle: %w", err)
	}
	return nil
}

// Get returns the cart with every line freshly quoted and the summary
// discount applied exactly once to the summed subtotal. A bundle that has
// since expired or been deactivated prices like no bundle at all.
func (s *Service) Get(ctx context.Context, cartID string) (View, error) {
	if s == nil || s.Q == nil {
		return View{}, errors.New("cart service not configured")
	}
	cart, cID, err := s.loadCart(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	rows, err := s.Q.ListCartItems(ctx, cID)
	if err != nil {
		return View{}, fmt.Errorf("list cart items: %w", err)
	}

	view := View{
		ID:        uuidString(cart.ID),
		Items:     make([]Line, 0, len(rows)),
		ExpiresAt: cart.ExpiresAt.Time,
	}
	var subtotal pricing.Money
	for _, row := range rows {
		quote, err := s.Pricing.Calculate(ctx, row.ProductID, int(row.Qty), "")
		if err != nil {
			return View{}, fmt.Errorf("quote line %d: %w", row.ProductID, err)
		}
		view.Items = append(view.Items, Line{
			ProductID: row.ProductID,
			Slug:      row.Slug,
			Title:     row.Title,
			Quantity:  quote.Quantity,
			UnitPrice: quote.UnitPrice,
			Subtotal:  quote.Total,
		})
		subtotal += quote.Total
	}

	discountPct := 0
	if cart.BundleCode.Valid && cart.BundleCode.String != "" {
		info, found, err := s.Bundles.Resolve(ctx, cart.BundleCode.String)
		if err != nil {
			return View{}, err
		}
		if found {
			view.BundleCode = info.Code
			discountPct = int(info.DiscountPct)
		}
	}
	view.Summary = Summary{
		Subtotal:    subtotal,
		DiscountPct: discountPct,
		Total:       pricing.ApplyDiscount(subtotal, discountPct),
	}
	return view, nil
}

func (s *Service) loadCart(ctx context.Context, cartID string) (dbgen.Cart, pgtype.UUID, error) {
	cID, err := toUUID(cartID)
	if err != nil {
		return dbgen.Cart{}, pgtype.UUID{}, common.InvalidArgument("cartId", "invalid cart id", err)
	}
	cart, err := s.Q.GetCartByID(ctx, cID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Cart{}, pgtype.UUID{}, common.NotFound("cart not found", err)
		}
		return dbgen.Cart{}, pgtype.UUID{}, fmt.Errorf("get cart: %w", err)
	}
	if cart.ExpiresAt.Valid && cart.ExpiresAt.Time.Before(s.now()) {
		return dbgen.Cart{}, pgtype.UUID{}, common.NotFound("cart expired", nil)
	}
	return cart, cID, nil
}

func toUUID(value string) (pgtype.UUID, error) {
	var id pgtype.UUID
	parsed, err := uuid.Parse(value)
	if err != nil {
		return id, err
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
