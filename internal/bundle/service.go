package bundle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/andes-sport/backend-tienda/internal/cache"
	"github.com/andes-sport/backend-tienda/internal/common"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
	"github.com/andes-sport/backend-tienda/internal/obs"
)

type querier interface {
	GetBundleByCode(ctx context.Context, code string) (dbgen.Bundle, error)
	CreateBundle(ctx context.Context, arg dbgen.CreateBundleParams) (dbgen.Bundle, error)
	UpdateBundle(ctx context.Context, arg dbgen.UpdateBundleParams) (dbgen.Bundle, error)
	ListBundles(ctx context.Context) ([]dbgen.Bundle, error)
}

// Invalidator schedules cache key invalidation after admin mutations.
type Invalidator interface {
	EnqueueInvalidate(ctx context.Context, keys ...string) error
}

// mutexer serializes concurrent admin writes against the same bundle code.
type mutexer interface {
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Service resolves bundle codes and owns admin mutations.
type Service struct {
	Q     querier
	Cache *cache.JSONCache
	Tasks Invalidator
	Locks mutexer
	Now   func() time.Time
}

type cachedBundle struct {
	Code        string     `json:"code"`
	DiscountPct int32      `json:"discount_pct"`
	Active      bool       `json:"active"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NormalizeCode canonicalises a bundle code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Resolve returns the bundle info for the code when it exists and is currently
// applicable. The boolean is false for unknown, inactive, and out-of-window
// codes alike.
func (s *Service) Resolve(ctx context.Context, code string) (Info, bool, error) {
	code = NormalizeCode(code)
	if code == "" {
		return Info{}, false, nil
	}
	row, ok, err := s.load(ctx, code)
	if err != nil {
		return Info{}, false, err
	}
	if !ok || !Applicable(row, s.now()) {
		return Info{}, false, nil
	}
	return Info{Code: row.Code, DiscountPct: row.DiscountPct}, true, nil
}

// Get returns public bundle info or a 404 AppError.
func (s *Service) Get(ctx context.Context, code string) (Info, error) {
	info, ok, err := s.Resolve(ctx, code)
	if err != nil {
		return Info{}, err
	}
	if !ok {
		return Info{}, common.NotFound("bundle not found", nil)
	}
	return info, nil
}

// CreateParams carries validated admin input for bundle creation.
type CreateParams struct {
	Code        string
	DiscountPct int32
	Active      bool
	ValidFrom   *time.Time
	ValidTo     *time.Time
}

// Create inserts a new bundle and schedules cache invalidation.
func (s *Service) Create(ctx context.Context, p CreateParams) (dbgen.Bundle, error) {
	code := NormalizeCode(p.Code)
	var row dbgen.Bundle
	err := s.withCodeLock(ctx, code, func(ctx context.Context) error {
		var err error
		row, err = s.Q.CreateBundle(ctx, dbgen.CreateBundleParams{
			Code:        code,
			DiscountPct: p.DiscountPct,
			Active:      p.Active,
			ValidFrom:   toTimestamptz(p.ValidFrom),
			ValidTo:     toTimestamptz(p.ValidTo),
		})
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return dbgen.Bundle{}, &common.AppError{
				Code:       common.CodeConflict,
				Message:    "bundle code already exists",
				HTTPStatus: http.StatusConflict,
				Err:        err,
			}
		}
		return dbgen.Bundle{}, fmt.Errorf("create bundle: %w", err)
	}
	s.invalidate(ctx, row.Code)
	return row, nil
}

// Update replaces mutable bundle attributes and schedules cache invalidation.
func (s *Service) Update(ctx context.Context, p CreateParams) (dbgen.Bundle, error) {
	code := NormalizeCode(p.Code)
	var row dbgen.Bundle
	err := s.withCodeLock(ctx, code, func(ctx context.Context) error {
		var err error
		row, err = s.Q.UpdateBundle(ctx, dbgen.UpdateBundleParams{
			Code:        code,
			DiscountPct: p.DiscountPct,
			Active:      p.Active,
			ValidFrom:   toTimestamptz(p.ValidFrom),
			ValidTo:     toTimestamptz(p.ValidTo),
		})
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Bundle{}, common.NotFound("bundle not found", err)
		}
		return dbgen.Bundle{}, fmt.Errorf("update bundle: %w", err)
	}
	s.invalidate(ctx, row.Code)
	return row, nil
}

// List returns every bundle for the admin overview.
func (s *Service) List(ctx context.Context) ([]dbgen.Bundle, error) {
	rows, err := s.Q.ListBundles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	return rows, nil
}

func (s *Service) withCodeLock(ctx context.Context, code string, fn func(context.Context) error) error {
	if s.Locks == nil {
		return fn(ctx)
	}
	return s.Locks.WithLock(ctx, "lock:bundle:"+code, 5*time.Second, fn)
}

func (s *Service) load(ctx context.Context, code string) (dbgen.Bundle, bool, error) {
	key := cache.KeyBundle(code)
	if s.Cache != nil {
		var cached cachedBundle
		hit, err := s.Cache.GetJSON(ctx, key, &cached)
		if err == nil && hit {
			obs.CountCacheLookup("bundle", "hit")
			return fromCached(cached), true, nil
		}
		obs.CountCacheLookup("bundle", "miss")
	}
	row, err := s.Q.GetBundleByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Bundle{}, false, nil
		}
		return dbgen.Bundle{}, false, fmt.Errorf("get bundle: %w", err)
	}
	if s.Cache != nil {
		_ = s.Cache.SetJSON(ctx, key, toCached(row))
	}
	return row, true, nil
}

func (s *Service) invalidate(ctx context.Context, code string) {
	key := cache.KeyBundle(code)
	if s.Cache != nil {
		_ = s.Cache.Delete(ctx, key)
	}
	if s.Tasks != nil {
		_ = s.Tasks.EnqueueInvalidate(ctx, key)
	}
}

func toCached(row dbgen.Bundle) cachedBundle {
	c := cachedBundle{Code: row.Code, DiscountPct: row.DiscountPct, Active: row.Active}
	if row.ValidFrom.Valid {
		t := row.ValidFrom.Time
		c.ValidFrom = &t
	}
	if row.ValidTo.Valid {
		t := row.ValidTo.Time
		c.ValidTo = &t
	}
	return c
}

func fromCached(c cachedBundle) dbgen.Bundle {
	row := dbgen.Bundle{Code: c.Code, DiscountPct: c.DiscountPct, Active: c.Active}
	if c.ValidFrom != nil {
		row.ValidFrom = pgtype.Timestamptz{Time: *c.ValidFrom, Valid: true}
	}
	if c.ValidTo != nil {
		row.ValidTo = pgtype.Timestamptz{Time: *c.ValidTo, Valid: true}
	}
	return row
}

func toTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}
