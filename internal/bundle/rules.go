package bundle

import (
	"time"

	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
)

// Info is the resolved view of a bundle used by pricing call sites.
type Info struct {
	Code        string `json:"code"`
	DiscountPct int32  `json:"discount_pct"`
}

// Applicable reports whether the bundle can be applied at the given instant.
// An inactive bundle or one outside its validity window behaves exactly like
// an unknown code.
func Applicable(b dbgen.Bundle, now time.Time) bool {
	if !b.Active {
		return false
	}
	if b.ValidFrom.Valid && now.Before(b.ValidFrom.Time) {
		return false
	}
	if b.ValidTo.Valid && now.After(b.ValidTo.Time) {
		return false
	}
	return true
}
