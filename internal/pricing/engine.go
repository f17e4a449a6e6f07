package pricing

import (
	"errors"
	"fmt"
)

// Money represents a monetary value in whole Chilean pesos. CLP has no minor
// unit, so no subdivision ever appears in arithmetic.
type Money = int64

var (
	// ErrInvalidQuantity is returned when the requested quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	// ErrInvalidDiscount is returned for discount percentages outside 0-100.
	ErrInvalidDiscount = errors.New("discount percentage out of range")
)

// Tier maps an inclusive quantity band to a per-unit price. A nil MaxQty means
// the band is unbounded above. Tiers for a product partition [1, inf) into
// contiguous non-overlapping bands ordered by MinQty ascending.
type Tier struct {
	MinQty    int32
	MaxQty    *int32
	UnitPrice Money
}

// Quote is the engine output. DiscountPct is omitted from JSON when zero;
// callers treat absent and zero as equivalent.
type Quote struct {
	UnitPrice   Money `json:"unit_price"`
	Quantity    int   `json:"quantity"`
	DiscountPct int   `json:"discount_pct,omitempty"`
	Total       Money `json:"total"`
}

// ResolveUnitPrice selects the unit price for qty from the tier table. An
// empty table falls back to the flat base price. A gap in the table is a data
// fault and surfaces as an error rather than a silent fallback.
func ResolveUnitPrice(tiers []Tier, basePrice Money, qty int) (Money, error) {
	if qty < 1 {
		return 0, ErrInvalidQuantity
	}
	if len(tiers) == 0 {
		return basePrice, nil
	}
	q := int32(qty)
	for _, t := range tiers {
		if q < t.MinQty {
			continue
		}
		if t.MaxQty == nil || q <= *t.MaxQty {
			return t.UnitPrice, nil
		}
	}
	return 0, fmt.Errorf("no pricing tier covers quantity %d", qty)
}

// Compute builds a quote from a resolved unit price. Rounding happens exactly
// once, inside ApplyDiscount, and only when a discount divides the subtotal.
func Compute(unitPrice Money, qty int, discountPct int) (Quote, error) {
	if qty < 1 {
		return Quote{}, ErrInvalidQuantity
	}
	if discountPct < 0 || discountPct > 100 {
		return Quote{}, ErrInvalidDiscount
	}
	subtotal := unitPrice * Money(qty)
	return Quote{
		UnitPrice:   unitPrice,
		Quantity:    qty,
		DiscountPct: discountPct,
		Total:       ApplyDiscount(subtotal, discountPct),
	}, nil
}

// ApplyDiscount subtracts a whole-number percentage from the subtotal. With a
// zero discount the subtotal passes through untouched so no rounding artifact
// is introduced by an unnecessary division.
func ApplyDiscount(subtotal Money, pct int) Money {
	if pct <= 0 {
		return subtotal
	}
	return roundDiv(subtotal*Money(100-pct), 100)
}

// roundDiv divides rounding half away from zero, matching Math.round
// semantics for the non-negative amounts used here.
func roundDiv(numerator, denominator int64) int64 {
	if numerator >= 0 {
		return (numerator + denominator/2) / denominator
	}
	return -((-numerator + denominator/2) / denominator)
}
