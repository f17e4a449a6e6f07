package pricing_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andes-sport/backend-tienda/internal/pricing"
)

func newHandler(t *testing.T) *pricing.Handler {
	t.Helper()
	store, bundles := newFixture()
	return &pricing.Handler{Svc: newService(store, bundles, nil)}
}

func doCalculate(t *testing.T, h *pricing.Handler, target string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Calculate(rec, req)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestCalculateEndpointNoBundle(t *testing.T) {
	h := newHandler(t)
	rec, body := doCalculate(t, h, "/api/v1/pricing/calculate?productId=1&quantity=25")
	require.Equal(t, http.StatusOK, rec.Code)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.Equal(t, pricing.Money(1_800_000), quote.UnitPrice)
	require.Equal(t, 25, quote.Quantity)
	require.Equal(t, pricing.Money(45_000_000), quote.Total)
	// absent, not zero
	_, present := body["discount_pct"]
	require.False(t, present)
}

func TestCalculateEndpointWithBundle(t *testing.T) {
	h := newHandler(t)
	rec, _ := doCalculate(t, h, "/api/v1/pricing/calculate?productId=1&quantity=25&bundleCode=B5")
	require.Equal(t, http.StatusOK, rec.Code)

	var quote pricing.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	require.Equal(t, 8, quote.DiscountPct)
	require.Equal(t, pricing.Money(41_400_000), quote.Total)
}

func TestCalculateEndpointUnknownBundleIgnored(t *testing.T) {
	h := newHandler(t)
	rec, body := doCalculate(t, h, "/api/v1/pricing/calculate?productId=1&quantity=25&bundleCode=ZZ")
	require.Equal(t, http.StatusOK, rec.Code)
	_, present := body["discount_pct"]
	require.False(t, present)
}

func TestCalculateEndpointInvalidInput(t *testing.T) {
	h := newHandler(t)
	cases := []struct {
		name   string
		target string
	}{
		{"missing productId", "/api/v1/pricing/calculate?quantity=5"},
		{"non-integer productId", "/api/v1/pricing/calculate?productId=abc&quantity=5"},
		{"missing quantity", "/api/v1/pricing/calculate?productId=1"},
		{"fractional quantity", "/api/v1/pricing/calculate?productId=1&quantity=2.5"},
		{"zero quantity", "/api/v1/pricing/calculate?productId=1&quantity=0"},
		{"negative quantity", "/api/v1/pricing/calculate?productId=1&quantity=-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := doCalculate(t, h, tc.target)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			_, hasError := body["error"]
			require.True(t, hasError)
		})
	}
}

func TestCalculateEndpointUnknownProduct(t *testing.T) {
	h := newHandler(t)
	rec, body := doCalculate(t, h, "/api/v1/pricing/calculate?productId=424242&quantity=2")
	require.Equal(t, http.StatusNotFound, rec.Code)
	_, hasError := body["error"]
	require.True(t, hasError)
}
