package pricing

import (
	"net/http"
	"strings"

	"github.com/andes-sport/backend-tienda/internal/common"
)

// Handler exposes the public price calculation endpoint.
type Handler struct {
	Svc *Service
}

// Calculate handles GET /api/v1/pricing/calculate.
//
// The 200 body is the bare quote object; discount_pct is omitted when no
// bundle discount applied. Unknown bundle codes follow the configured policy:
// by default they are ignored and the quote carries no discount.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "pricing service not configured", nil)
		return
	}
	query := r.URL.Query()

	productID, err := common.ParseStrictInt(query.Get("productId"))
	if err != nil {
		common.WriteError(w, common.InvalidArgument("productId", "productId must be a positive integer", err))
		return
	}
	quantity, err := common.ParseStrictInt(query.Get("quantity"))
	if err != nil {
		common.WriteError(w, common.InvalidArgument("quantity", "quantity must be a positive integer", err))
		return
	}
	bundleCode := strings.TrimSpace(query.Get("bundleCode"))

	quote, err := h.Svc.Calculate(r.Context(), productID, int(quantity), bundleCode)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, quote)
}
