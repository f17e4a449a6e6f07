package bundle

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andes-sport/backend-tienda/internal/common"
)

// Handler exposes the public bundle lookup endpoint.
type Handler struct {
	Svc *Service
}

// Get handles GET /api/v1/bundles/{code}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "bundle service not configured", nil)
		return
	}
	info, err := h.Svc.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": info})
}
