package bundle

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/andes-sport/backend-tienda/internal/common"
	dbgen "github.com/andes-sport/backend-tienda/internal/db/gen"
)

// AdminHandler exposes administrative bundle management endpoints.
type AdminHandler struct {
	Svc      *Service
	Validate *validator.Validate
}

type bundlePayload struct {
	Code        string     `json:"code" validate:"required,alphanum,min=1,max=32"`
	DiscountPct int32      `json:"discountPct" validate:"gte=0,lte=100"`
	Active      *bool      `json:"active"`
	ValidFrom   *time.Time `json:"validFrom"`
	ValidTo     *time.Time `json:"validTo"`
}

type bundleResponse struct {
	Code        string     `json:"code"`
	DiscountPct int32      `json:"discount_pct"`
	Active      bool       `json:"active"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidTo     *time.Time `json:"valid_to,omitempty"`
}

// Create handles POST /api/v1/admin/bundles.
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "bundle service not configured", nil)
		return
	}
	payload, ok := h.decode(w, r, "")
	if !ok {
		return
	}
	row, err := h.Svc.Create(r.Context(), payloadToParams(payload))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": toResponse(row)})
}

// Update handles PUT /api/v1/admin/bundles/{code}.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "bundle service not configured", nil)
		return
	}
	code := strings.TrimSpace(chi.URLParam(r, "code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "code is required", nil)
		return
	}
	payload, ok := h.decode(w, r, code)
	if !ok {
		return
	}
	row, err := h.Svc.Update(r.Context(), payloadToParams(payload))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": toResponse(row)})
}

// List handles GET /api/v1/admin/bundles.
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "bundle service not configured", nil)
		return
	}
	rows, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	out := make([]bundleResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toResponse(row))
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *AdminHandler) decode(w http.ResponseWriter, r *http.Request, code string) (bundlePayload, bool) {
	var payload bundlePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return payload, false
	}
	if code != "" {
		payload.Code = code
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
			return payload, false
		}
	}
	if payload.ValidFrom != nil && payload.ValidTo != nil && payload.ValidTo.Before(*payload.ValidFrom) {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "validTo cannot precede validFrom", nil)
		return payload, false
	}
	return payload, true
}

func payloadToParams(p bundlePayload) CreateParams {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return CreateParams{
		Code:        p.Code,
		DiscountPct: p.DiscountPct,
		Active:      active,
		ValidFrom:   p.ValidFrom,
		ValidTo:     p.ValidTo,
	}
}

func toResponse(row dbgen.Bundle) bundleResponse {
	resp := bundleResponse{Code: row.Code, DiscountPct: row.DiscountPct, Active: row.Active}
	resp.ValidFrom = timePtr(row.ValidFrom)
	resp.ValidTo = timePtr(row.ValidTo)
	return resp
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
