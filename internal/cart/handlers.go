package cart

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/andes-sport/backend-tienda/internal/common"
)

// Handler wires cart operations to HTTP.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type addItemPayload struct {
	ProductID int64 `json:"productId" validate:"required,gte=1"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type applyBundlePayload struct {
	Code string `json:"code" validate:"required,min=1,max=32"`
}

// Create handles POST /api/v1/carts.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	view, err := h.Svc.Create(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": view})
}

// Get handles GET /api/v1/carts/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	view, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

// AddItem handles POST /api/v1/carts/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	var payload addItemPayload
	if !h.decode(w, r, &payload) {
		return
	}
	if err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.Quantity); err != nil {
		common.WriteError(w, err)
		return
	}
	h.respondWithCart(w, r)
}

// RemoveItem handles DELETE /api/v1/carts/{id}/items/{productId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	productID, err := common.ParseStrictInt(chi.URLParam(r, "productId"))
	if err != nil {
		common.WriteError(w, common.InvalidArgument("productId", "productId must be a positive integer", err))
		return
	}
	if err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), productID); err != nil {
		common.WriteError(w, err)
		return
	}
	h.respondWithCart(w, r)
}

// ApplyBundle handles POST /api/v1/carts/{id}/apply-bundle.
func (h *Handler) ApplyBundle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	var payload applyBundlePayload
	if !h.decode(w, r, &payload) {
		return
	}
	if err := h.Svc.ApplyBundle(r.Context(), chi.URLParam(r, "id"), payload.Code); err != nil {
		common.WriteError(w, err)
		return
	}
	h.respondWithCart(w, r)
}

// ClearBundle handles DELETE /api/v1/carts/{id}/bundle.
func (h *Handler) ClearBundle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart service not configured", nil)
		return
	}
	if err := h.Svc.ClearBundle(r.Context(), chi.URLParam(r, "id")); err != nil {
		common.WriteError(w, err)
		return
	}
	h.respondWithCart(w, r)
}

func (h *Handler) respondWithCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": view})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, err.Error(), nil)
			return false
		}
	}
	return true
}
