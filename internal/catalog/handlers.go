package catalog

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nebula-retail/storefront/internal/common"
	"github.com/nebula-retail/storefront/internal/upstream"
)

// Handler wires the catalog service to HTTP.
type Handler struct {
	Svc *Service
}

// Products returns the full product listing.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	products, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, upstream.MapError(err, "products"))
		return
	}
	common.Data(w, http.StatusOK, products)
}

// ProductDetail returns a single product with its stock level. A missing
// product renders the dedicated not-found shape rather than a generic error.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "product id is required", nil)
		return
	}
	detail, err := h.Svc.GetDetail(r.Context(), id)
	if err != nil {
		common.WriteError(w, upstream.MapError(err, "products"))
		return
	}
	common.Data(w, http.StatusOK, detail)
}
