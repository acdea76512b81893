package checkout

import (
	"context"
	"net/http"

	"github.com/nebula-retail/storefront/internal/cart"
	"github.com/nebula-retail/storefront/internal/common"
)

// Handler wires checkout submission to HTTP.
type Handler struct {
	Svc       *Service
	Carts     cart.Resolver
	SessionID func(ctx context.Context) (string, bool)
}

// Checkout submits the session's cart as an order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Carts == nil || h.SessionID == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "checkout handler not configured", nil)
		return
	}
	id, ok := h.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "session not established", nil)
		return
	}
	var payload Input
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	out, err := h.Svc.Submit(r.Context(), h.Carts.Cart(id), payload)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, out)
}
