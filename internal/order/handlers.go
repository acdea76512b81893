package order

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nebula-retail/storefront/internal/common"
	"github.com/nebula-retail/storefront/internal/upstream"
)

// Record mirrors one row of the Orders service history listing. Field names
// follow that service's snake_case contract.
type Record struct {
	ID              string          `json:"id"`
	Status          string          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	ShippingName    string          `json:"shipping_name"`
	ShippingAddress string          `json:"shipping_address"`
	ShippingCity    string          `json:"shipping_city"`
	ShippingZip     string          `json:"shipping_zip"`
}

// Service reads order history from the external Orders service. Read-only;
// it never touches the cart store.
type Service struct {
	Orders *upstream.Client
}

// List fetches all past orders.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := s.Orders.GetJSON(ctx, "/api/orders", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Handler wires order history to HTTP.
type Handler struct {
	Svc *Service
}

// List returns the order history.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "order service not configured", nil)
		return
	}
	records, err := h.Svc.List(r.Context())
	if err != nil {
		common.WriteError(w, upstream.MapError(err, "orders"))
		return
	}
	if records == nil {
		records = []Record{}
	}
	common.Data(w, http.StatusOK, records)
}
