package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes the external services the storefront depends on.
type Checker interface {
	PingProducts(ctx context.Context, timeout time.Duration) error
	PingOrders(ctx context.Context, timeout time.Duration) error
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker         Checker
	ProductsTimeout time.Duration
	OrdersTimeout   time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on upstream service probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	productsStatus := "ok"
	if err := h.Checker.PingProducts(ctx, h.timeout(h.ProductsTimeout)); err != nil {
		productsStatus = err.Error()
	}
	ordersStatus := "ok"
	if err := h.Checker.PingOrders(ctx, h.timeout(h.OrdersTimeout)); err != nil {
		ordersStatus = err.Error()
	}
	status := map[string]string{
		"products": productsStatus,
		"orders":   ordersStatus,
	}
	w.Header().Set("Content-Type", "application/json")
	if productsStatus != "ok" || ordersStatus != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) timeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return 500 * time.Millisecond
	}
	return configured
}
