package cart

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nebula-retail/storefront/internal/catalog"
	"github.com/nebula-retail/storefront/internal/common"
	"github.com/nebula-retail/storefront/internal/events"
	"github.com/nebula-retail/storefront/internal/obs"
	"github.com/nebula-retail/storefront/internal/pricing"
	"github.com/nebula-retail/storefront/internal/upstream"
)

// Resolver hands out the cart store owned by a session.
type Resolver interface {
	Cart(sessionID string) *Store
}

// ProductSource fetches catalog entries whose display attributes are copied
// onto new cart lines.
type ProductSource interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// Handler wires session cart stores to HTTP.
type Handler struct {
	Carts     Resolver
	Catalog   ProductSource
	Events    *events.Bus
	SessionID func(ctx context.Context) (string, bool)
}

type addItemInput struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type updateItemInput struct {
	Quantity int `json:"quantity"`
}

// Get returns the cart snapshot with a tax-only pricing preview. The cart
// page never shows the shipping fee; that appears at checkout.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	h.writeCart(w, http.StatusOK, store.Snapshot())
}

// AddItem copies the catalog entry into the cart, accumulating quantity when
// the product is already present.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	var payload addItemInput
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	productID := strings.TrimSpace(payload.ProductID)
	if productID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "productId is required", nil)
		return
	}
	qty := 1
	if payload.Quantity != nil {
		qty = *payload.Quantity
	}
	product, err := h.Catalog.Get(r.Context(), productID)
	if err != nil {
		if errors.Is(err, upstream.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, common.CodeNotFound, "product not found", nil)
			return
		}
		common.WriteError(w, upstream.MapError(err, "products"))
		return
	}
	store.AddItem(Product{
		ID:        product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		ImageURL:  product.ImageURL,
	}, qty)
	h.record("add_item")
	h.emit(r.Context(), events.TopicCartItemAdded, map[string]any{"productId": productID, "quantity": qty})
	h.writeCart(w, http.StatusOK, store.Snapshot())
}

// UpdateItem sets a line's quantity exactly. Non-positive values remove the
// line; unknown ids with a positive quantity leave the cart unchanged.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "product id is required", nil)
		return
	}
	var payload updateItemInput
	if err := common.DecodeJSON(r, &payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid payload", nil)
		return
	}
	store.UpdateQuantity(productID, payload.Quantity)
	h.record("update_quantity")
	h.emit(r.Context(), events.TopicCartUpdated, map[string]any{"productId": productID, "quantity": payload.Quantity})
	h.writeCart(w, http.StatusOK, store.Snapshot())
}

// RemoveItem deletes a line. Removing an absent id is a silent no-op.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "product id is required", nil)
		return
	}
	store.RemoveItem(productID)
	h.record("remove_item")
	h.emit(r.Context(), events.TopicCartUpdated, map[string]any{"productId": productID, "removed": true})
	h.writeCart(w, http.StatusOK, store.Snapshot())
}

// Clear empties the cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	store.Clear()
	h.record("clear")
	h.emit(r.Context(), events.TopicCartCleared, nil)
	h.writeCart(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) (*Store, bool) {
	if h.Carts == nil || h.SessionID == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "cart handler not configured", nil)
		return nil, false
	}
	id, ok := h.SessionID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "session not established", nil)
		return nil, false
	}
	return h.Carts.Cart(id), true
}

func (h *Handler) writeCart(w http.ResponseWriter, status int, snap Snapshot) {
	quote := pricing.Quote(snap.Subtotal, false)
	common.Data(w, status, map[string]any{
		"lines":     snap.Lines,
		"itemCount": snap.ItemCount,
		"subtotal":  snap.Subtotal,
		"tax":       quote.Tax,
		"total":     quote.GrandTotal,
	})
}

func (h *Handler) record(op string) {
	if obs.CartOpsTotal != nil {
		obs.CartOpsTotal.WithLabelValues(op).Inc()
	}
}

func (h *Handler) emit(ctx context.Context, topic string, payload map[string]any) {
	if h.Events != nil {
		_ = h.Events.Emit(ctx, topic, payload)
	}
}
