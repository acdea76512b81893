package cart_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nebula-retail/storefront/internal/cart"
	"github.com/nebula-retail/storefront/internal/catalog"
	"github.com/nebula-retail/storefront/internal/upstream"
)

type singleCart struct {
	store *cart.Store
}

func (s singleCart) Cart(string) *cart.Store { return s.store }

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f fakeCatalog) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("products: %w", upstream.ErrNotFound)
	}
	return p, nil
}

type cartBody struct {
	Lines     []cart.Line     `json:"lines"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

type cartResponse struct {
	Data cartBody `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newCartRouter(t *testing.T, store *cart.Store) *chi.Mux {
	t.Helper()
	handler := &cart.Handler{
		Carts: singleCart{store: store},
		Catalog: fakeCatalog{products: map[string]catalog.Product{
			"p1": {ID: "p1", Name: "Widget", Price: decimal.RequireFromString("29.99")},
			"p2": {ID: "p2", Name: "Gadget", Price: decimal.RequireFromString("12.75")},
		}},
		SessionID: func(context.Context) (string, bool) { return "sess-1", true },
	}
	r := chi.NewRouter()
	r.Get("/cart", handler.Get)
	r.Delete("/cart", handler.Clear)
	r.Post("/cart/items", handler.AddItem)
	r.Patch("/cart/items/{productId}", handler.UpdateItem)
	r.Delete("/cart/items/{productId}", handler.RemoveItem)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeCart(t *testing.T, rr *httptest.ResponseRecorder) cartBody {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data
}

func TestAddItemCopiesCatalogAttributes(t *testing.T) {
	store := cart.New()
	router := newCartRouter(t, store)

	rr := doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p1","quantity":2}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeCart(t, rr)
	require.Len(t, body.Lines, 1)
	require.Equal(t, "Widget", body.Lines[0].Name)
	require.Equal(t, 2, body.ItemCount)
	require.True(t, body.Subtotal.Equal(decimal.RequireFromString("59.98")), "got %s", body.Subtotal)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	store := cart.New()
	router := newCartRouter(t, store)

	rr := doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 1, decodeCart(t, rr).ItemCount)
}

func TestAddItemUnknownProduct(t *testing.T) {
	router := newCartRouter(t, cart.New())

	rr := doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"missing"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestAddItemRejectsMissingProductID(t *testing.T) {
	router := newCartRouter(t, cart.New())

	rr := doJSON(t, router, http.MethodPost, "/cart/items", `{"quantity":2}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetQuotesTaxWithoutShipping(t *testing.T) {
	store := cart.New()
	store.AddItem(cart.Product{ID: "p3", Name: "Bulk", UnitPrice: decimal.RequireFromString("100.00")}, 1)
	router := newCartRouter(t, store)

	rr := doJSON(t, router, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeCart(t, rr)
	require.True(t, body.Tax.Equal(decimal.RequireFromString("8.00")), "got %s", body.Tax)
	require.True(t, body.Total.Equal(decimal.RequireFromString("108.00")), "shipping must not appear on the cart page, got %s", body.Total)
}

func TestUpdateItemZeroRemovesLine(t *testing.T) {
	store := cart.New()
	router := newCartRouter(t, store)
	doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p1","quantity":2}`)

	rr := doJSON(t, router, http.MethodPatch, "/cart/items/p1", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, decodeCart(t, rr).Lines)
}

func TestUpdateItemUnknownIDLeavesCartUnchanged(t *testing.T) {
	store := cart.New()
	router := newCartRouter(t, store)
	doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p1","quantity":1}`)

	rr := doJSON(t, router, http.MethodPatch, "/cart/items/ghost", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decodeCart(t, rr)
	require.Len(t, body.Lines, 1)
	require.Equal(t, "p1", body.Lines[0].ProductID)
	require.Equal(t, 1, body.ItemCount)
}

func TestRemoveItemThenClear(t *testing.T) {
	store := cart.New()
	router := newCartRouter(t, store)
	doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p1","quantity":1}`)
	doJSON(t, router, http.MethodPost, "/cart/items", `{"productId":"p2","quantity":3}`)

	rr := doJSON(t, router, http.MethodDelete, "/cart/items/p1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, 3, decodeCart(t, rr).ItemCount)

	rr = doJSON(t, router, http.MethodDelete, "/cart", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, decodeCart(t, rr).Lines)
}

func TestCartHandlerRequiresSession(t *testing.T) {
	handler := &cart.Handler{
		Carts:     singleCart{store: cart.New()},
		Catalog:   fakeCatalog{},
		SessionID: func(context.Context) (string, bool) { return "", false },
	}
	rr := httptest.NewRecorder()
	handler.Get(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
