package order_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nebula-retail/storefront/internal/order"
	"github.com/nebula-retail/storefront/internal/upstream"
)

type historyResponse struct {
	Data []order.Record `json:"data"`
}

func TestListOrderHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/orders", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":"ord_1","status":"shipped","total":"117.99","shipping_name":"Ada Lovelace","shipping_address":"12 Analytical Way","shipping_city":"London","shipping_zip":"EC1A 1BB"},
			{"id":"ord_2","status":"received","total":"21.59","shipping_name":"Grace Hopper","shipping_address":"1 Compiler Ct","shipping_city":"Arlington","shipping_zip":"22201"}
		]`))
	}))
	defer srv.Close()

	handler := &order.Handler{Svc: &order.Service{Orders: upstream.New("orders", srv.URL, time.Second)}}
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	require.Equal(t, "Ada Lovelace", resp.Data[0].ShippingName)
	require.True(t, resp.Data[0].Total.Equal(decimal.RequireFromString("117.99")))
}

func TestListOrderHistoryEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	handler := &order.Handler{Svc: &order.Service{Orders: upstream.New("orders", srv.URL, time.Second)}}
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestListOrderHistoryUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	handler := &order.Handler{Svc: &order.Service{Orders: upstream.New("orders", srv.URL, time.Second)}}
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "UPSTREAM_STATUS", resp.Error.Code)
	require.EqualValues(t, 500, resp.Error.Details["status"])
}

func TestListOrderHistoryUnconfigured(t *testing.T) {
	handler := &order.Handler{Svc: &order.Service{Orders: upstream.New("orders", "", time.Second)}}
	rr := httptest.NewRecorder()
	handler.List(rr, httptest.NewRequest(http.MethodGet, "/orders", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
