package config_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nebula-retail/storefront/internal/config"
)

func TestServicesHandler(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PUBLIC_PRODUCTS_API_URL":  "https://products.example.com",
		"PUBLIC_ORDERS_API_URL":    "https://orders.example.com",
		"PUBLIC_INVENTORY_API_URL": "",
	})
	require.NoError(t, err)

	handler := &config.Handler{Cfg: cfg}
	rr := httptest.NewRecorder()
	handler.Services(rr, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data struct {
			Services map[string]string `json:"services"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "https://products.example.com", resp.Data.Services["products"])
	require.Equal(t, "", resp.Data.Services["inventory"])
}

func TestServicesHandlerUnconfigured(t *testing.T) {
	handler := &config.Handler{}
	rr := httptest.NewRecorder()
	handler.Services(rr, httptest.NewRequest(http.MethodGet, "/api/v1/config", nil))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}
