package config

import (
	"net/http"

	"github.com/nebula-retail/storefront/internal/common"
)

// Handler exposes the browser-facing service map so the frontend can
// discover where to reach each backend directly.
type Handler struct {
	Cfg *Config
}

// Services returns the public base URL for every known service. Entries
// without a configured public URL come back as empty strings.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	if h.Cfg == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "config handler not configured", nil)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"services": h.Cfg.PublicServiceMap()})
}
