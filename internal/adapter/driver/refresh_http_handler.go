package driver

import (
	"log/slog"
	"net/http"

	"github.com/alorle/stream-bridge/internal/application"
)

// RefreshHTTPHandler triggers a refresh cycle and returns to the status page.
type RefreshHTTPHandler struct {
	service *application.RefreshService
	logger  *slog.Logger
}

// NewRefreshHTTPHandler creates a new HTTP handler for manual refreshes.
func NewRefreshHTTPHandler(service *application.RefreshService, logger *slog.Logger) *RefreshHTTPHandler {
	return &RefreshHTTPHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /refresh
func (h *RefreshHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	h.logger.Info("manual refresh requested")
	if _, err := h.service.Refresh(r.Context()); err != nil {
		h.logger.Error("manual refresh failed", "error", err)
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
