package driver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/stream-bridge/internal/application"
)

// GuideHTTPHandler handles HTTP requests for the XMLTV guide.
type GuideHTTPHandler struct {
	guide     *application.GuideService
	refresher *application.RefreshService
	logger    *slog.Logger
}

// NewGuideHTTPHandler creates a new HTTP handler for the guide.
func NewGuideHTTPHandler(guide *application.GuideService, refresher *application.RefreshService, logger *slog.Logger) *GuideHTTPHandler {
	return &GuideHTTPHandler{guide: guide, refresher: refresher, logger: logger}
}

// ServeHTTP handles GET /epg.xml[?force_refresh=1]
func (h *GuideHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Any non-empty value forces a refresh. A failed refresh still renders
	// the previous snapshot.
	if r.URL.Query().Get("force_refresh") != "" {
		if _, err := h.refresher.Refresh(r.Context()); err != nil {
			h.logger.Error("forced refresh failed", "error", err)
		}
	}

	data, err := h.guide.GenerateXMLTV(r.Context())
	switch {
	case errors.Is(err, application.ErrNoSnapshot):
		h.logger.Warn("guide requested before data was cached")
		http.Error(w, msgNotCached, http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("guide generation failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
