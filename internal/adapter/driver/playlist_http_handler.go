package driver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alorle/stream-bridge/internal/application"
	"github.com/alorle/stream-bridge/internal/catalog"
)

const (
	msgNotCached         = "Data not available yet, please try again shortly."
	msgMissingCredential = "Authentication token not configured on server."
)

// PlaylistHTTPHandler handles HTTP requests for playlist generation.
type PlaylistHTTPHandler struct {
	service *application.PlaylistService
	logger  *slog.Logger
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.PlaylistService, logger *slog.Logger) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /playlist.m3u
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Only GET method is allowed
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Generate M3U playlist using the request's Host header
	m3u, err := h.service.GenerateM3U(r.Context(), r.Host)
	switch {
	case errors.Is(err, application.ErrNoSnapshot):
		h.logger.Warn("playlist requested before data was cached")
		http.Error(w, msgNotCached, http.StatusServiceUnavailable)
		return
	case errors.Is(err, catalog.ErrMissingCredential):
		h.logger.Error("playlist generation failed", "error", err)
		http.Error(w, msgMissingCredential, http.StatusInternalServerError)
		return
	case err != nil:
		h.logger.Error("playlist generation failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Write M3U response with proper content type
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(m3u))
}
