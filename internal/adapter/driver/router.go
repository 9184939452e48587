package driver

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alorle/stream-bridge/internal/application"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Status   *application.StatusService
	Playlist *application.PlaylistService
	Guide    *application.GuideService
	Refresh  *application.RefreshService
	Health   *application.HealthService
}

// NewRouter registers every route. The bridge routes are validated against
// the OpenAPI document; /metrics and /openapi.json are served as is.
func NewRouter(svc Services, logger *slog.Logger) (http.Handler, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}

	bridgeMux := http.NewServeMux()
	bridgeMux.Handle("/", NewStatusHTTPHandler(svc.Status))
	bridgeMux.Handle("/playlist.m3u", NewPlaylistHTTPHandler(svc.Playlist, logger))
	bridgeMux.Handle("/epg.xml", NewGuideHTTPHandler(svc.Guide, svc.Refresh, logger))
	bridgeMux.Handle("/refresh", NewRefreshHTTPHandler(svc.Refresh, logger))
	bridgeMux.Handle("/health", NewHealthHTTPHandler(svc.Health))

	rootMux := http.NewServeMux()
	rootMux.Handle("/metrics", promhttp.Handler())
	rootMux.Handle("/openapi.json", NewDocumentationHandler(doc))
	rootMux.Handle("/", NewRequestValidator(doc)(bridgeMux))

	return rootMux, nil
}
