package driver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alorle/stream-bridge/internal/application"
	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

func TestPlaylistHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /playlist.m3u returns the playlist", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewPlaylistHTTPHandler(svc.Playlist, newTestLogger())

		req := httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil)
		req.Host = "bridge.local:8880"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.apple.mpegurl" {
			t.Errorf("expected mpegurl content type, got %q", ct)
		}
		body := rec.Body.String()
		if !strings.HasPrefix(body, `#EXTM3U tvg-url="http://bridge.local:8880/epg.xml"`) {
			t.Errorf("expected header with guide url, got %q", body)
		}
		if !strings.Contains(body, "http://x/stream.ts") {
			t.Errorf("expected playback url, got %q", body)
		}
	})

	t.Run("returns 503 before data is cached", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "token")
		handler := NewPlaylistHTTPHandler(svc.Playlist, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), msgNotCached) {
			t.Errorf("expected not cached message, got %q", rec.Body.String())
		}
	})

	t.Run("returns 500 without credential", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "")
		handler := NewPlaylistHTTPHandler(svc.Playlist, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), msgMissingCredential) {
			t.Errorf("expected credential message, got %q", rec.Body.String())
		}
	})

	t.Run("no snapshot wins over missing credential", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "")
		handler := NewPlaylistHTTPHandler(svc.Playlist, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlist.m3u", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewPlaylistHTTPHandler(svc.Playlist, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/playlist.m3u", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
	})
}

func TestGuideHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /epg.xml returns the guide with no-cache headers", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		headers := map[string]string{
			"Content-Type":  "application/xml; charset=utf-8",
			"Cache-Control": "no-cache, no-store, must-revalidate",
			"Pragma":        "no-cache",
			"Expires":       "0",
		}
		for name, want := range headers {
			if got := rec.Header().Get(name); got != want {
				t.Errorf("expected %s %q, got %q", name, want, got)
			}
		}
		if !strings.Contains(rec.Body.String(), `<channel id="7782732900">`) {
			t.Errorf("expected channel record, got:\n%s", rec.Body.String())
		}
	})

	t.Run("force_refresh runs a refresh before rendering", func(t *testing.T) {
		store := snapshot.NewStore()
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				return lakersCatalog(), nil
			},
		}
		svc := testServices(store, api, "token")
		handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml?force_refresh=1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200 after forced refresh, got %d", rec.Code)
		}
		if store.Load() == nil {
			t.Error("expected snapshot to be published")
		}
	})

	t.Run("any non-empty force_refresh value refreshes", func(t *testing.T) {
		for _, value := range []string{"1", "yes", "on", "0", "false"} {
			t.Run(value, func(t *testing.T) {
				var calls atomic.Int32
				api := &mockStreamsAPI{
					fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
						calls.Add(1)
						return lakersCatalog(), nil
					},
				}
				svc := testServices(publishedStore(), api, "token")
				handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

				rec := httptest.NewRecorder()
				handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml?force_refresh="+value, nil))

				if rec.Code != http.StatusOK {
					t.Errorf("expected status 200, got %d", rec.Code)
				}
				if got := calls.Load(); got != 1 {
					t.Errorf("expected one refresh, got %d", got)
				}
			})
		}
	})

	t.Run("empty force_refresh does not refresh", func(t *testing.T) {
		var calls atomic.Int32
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				calls.Add(1)
				return lakersCatalog(), nil
			},
		}
		svc := testServices(publishedStore(), api, "token")
		handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml?force_refresh=", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if got := calls.Load(); got != 0 {
			t.Errorf("expected no refresh, got %d", got)
		}
	})

	t.Run("failed forced refresh still serves the previous snapshot", func(t *testing.T) {
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				return catalog.Catalog{}, errors.New("upstream down")
			},
		}
		svc := testServices(publishedStore(), api, "token")
		handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml?force_refresh=true", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})

	t.Run("returns 503 before data is cached", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "token")
		handler := NewGuideHTTPHandler(svc.Guide, svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/epg.xml", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
	})
}

func TestRefreshHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /refresh refreshes and redirects to status", func(t *testing.T) {
		store := snapshot.NewStore()
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				return lakersCatalog(), nil
			},
		}
		svc := testServices(store, api, "token")
		handler := NewRefreshHTTPHandler(svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))

		if rec.Code != http.StatusFound {
			t.Errorf("expected status 302, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/" {
			t.Errorf("expected redirect to /, got %q", loc)
		}
		if store.Load() == nil {
			t.Error("expected snapshot to be published")
		}
	})

	t.Run("redirects even when the refresh fails", func(t *testing.T) {
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				return catalog.Catalog{}, errors.New("upstream down")
			},
		}
		svc := testServices(snapshot.NewStore(), api, "token")
		handler := NewRefreshHTTPHandler(svc.Refresh, newTestLogger())

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/refresh", nil))

		if rec.Code != http.StatusFound {
			t.Errorf("expected status 302, got %d", rec.Code)
		}
	})
}

func TestStatusHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("reflects the current snapshot", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewStatusHTTPHandler(svc.Status)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		body := rec.Body.String()
		for _, want := range []string{
			"Status: OK",
			"Cached Categories: 1",
			"Cached Streams (in main list): 1",
			"Cached Playback URLs: 1",
			"Auth Token Loaded: Yes",
			"seconds ago",
			`name="force_refresh" value="1"`,
		} {
			if !strings.Contains(body, want) {
				t.Errorf("expected %q in status page, got:\n%s", want, body)
			}
		}
	})

	t.Run("reports missing data and credential", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "")
		handler := NewStatusHTTPHandler(svc.Status)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		body := rec.Body.String()
		if !strings.Contains(body, "Error: Main stream list data not cached") {
			t.Error("expected missing data status")
		}
		if !strings.Contains(body, "No data cached") {
			t.Error("expected no data age")
		}
		if !strings.Contains(body, "CRITICAL: Set PPV_AUTH_TOKEN") {
			t.Error("expected missing credential warning")
		}
	})

	t.Run("shows the last refresh failure", func(t *testing.T) {
		api := &mockStreamsAPI{
			fetchCatalogFunc: func(ctx context.Context) (catalog.Catalog, error) {
				return catalog.Catalog{}, errors.New("upstream <down>")
			},
		}
		svc := testServices(snapshot.NewStore(), api, "token")
		_, _ = svc.Refresh.Refresh(context.Background())
		handler := NewStatusHTTPHandler(svc.Status)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if !strings.Contains(rec.Body.String(), "upstream &lt;down&gt;") {
			t.Errorf("expected escaped failure message, got:\n%s", rec.Body.String())
		}
	})

	t.Run("unknown paths are not found", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "")
		handler := NewStatusHTTPHandler(svc.Status)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHealthHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /health returns 200 when all dependencies are healthy", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewHealthHTTPHandler(svc.Health)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}

		var resp healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "ok" || resp.Snapshot != "ok" || resp.Storage != "ok" || resp.Credential != "ok" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("GET /health returns 503 when storage is unavailable", func(t *testing.T) {
		repo := &mockSnapshotRepository{
			pingFunc: func(ctx context.Context) error {
				return errors.New("data directory unavailable")
			},
		}
		service := application.NewHealthService(publishedStore(), repo, "token")
		handler := NewHealthHTTPHandler(service)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}

		var resp healthResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != "degraded" || resp.Storage != "error" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("GET /health returns 503 without snapshot", func(t *testing.T) {
		svc := testServices(snapshot.NewStore(), &mockStreamsAPI{}, "token")
		handler := NewHealthHTTPHandler(svc.Health)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", rec.Code)
		}
	})

	t.Run("rejects non-GET methods", func(t *testing.T) {
		svc := testServices(publishedStore(), &mockStreamsAPI{}, "token")
		handler := NewHealthHTTPHandler(svc.Health)

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}
		body, _ := io.ReadAll(rec.Body)
		if !strings.Contains(string(body), "method not allowed") {
			t.Errorf("expected JSON error body, got %s", body)
		}
	})
}
