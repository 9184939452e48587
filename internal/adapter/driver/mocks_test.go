package driver

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/alorle/stream-bridge/internal/application"
	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

// mockStreamsAPI implements driven.StreamsAPI for testing.
type mockStreamsAPI struct {
	fetchCatalogFunc     func(ctx context.Context) (catalog.Catalog, error)
	fetchPlaybackURLFunc func(ctx context.Context, id catalog.StreamID) (string, error)
}

func (m *mockStreamsAPI) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	if m.fetchCatalogFunc != nil {
		return m.fetchCatalogFunc(ctx)
	}
	return catalog.Catalog{Success: true}, nil
}

func (m *mockStreamsAPI) FetchPlaybackURL(ctx context.Context, id catalog.StreamID) (string, error) {
	if m.fetchPlaybackURLFunc != nil {
		return m.fetchPlaybackURLFunc(ctx, id)
	}
	return "", catalog.ErrMissingPlaybackURL
}

// mockSnapshotRepository implements driven.SnapshotRepository for health check testing.
type mockSnapshotRepository struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockSnapshotRepository) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	return nil, snapshot.ErrNotFound
}

func (m *mockSnapshotRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	return nil
}

func (m *mockSnapshotRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func lakersCatalog() catalog.Catalog {
	return catalog.Catalog{
		Success: true,
		Categories: []catalog.Category{{
			Name: "NBA",
			Streams: []catalog.Stream{{
				ID:       "1",
				Name:     "Lakers vs Celtics",
				Poster:   "p.png",
				StartsAt: "1700000000",
				EndsAt:   "1700010000",
			}},
		}},
	}
}

// testServices wires real application services around a store and a mock API.
func testServices(store *snapshot.Store, api *mockStreamsAPI, token string) Services {
	logger := newTestLogger()
	refresher := application.NewRefreshService(api, nil, store, logger, 1)

	return Services{
		Status:   application.NewStatusService(store, refresher, token),
		Playlist: application.NewPlaylistService(store, token, "", nil, logger),
		Guide:    application.NewGuideService(store, "", nil, logger),
		Refresh:  refresher,
		Health:   application.NewHealthService(store, &mockSnapshotRepository{}, token),
	}
}

func publishedStore() *snapshot.Store {
	store := snapshot.NewStore()
	store.Publish(snapshot.New(lakersCatalog(), map[string]string{"1": "http://x/stream.ts"}, time.Now().Add(-time.Minute)))
	return store
}
