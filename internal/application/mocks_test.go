package application

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

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

// mockSnapshotRepository implements driven.SnapshotRepository for testing.
type mockSnapshotRepository struct {
	loadFunc func(ctx context.Context) (*snapshot.Snapshot, error)
	saveFunc func(ctx context.Context, snap *snapshot.Snapshot) error
	pingFunc func(ctx context.Context) error
}

func (m *mockSnapshotRepository) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return nil, snapshot.ErrNotFound
}

func (m *mockSnapshotRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, snap)
	}
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

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newCapturingLogger returns a logger that records every level into the buffer.
func newCapturingLogger() (*slog.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// lakersCatalog is the single-stream catalog used across generator tests.
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

func newPublishedStore(cat catalog.Catalog, urls map[string]string) *snapshot.Store {
	store := snapshot.NewStore()
	store.Publish(snapshot.New(cat, urls, time.Unix(1700000500, 0)))
	return store
}
