// Package snapshot holds the unit of cached state exposed to readers: a
// catalog, the playback URLs resolved in the same refresh cycle, and the
// time the catalog was fetched.
package snapshot

import (
	"errors"
	"maps"
	"sync/atomic"
	"time"

	"github.com/alorle/stream-bridge/internal/catalog"
)

// ErrNotFound is returned by repositories when nothing has been persisted.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is immutable once created. A refresh builds a new one instead of
// editing the current one.
type Snapshot struct {
	catalog      catalog.Catalog
	playbackURLs map[string]string
	fetchedAt    time.Time
}

// New creates a snapshot. The URL map is copied.
func New(c catalog.Catalog, playbackURLs map[string]string, fetchedAt time.Time) *Snapshot {
	urls := make(map[string]string, len(playbackURLs))
	maps.Copy(urls, playbackURLs)

	return &Snapshot{
		catalog:      c,
		playbackURLs: urls,
		fetchedAt:    fetchedAt,
	}
}

// Catalog returns the cached catalog.
func (s *Snapshot) Catalog() catalog.Catalog {
	return s.catalog
}

// PlaybackURL returns the cached playback URL of a stream.
func (s *Snapshot) PlaybackURL(id catalog.StreamID) (string, bool) {
	if id.IsZero() {
		return "", false
	}
	url, ok := s.playbackURLs[id.String()]
	return url, ok
}

// PlaybackURLs returns a copy of the Detail-URL cache.
func (s *Snapshot) PlaybackURLs() map[string]string {
	return maps.Clone(s.playbackURLs)
}

// PlaybackURLCount returns the number of cached playback URLs.
func (s *Snapshot) PlaybackURLCount() int {
	return len(s.playbackURLs)
}

// FetchedAt returns when the catalog was fetched.
func (s *Snapshot) FetchedAt() time.Time {
	return s.fetchedAt
}

// Store publishes snapshots to concurrent readers. Load never blocks and
// never observes a partially built snapshot.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the published snapshot, or nil if none has been published.
func (s *Store) Load() *Snapshot {
	return s.current.Load()
}

// Publish replaces the published snapshot.
func (s *Store) Publish(snap *Snapshot) {
	s.current.Store(snap)
}
