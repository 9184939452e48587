package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/metrics"
	"github.com/alorle/stream-bridge/internal/port/driven"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

const refreshKey = "refresh"

// Detail fetch outcomes, used as metric labels.
const (
	detailOK                = "ok"
	detailMissingCredential = "missing_credential"
	detailIncomplete        = "incomplete"
	detailError             = "error"
)

// RefreshResult summarizes a successful refresh cycle.
type RefreshResult struct {
	ID           string
	Streams      int
	PlaybackURLs int
	FetchedAt    time.Time
}

// Attempt records the outcome of the most recent refresh cycle.
// Err is nil for a successful cycle.
type Attempt struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// RefreshService runs refresh cycles: fetch the catalog, resolve a playback
// URL for every stream, publish the result as a new snapshot and persist it.
// Concurrent callers share a single in-flight cycle.
type RefreshService struct {
	api         driven.StreamsAPI
	repo        driven.SnapshotRepository
	store       *snapshot.Store
	logger      *slog.Logger
	concurrency int
	now         func() time.Time

	group   singleflight.Group
	running atomic.Bool

	mu   sync.Mutex
	last Attempt
}

// NewRefreshService creates a new RefreshService. repo may be nil, in which
// case snapshots are kept in memory only. concurrency bounds the number of
// detail requests in flight and is at least 1.
func NewRefreshService(
	api driven.StreamsAPI,
	repo driven.SnapshotRepository,
	store *snapshot.Store,
	logger *slog.Logger,
	concurrency int,
) *RefreshService {
	return &RefreshService{
		api:         api,
		repo:        repo,
		store:       store,
		logger:      logger,
		concurrency: max(concurrency, 1),
		now:         time.Now,
	}
}

// Refresh runs a refresh cycle, or waits for the one already running and
// returns its result. On failure the previously published snapshot is left
// untouched.
//
// The cycle itself is detached from ctx so that a caller giving up does not
// abort a cycle other callers are waiting on.
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	ch := s.group.DoChan(refreshKey, func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return RefreshResult{}, res.Err
		}
		return res.Val.(RefreshResult), nil
	case <-ctx.Done():
		return RefreshResult{}, ctx.Err()
	}
}

// Running reports whether a refresh cycle is in progress.
func (s *RefreshService) Running() bool {
	return s.running.Load()
}

// LastAttempt returns the outcome of the most recent completed cycle.
func (s *RefreshService) LastAttempt() Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Restore publishes the persisted snapshot, if any. It reports whether a
// snapshot was restored; a missing snapshot is not an error.
func (s *RefreshService) Restore(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}

	snap, err := s.repo.Load(ctx)
	if errors.Is(err, snapshot.ErrNotFound) {
		s.logger.Info("no persisted snapshot found")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load persisted snapshot: %w", err)
	}

	s.store.Publish(snap)
	metrics.SetSnapshot(snap.Catalog().StreamCount(), snap.PlaybackURLCount(), snap.FetchedAt())

	s.logger.Info("restored persisted snapshot",
		"streams", snap.Catalog().StreamCount(),
		"playback_urls", snap.PlaybackURLCount(),
		"fetched_at", snap.FetchedAt(),
	)
	return true, nil
}

func (s *RefreshService) refresh(ctx context.Context) (result RefreshResult, err error) {
	s.running.Store(true)
	defer s.running.Store(false)

	id := uuid.NewString()
	logger := s.logger.With("refresh_id", id)
	startedAt := s.now()

	defer func() {
		s.record(Attempt{ID: id, StartedAt: startedAt, FinishedAt: s.now(), Err: err})
		metrics.RecordRefresh(err == nil, s.now().Sub(startedAt))
	}()

	logger.Info("starting refresh cycle")

	cat, err := s.api.FetchCatalog(ctx)
	if err != nil {
		logger.Error("catalog fetch failed, keeping previous snapshot", "error", err)
		return RefreshResult{}, err
	}
	if !cat.Success {
		logger.Error("catalog response reported failure, keeping previous snapshot")
		return RefreshResult{}, fmt.Errorf("fetching catalog: %w", catalog.ErrUnsuccessful)
	}

	fetchedAt := s.now()
	urls := s.resolvePlaybackURLs(ctx, logger, cat)

	snap := snapshot.New(cat, urls, fetchedAt)
	s.store.Publish(snap)
	metrics.SetSnapshot(cat.StreamCount(), len(urls), fetchedAt)

	logger.Info("published snapshot",
		"categories", len(cat.Categories),
		"streams", cat.StreamCount(),
		"playback_urls", len(urls),
	)

	if s.repo != nil {
		if saveErr := s.repo.Save(ctx, snap); saveErr != nil {
			logger.Error("failed to persist snapshot", "error", saveErr)
		}
	}

	return RefreshResult{
		ID:           id,
		Streams:      cat.StreamCount(),
		PlaybackURLs: len(urls),
		FetchedAt:    fetchedAt,
	}, nil
}

// resolvePlaybackURLs builds a fresh Detail-URL cache for every stream with an id.
func (s *RefreshService) resolvePlaybackURLs(ctx context.Context, logger *slog.Logger, cat catalog.Catalog) map[string]string {
	ids := streamIDs(cat)
	urls := make(map[string]string, len(ids))

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			url, ok := s.fetchPlaybackURL(ctx, logger, id)
			if !ok {
				return nil
			}
			mu.Lock()
			urls[id.String()] = url
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("resolved playback urls", "requested", len(ids), "resolved", len(urls))
	return urls
}

// fetchPlaybackURL turns a detail lookup into a URL or the missing case.
// Failures are logged and never returned.
func (s *RefreshService) fetchPlaybackURL(ctx context.Context, logger *slog.Logger, id catalog.StreamID) (string, bool) {
	url, err := s.api.FetchPlaybackURL(ctx, id)
	switch {
	case err == nil:
		metrics.RecordDetailFetch(detailOK)
		return url, true
	case errors.Is(err, catalog.ErrMissingCredential):
		metrics.RecordDetailFetch(detailMissingCredential)
		logger.Error("cannot fetch stream detail", "stream_id", id, "error", err)
	case errors.Is(err, catalog.ErrUnsuccessful),
		errors.Is(err, catalog.ErrMissingDetailData),
		errors.Is(err, catalog.ErrMissingPlaybackURL):
		metrics.RecordDetailFetch(detailIncomplete)
		logger.Warn("stream detail has no playback url", "stream_id", id, "error", err)
	default:
		metrics.RecordDetailFetch(detailError)
		logger.Error("stream detail request failed", "stream_id", id, "error", err)
	}
	return "", false
}

func (s *RefreshService) record(a Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = a
}

// streamIDs returns the distinct non-empty stream ids in catalog order.
func streamIDs(cat catalog.Catalog) []catalog.StreamID {
	seen := make(map[catalog.StreamID]struct{}, cat.StreamCount())
	ids := make([]catalog.StreamID, 0, cat.StreamCount())

	for _, st := range cat.All() {
		if st.ID.IsZero() {
			continue
		}
		if _, ok := seen[st.ID]; ok {
			continue
		}
		seen[st.ID] = struct{}{}
		ids = append(ids, st.ID)
	}
	return ids
}
