package application

import (
	"context"
	"time"

	"github.com/alorle/stream-bridge/internal/snapshot"
)

// Status is a summary of the published snapshot and the refresh lifecycle.
type Status struct {
	HasSnapshot          bool
	FetchedAt            time.Time
	Age                  time.Duration
	Categories           int
	Streams              int
	PlaybackURLs         int
	CredentialConfigured bool
	Refreshing           bool
	LastAttempt          Attempt
}

// StatusService reports the state shown on the status page.
type StatusService struct {
	store      *snapshot.Store
	refresher  *RefreshService
	credential string
	now        func() time.Time
}

// NewStatusService creates a new StatusService.
func NewStatusService(store *snapshot.Store, refresher *RefreshService, credential string) *StatusService {
	return &StatusService{
		store:      store,
		refresher:  refresher,
		credential: credential,
		now:        time.Now,
	}
}

// Status returns the current status.
func (s *StatusService) Status(ctx context.Context) Status {
	st := Status{
		CredentialConfigured: s.credential != "",
	}

	if s.refresher != nil {
		st.Refreshing = s.refresher.Running()
		st.LastAttempt = s.refresher.LastAttempt()
	}

	snap := s.store.Load()
	if snap == nil {
		return st
	}

	cat := snap.Catalog()
	st.HasSnapshot = true
	st.FetchedAt = snap.FetchedAt()
	st.Categories = len(cat.Categories)
	st.Streams = cat.StreamCount()
	st.PlaybackURLs = snap.PlaybackURLCount()
	if !st.FetchedAt.IsZero() {
		st.Age = s.now().Sub(st.FetchedAt).Truncate(time.Second)
	}

	return st
}
