package application

import (
	"context"

	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/port/driven"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	store      *snapshot.Store
	repo       driven.SnapshotRepository
	credential string
}

// NewHealthService creates a new health check service. repo may be nil when
// snapshots are not persisted.
func NewHealthService(store *snapshot.Store, repo driven.SnapshotRepository, credential string) *HealthService {
	return &HealthService{
		store:      store,
		repo:       repo,
		credential: credential,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status     string          // "ok" if all components are healthy, "degraded" otherwise
	Snapshot   ComponentHealth // a snapshot has been published
	Storage    ComponentHealth // snapshot persistence
	Credential ComponentHealth // upstream credential is configured
}

// Check performs health checks on all dependencies.
// Returns the overall health status and individual component statuses.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "ok",
		Snapshot:   ComponentHealth{Status: "ok"},
		Storage:    ComponentHealth{Status: "ok"},
		Credential: ComponentHealth{Status: "ok"},
	}

	degrade := func(c *ComponentHealth, err error) {
		*c = ComponentHealth{Status: "error", Error: err.Error()}
		status.Status = "degraded"
	}

	if s.store.Load() == nil {
		degrade(&status.Snapshot, ErrNoSnapshot)
	}

	if s.repo != nil {
		if err := s.repo.Ping(ctx); err != nil {
			degrade(&status.Storage, err)
		}
	}

	if s.credential == "" {
		degrade(&status.Credential, catalog.ErrMissingCredential)
	}

	return status
}
