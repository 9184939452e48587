package driven

import (
	"context"

	"github.com/alorle/stream-bridge/internal/snapshot"
)

// SnapshotRepository defines the interface for snapshot persistence.
// This is a driven port implemented by concrete adapters (e.g., JSON files, BoltDB).
type SnapshotRepository interface {
	// Load retrieves the persisted snapshot. Returns snapshot.ErrNotFound
	// if nothing has been persisted yet.
	Load(ctx context.Context) (*snapshot.Snapshot, error)

	// Save persists the catalog and Detail-URL cache of a snapshot,
	// replacing whatever was stored before.
	Save(ctx context.Context, snap *snapshot.Snapshot) error

	// Ping checks if the storage is accessible and operational.
	// Returns nil if healthy, otherwise returns an error describing the issue.
	Ping(ctx context.Context) error
}
