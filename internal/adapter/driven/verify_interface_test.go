package driven

import (
	port "github.com/alorle/stream-bridge/internal/port/driven"
)

// Compile-time check that StreamsAPIHTTPClient implements StreamsAPI interface
var _ port.StreamsAPI = (*StreamsAPIHTTPClient)(nil)

// Compile-time check that SnapshotFileRepository implements SnapshotRepository interface
var _ port.SnapshotRepository = (*SnapshotFileRepository)(nil)

// Compile-time check that SnapshotBoltDBRepository implements SnapshotRepository interface
var _ port.SnapshotRepository = (*SnapshotBoltDBRepository)(nil)
