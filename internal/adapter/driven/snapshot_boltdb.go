package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

const (
	snapshotBucket = "snapshot"

	catalogKey      = "catalog"
	playbackURLsKey = "playback_urls"
	fetchedAtKey    = "fetched_at"
)

// SnapshotBoltDBRepository implements the SnapshotRepository port using BoltDB.
// The catalog and Detail-URL cache are stored as JSON documents in one bucket
// and replaced together in a single transaction.
type SnapshotBoltDBRepository struct {
	db *bbolt.DB
}

// NewSnapshotBoltDBRepository creates a new BoltDB-backed snapshot repository.
// It initializes the required bucket if it doesn't exist.
func NewSnapshotBoltDBRepository(db *bbolt.DB) (*SnapshotBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(snapshotBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &SnapshotBoltDBRepository{db: db}, nil
}

// Load retrieves the persisted snapshot from BoltDB.
func (r *SnapshotBoltDBRepository) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var snap *snapshot.Snapshot

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return errors.New("snapshot bucket not found")
		}

		catalogData := bucket.Get([]byte(catalogKey))
		if catalogData == nil {
			return snapshot.ErrNotFound
		}

		cat, err := catalog.Decode(catalogData)
		if err != nil {
			return fmt.Errorf("failed to unmarshal catalog: %w", err)
		}

		urls := map[string]string{}
		if data := bucket.Get([]byte(playbackURLsKey)); data != nil {
			if err := json.Unmarshal(data, &urls); err != nil {
				return fmt.Errorf("failed to unmarshal playback urls: %w", err)
			}
		}

		var fetchedAt time.Time
		if data := bucket.Get([]byte(fetchedAtKey)); data != nil {
			if err := fetchedAt.UnmarshalText(data); err != nil {
				return fmt.Errorf("failed to parse fetch time: %w", err)
			}
		}

		snap = snapshot.New(cat, urls, fetchedAt)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snap, nil
}

// Save persists the snapshot to BoltDB.
func (r *SnapshotBoltDBRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	// Check context cancellation
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}

	catalogData, err := snap.Catalog().Document()
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	urlData, err := json.Marshal(snap.PlaybackURLs())
	if err != nil {
		return fmt.Errorf("failed to marshal playback urls: %w", err)
	}
	fetchedAt, err := snap.FetchedAt().MarshalText()
	if err != nil {
		return fmt.Errorf("failed to marshal fetch time: %w", err)
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return errors.New("snapshot bucket not found")
		}

		if err := bucket.Put([]byte(catalogKey), catalogData); err != nil {
			return err
		}
		if err := bucket.Put([]byte(playbackURLsKey), urlData); err != nil {
			return err
		}
		return bucket.Put([]byte(fetchedAtKey), fetchedAt)
	})
}

// Ping checks if the database is accessible and operational.
func (r *SnapshotBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(snapshotBucket)) == nil {
			return errors.New("snapshot bucket not found")
		}
		return nil
	})
}
