package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alorle/stream-bridge/internal/catalog"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

const (
	catalogFileName      = "stream_cache.json"
	playbackURLsFileName = "mpegts_cache.json"
)

// SnapshotFileRepository persists snapshots as two JSON documents in a
// directory: the catalog and the Detail-URL cache. The fetch time is the
// modification time of the catalog document.
// It implements the driven.SnapshotRepository port.
type SnapshotFileRepository struct {
	baseDir string
}

// NewSnapshotFileRepository creates a file-backed repository, ensuring the
// directory exists.
func NewSnapshotFileRepository(baseDir string) (*SnapshotFileRepository, error) {
	if baseDir == "" {
		return nil, errors.New("data directory cannot be empty")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return &SnapshotFileRepository{baseDir: baseDir}, nil
}

// Load reads the persisted documents. A missing catalog document yields
// snapshot.ErrNotFound; a missing URL document yields an empty cache.
func (r *SnapshotFileRepository) Load(ctx context.Context) (*snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	catalogPath := r.path(catalogFileName)

	info, err := os.Stat(catalogPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, snapshot.ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat catalog file: %w", err)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", catalogFileName, err)
	}
	cat, err := catalog.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", catalogFileName, err)
	}

	urls := map[string]string{}
	if err := readJSONFile(r.path(playbackURLsFileName), &urls); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return snapshot.New(cat, urls, info.ModTime()), nil
}

// Save writes both documents, each atomically. The catalog is written as
// the upstream sent it.
func (r *SnapshotFileRepository) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		return errors.New("snapshot cannot be nil")
	}

	doc, err := snap.Catalog().Document()
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", catalogFileName, err)
	}
	if err := writeFile(r.path(catalogFileName), doc); err != nil {
		return err
	}
	if err := writeJSONFile(r.path(playbackURLsFileName), snap.PlaybackURLs()); err != nil {
		return err
	}

	// Keep the recorded fetch time rather than the write time.
	if t := snap.FetchedAt(); !t.IsZero() {
		if err := os.Chtimes(r.path(catalogFileName), t, t); err != nil {
			return fmt.Errorf("failed to set catalog file time: %w", err)
		}
	}

	return nil
}

// Ping checks that the data directory is still present.
func (r *SnapshotFileRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(r.baseDir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", r.baseDir)
	}
	return nil
}

func (r *SnapshotFileRepository) path(name string) string {
	return filepath.Join(r.baseDir, name)
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

// writeFile writes to a temporary file in the same directory and renames
// it over the destination, so readers never see a truncated document.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}

	return nil
}
