package inspect

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is a point-in-time capture of the mirror model.
type Snapshot struct {
	TakenAt time.Time `json:"taken_at"`
	Cells   []Cell    `json:"cells"`
}

// Sink persists snapshots. Store returns a location the caller can hand
// back to whoever requested the snapshot.
type Sink interface {
	Store(ctx context.Context, snap *Snapshot) (string, error)
}

// DiskSink stores snapshots as JSON files in a directory.
type DiskSink struct {
	dir string
}

// NewDiskSink creates a disk sink, creating the directory if needed.
func NewDiskSink(dir string) (*DiskSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &DiskSink{dir: dir}, nil
}

// Store writes the snapshot and returns the file path.
func (s *DiskSink) Store(_ context.Context, snap *Snapshot) (string, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(s.dir, "snapshot-"+generateSnapshotID()+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// generateSnapshotID returns a random hex component for snapshot names.
func generateSnapshotID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate snapshot ID: " + err.Error())
	}
	return hex.EncodeToString(b)
}
