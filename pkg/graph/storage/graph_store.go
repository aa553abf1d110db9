package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/athapong/schema-linker/pkg/graph"
)

// RelationshipSnapshot is a point-in-time export of the relationships known
// for one graph.
type RelationshipSnapshot struct {
	GraphName     string               `json:"graph_name"`
	Relationships []graph.Relationship `json:"relationships"`
	ExportedAt    time.Time            `json:"exported_at"`
}

// SnapshotStore defines an interface for persisting relationship snapshots.
type SnapshotStore interface {
	// StoreSnapshot persists a relationship snapshot
	StoreSnapshot(ctx context.Context, snap *RelationshipSnapshot) error

	// LoadSnapshot loads a relationship snapshot from storage
	LoadSnapshot(ctx context.Context) (*RelationshipSnapshot, error)
}

// JSONSnapshotStore implements SnapshotStore using JSON files.
type JSONSnapshotStore struct {
	filePath string
}

// NewJSONSnapshotStore creates a new JSON snapshot store.
func NewJSONSnapshotStore(filePath string) *JSONSnapshotStore {
	return &JSONSnapshotStore{
		filePath: filePath,
	}
}

// StoreSnapshot stores the snapshot as JSON.
func (s *JSONSnapshotStore) StoreSnapshot(ctx context.Context, snap *RelationshipSnapshot) error {
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0644)
}

// LoadSnapshot loads a snapshot from a JSON file.
func (s *JSONSnapshotStore) LoadSnapshot(ctx context.Context) (*RelationshipSnapshot, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return nil, err
	}

	var snap RelationshipSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	return &snap, nil
}
