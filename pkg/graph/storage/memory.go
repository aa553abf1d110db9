package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/google/uuid"
)

// MemoryStore implements RelationshipStore with in-memory state, keyed by
// graph name. Used by tests and by tooling that runs without a database.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[string][]graph.Node
	rels  map[string][]graph.Relationship
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[string][]graph.Node),
		rels:  make(map[string][]graph.Relationship),
	}
}

// AddNode registers a schema entity in the named graph.
func (s *MemoryStore) AddNode(graphName string, node graph.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[graphName] = append(s.nodes[graphName], node)
}

// CreateRelationship implements RelationshipStore.
func (s *MemoryStore) CreateRelationship(ctx context.Context, graphName string, rel graph.Relationship) (*CreateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasNode(graphName, rel.SourceID) || !s.hasNode(graphName, rel.TargetID) {
		return &CreateResult{
			Success: false,
			Data:    map[string]interface{}{"error": fmt.Sprintf("source or target entity not found in graph %s", graphName)},
		}, nil
	}

	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	s.rels[graphName] = append(s.rels[graphName], rel)

	return &CreateResult{
		Success: true,
		Data:    map[string]interface{}{"id": rel.ID},
	}, nil
}

// ListRelationships implements RelationshipStore.
func (s *MemoryStore) ListRelationships(ctx context.Context, graphName string) ([]graph.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]graph.Relationship, len(s.rels[graphName]))
	copy(out, s.rels[graphName])
	return out, nil
}

// ListNodes implements NodeLister.
func (s *MemoryStore) ListNodes(ctx context.Context, graphName string) ([]graph.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]graph.Node, len(s.nodes[graphName]))
	copy(out, s.nodes[graphName])
	return out, nil
}

func (s *MemoryStore) hasNode(graphName, id string) bool {
	for _, n := range s.nodes[graphName] {
		if n.ID == id {
			return true
		}
	}
	return false
}
