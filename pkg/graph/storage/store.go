package storage

import (
	"context"

	"github.com/athapong/schema-linker/pkg/graph"
)

// CreateResult reports the outcome of a single relationship creation call.
// Failure may be signaled either through Success=false (with an optional
// server-provided detail under Data["error"]) or through a transport error.
type CreateResult struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// RelationshipStore is the store-facing contract the linker core depends on.
type RelationshipStore interface {
	// CreateRelationship persists one relationship record in the named graph.
	CreateRelationship(ctx context.Context, graphName string, rel graph.Relationship) (*CreateResult, error)

	// ListRelationships returns all relationships known for the named graph.
	ListRelationships(ctx context.Context, graphName string) ([]graph.Relationship, error)
}

// NodeLister is implemented by stores able to enumerate schema entities.
type NodeLister interface {
	ListNodes(ctx context.Context, graphName string) ([]graph.Node, error)
}
