package storage

import (
	"context"
	"testing"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndList(t *testing.T) {
	store := NewMemoryStore()
	store.AddNode("kg", graph.Node{ID: "orders", Label: "orders"})
	store.AddNode("kg", graph.Node{ID: "customers", Label: "customers"})

	ctx := context.Background()
	result, err := store.CreateRelationship(ctx, "kg", graph.Relationship{
		SourceID:     "orders",
		TargetID:     "customers",
		Type:         "MATCHES",
		SourceColumn: "cust_id",
		TargetColumn: "cust_id",
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.NotEmpty(t, result.Data["id"])

	rels, err := store.ListRelationships(ctx, "kg")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	assert.Equal(t, "MATCHES", rels[0].Type)
	assert.NotEmpty(t, rels[0].ID)

	// Other graphs stay isolated.
	rels, err = store.ListRelationships(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestMemoryStoreMissingEndpoint(t *testing.T) {
	store := NewMemoryStore()
	store.AddNode("kg", graph.Node{ID: "orders", Label: "orders"})

	result, err := store.CreateRelationship(context.Background(), "kg", graph.Relationship{
		SourceID: "orders",
		TargetID: "nope",
		Type:     "MATCHES",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Data["error"], "not found")
}

func TestMemoryStoreListNodes(t *testing.T) {
	store := NewMemoryStore()
	store.AddNode("kg", graph.Node{ID: "orders", Label: "orders"})
	store.AddNode("kg", graph.Node{ID: "customers", Label: "customers"})

	nodes, err := store.ListNodes(context.Background(), "kg")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "orders", nodes[0].ID)
}
