package tools

import (
	"testing"

	"github.com/athapong/schema-linker/pkg/linker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGraphDocument(t *testing.T) {
	doc := []byte(`{
		"nodes": [
			{"id": "orders", "label": "orders", "properties": {"columns": ["order_id", "cust_id"]}},
			{"id": "customers", "label": "customers", "name": "Customers"}
		],
		"relationships": [
			{"source_id": "orders", "target_id": "customers", "relationship_type": "MATCHES",
			 "source_column": "cust_id", "target_column": "cust_id",
			 "properties": {"confidence": 0.9}}
		]
	}`)

	nodes, rels, err := ParseGraphDocument(doc)
	require.NoError(t, err)

	require.Len(t, nodes, 2)
	assert.Equal(t, "orders", nodes[0].ID)
	assert.Equal(t, []interface{}{"order_id", "cust_id"}, nodes[0].Properties["columns"])
	assert.Equal(t, "Customers", nodes[1].Name)

	require.Len(t, rels, 1)
	assert.Equal(t, "MATCHES", rels[0].Type)
	assert.Equal(t, 0.9, rels[0].Properties["confidence"])
}

func TestParseGraphDocumentInvalid(t *testing.T) {
	_, _, err := ParseGraphDocument([]byte("{not json"))
	assert.Error(t, err)
}

func TestParseGraphDocumentEmpty(t *testing.T) {
	nodes, rels, err := ParseGraphDocument([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, rels)
}

func TestCoerceFieldValue(t *testing.T) {
	v, err := coerceFieldValue(linker.FieldConfidence, "0.75")
	require.NoError(t, err)
	assert.Equal(t, 0.75, v)

	_, err = coerceFieldValue(linker.FieldConfidence, "high")
	assert.Error(t, err)

	v, err = coerceFieldValue(linker.FieldBidirectional, "false")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = coerceFieldValue(linker.FieldBidirectional, "maybe")
	assert.Error(t, err)

	v, err = coerceFieldValue(linker.FieldSourceColumn, "cust_id")
	require.NoError(t, err)
	assert.Equal(t, "cust_id", v)
}
