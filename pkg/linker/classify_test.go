package linker

import (
	"testing"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ordersNode = &graph.Node{
		ID:    "orders",
		Label: "orders",
		Properties: map[string]interface{}{
			"columns": []interface{}{"order_id", "cust_id"},
		},
	}
	customersNode = &graph.Node{
		ID:    "customers",
		Label: "customers",
		Properties: map[string]interface{}{
			"columns": []interface{}{"cust_id", "name"},
		},
	}
)

func custMapping(relType string) *DraftMapping {
	return &DraftMapping{
		ID:               "d1",
		SourceColumn:     "cust_id",
		TargetColumn:     "cust_id",
		RelationshipType: relType,
		Confidence:       0.9,
		Bidirectional:    true,
	}
}

func TestClassifyNone(t *testing.T) {
	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, nil)
	assert.Equal(t, ClassificationNone, v.Classification)
	assert.Nil(t, v.Matched)
	assert.Empty(t, v.Message)

	existing := []graph.Relationship{
		{SourceID: "orders", TargetID: "customers", Type: "MATCHES", SourceColumn: "order_id", TargetColumn: "cust_id"},
	}
	v = Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationNone, v.Classification)
}

func TestClassifyExactForward(t *testing.T) {
	existing := []graph.Relationship{
		{SourceID: "orders", TargetID: "customers", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	require.Equal(t, ClassificationExactForward, v.Classification)
	assert.True(t, v.Classification.Blocking())
	require.NotNil(t, v.Matched)
	assert.Contains(t, v.Message, "orders")
	assert.Contains(t, v.Message, "customers")
	assert.Contains(t, v.Message, "cust_id")
}

func TestClassifyForwardMatchesCanonicalized(t *testing.T) {
	existing := []graph.Relationship{
		{SourceID: "orders", TargetID: "customers", Type: "FOREIGN_KEY", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	// Free-text candidate type canonicalizes to the stored form.
	v := Classify(custMapping("  foreign key "), ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationExactForward, v.Classification)
}

func TestClassifyExactReverse(t *testing.T) {
	existing := []graph.Relationship{
		{SourceID: "customers", TargetID: "orders", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	require.Equal(t, ClassificationExactReverse, v.Classification)
	assert.True(t, v.Classification.Blocking())
	assert.Contains(t, v.Message, "redundant")
}

func TestClassifyReverseTransposesColumns(t *testing.T) {
	m := &DraftMapping{
		ID:               "d1",
		SourceColumn:     "cust_id",
		TargetColumn:     "customer_id",
		RelationshipType: "REFERENCES",
	}

	// Transposed endpoints AND transposed columns.
	existing := []graph.Relationship{
		{SourceID: "customers", TargetID: "orders", Type: "REFERENCES", SourceColumn: "customer_id", TargetColumn: "cust_id"},
	}
	v := Classify(m, ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationExactReverse, v.Classification)

	// Transposed endpoints but same column orientation: no reverse match.
	existing = []graph.Relationship{
		{SourceID: "customers", TargetID: "orders", Type: "REFERENCES", SourceColumn: "cust_id", TargetColumn: "customer_id"},
	}
	v = Classify(m, ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationNone, v.Classification)
}

func TestClassifyTypeConflict(t *testing.T) {
	existing := []graph.Relationship{
		{SourceID: "orders", TargetID: "customers", Type: "REFERENCES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	require.Equal(t, ClassificationTypeConflict, v.Classification)
	assert.False(t, v.Classification.Blocking())
	assert.Contains(t, v.Message, "REFERENCES")
	assert.Contains(t, v.Message, "MATCHES")
}

func TestClassifyPriorityForwardBeatsReverse(t *testing.T) {
	// Both a reverse and a forward duplicate exist; the forward tier is
	// evaluated first even though the reverse entry comes first in the list.
	existing := []graph.Relationship{
		{SourceID: "customers", TargetID: "orders", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
		{SourceID: "orders", TargetID: "customers", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationExactForward, v.Classification)
}

func TestClassifyPriorityReverseBeatsConflict(t *testing.T) {
	existing := []graph.Relationship{
		{SourceID: "orders", TargetID: "customers", Type: "REFERENCES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
		{SourceID: "customers", TargetID: "orders", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	assert.Equal(t, ClassificationExactReverse, v.Classification)
}

func TestClassifyFirstMatchInScanOrderWins(t *testing.T) {
	existing := []graph.Relationship{
		{ID: "r1", SourceID: "orders", TargetID: "customers", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
		{ID: "r2", SourceID: "orders", TargetID: "customers", Type: "MATCHES", SourceColumn: "cust_id", TargetColumn: "cust_id"},
	}

	v := Classify(custMapping("MATCHES"), ordersNode, customersNode, existing)
	require.NotNil(t, v.Matched)
	assert.Equal(t, "r1", v.Matched.ID)
}
