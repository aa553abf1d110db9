package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnsOfNilNode(t *testing.T) {
	assert.Nil(t, ColumnsOf(nil))
}

func TestColumnsOfNoColumns(t *testing.T) {
	assert.Nil(t, ColumnsOf(&Node{ID: "n1", Label: "orders"}))
	assert.Nil(t, ColumnsOf(&Node{
		ID:         "n1",
		Label:      "orders",
		Properties: map[string]interface{}{"columns": 42},
	}))
}

func TestColumnsOfPlainNames(t *testing.T) {
	n := &Node{
		ID:    "n1",
		Label: "orders",
		Properties: map[string]interface{}{
			"columns": []interface{}{"order_id", "cust_id", "total"},
		},
	}
	assert.Equal(t, []string{"order_id", "cust_id", "total"}, ColumnsOf(n))
}

func TestColumnsOfDescriptors(t *testing.T) {
	n := &Node{
		ID:    "n1",
		Label: "orders",
		Properties: map[string]interface{}{
			"columns": []interface{}{
				map[string]interface{}{"name": "order_id", "type": "int"},
				map[string]interface{}{"name": "cust_id", "type": "int"},
			},
		},
	}
	assert.Equal(t, []string{"order_id", "cust_id"}, ColumnsOf(n))
}

func TestColumnsOfMixedEntries(t *testing.T) {
	n := &Node{
		ID:    "n1",
		Label: "orders",
		Properties: map[string]interface{}{
			"columns": []interface{}{
				"order_id",
				map[string]interface{}{"name": "cust_id"},
				map[string]interface{}{"type": "int"}, // no name, skipped
				7,                                     // not a column, skipped
			},
		},
	}
	assert.Equal(t, []string{"order_id", "cust_id"}, ColumnsOf(n))
}

func TestColumnsOfStringSlice(t *testing.T) {
	n := &Node{
		ID:    "n1",
		Label: "orders",
		Properties: map[string]interface{}{
			"columns": []string{"b", "a", "b"},
		},
	}
	// Order preserved, no de-duplication.
	assert.Equal(t, []string{"b", "a", "b"}, ColumnsOf(n))
}
