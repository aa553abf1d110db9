package graph

import "strings"

// Node represents a schema entity (typically a table) available as a
// relationship endpoint in the knowledge graph.
type Node struct {
	ID         string                 `json:"id"`
	Label      string                 `json:"label"`
	Name       string                 `json:"name,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Relationship represents a column-level edge between two schema entities.
// Type is stored in canonical form (see CanonicalType).
type Relationship struct {
	ID           string                 `json:"id,omitempty"`
	SourceID     string                 `json:"source_id"`
	TargetID     string                 `json:"target_id"`
	Type         string                 `json:"relationship_type"`
	SourceColumn string                 `json:"source_column"`
	TargetColumn string                 `json:"target_column"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// CanonicalType normalizes a relationship type: leading/trailing whitespace
// trimmed, internal whitespace runs collapsed to a single underscore, and the
// result upper-cased. Idempotent.
func CanonicalType(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), "_"))
}

// DisplayName returns the preferred display alias for a node: the explicit
// name if set, then properties.primary_alias, then the label.
func DisplayName(n *Node) string {
	if n == nil {
		return ""
	}
	if n.Name != "" {
		return n.Name
	}
	if alias, ok := n.Properties["primary_alias"].(string); ok && alias != "" {
		return alias
	}
	return n.Label
}
