package graph

// ColumnsOf extracts the ordered column names from a node's metadata. Entries
// under properties.columns may be plain names or structured descriptors with a
// "name" field; both forms are tolerated, order is preserved and nothing is
// de-duplicated. A nil node or a node without columns yields nil.
func ColumnsOf(n *Node) []string {
	if n == nil {
		return nil
	}
	raw, ok := n.Properties["columns"]
	if !ok {
		return nil
	}

	switch cols := raw.(type) {
	case []string:
		out := make([]string, len(cols))
		copy(out, cols)
		return out
	case []interface{}:
		out := make([]string, 0, len(cols))
		for _, entry := range cols {
			switch v := entry.(type) {
			case string:
				out = append(out, v)
			case map[string]interface{}:
				if name, ok := v["name"].(string); ok {
					out = append(out, name)
				}
			}
		}
		return out
	default:
		return nil
	}
}
