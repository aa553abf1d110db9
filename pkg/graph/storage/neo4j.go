package storage

import (
	"context"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/neo4j/neo4j-go-driver/v4/neo4j"
	"github.com/pkg/errors"
)

// Neo4jStore implements RelationshipStore backed by a Neo4j database. Schema
// entities are stored as (:Entity) nodes and column-level relationships as
// [:RELATES] edges carrying the graph name as a property.
type Neo4jStore struct {
	driver  neo4j.Driver
	uri     string
	auth    neo4j.AuthToken
	session neo4j.Session
}

// NewNeo4jStore creates a new Neo4j store instance.
func NewNeo4jStore(uri, username, password string) (*Neo4jStore, error) {
	auth := neo4j.BasicAuth(username, password, "")
	driver, err := neo4j.NewDriver(uri, auth)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Neo4j driver")
	}

	return &Neo4jStore{
		driver: driver,
		uri:    uri,
		auth:   auth,
	}, nil
}

// Connect opens the session used by subsequent calls.
func (s *Neo4jStore) Connect(ctx context.Context) error {
	s.session = s.driver.NewSession(neo4j.SessionConfig{})
	return nil
}

// Close releases the session and driver.
func (s *Neo4jStore) Close() error {
	if s.session != nil {
		s.session.Close()
	}
	if s.driver != nil {
		return s.driver.Close()
	}
	return nil
}

// CreateRelationship implements RelationshipStore.
func (s *Neo4jStore) CreateRelationship(ctx context.Context, graphName string, rel graph.Relationship) (*CreateResult, error) {
	query := `
		MATCH (from:Entity {id: $sourceID})
		MATCH (to:Entity {id: $targetID})
		CREATE (from)-[r:RELATES {
			id: $id,
			graph: $graph,
			relationship_type: $type,
			source_column: $sourceColumn,
			target_column: $targetColumn,
			properties: $properties,
			created_at: datetime()
		}]->(to)
		RETURN r.id
	`

	params := map[string]interface{}{
		"id":           rel.ID,
		"graph":        graphName,
		"type":         rel.Type,
		"sourceID":     rel.SourceID,
		"targetID":     rel.TargetID,
		"sourceColumn": rel.SourceColumn,
		"targetColumn": rel.TargetColumn,
		"properties":   rel.Properties,
	}

	result, err := s.session.Run(query, params)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create relationship %s -> %s", rel.SourceID, rel.TargetID)
	}

	if !result.Next() {
		// MATCH found no endpoints, so nothing was created.
		return &CreateResult{
			Success: false,
			Data:    map[string]interface{}{"error": "source or target entity not found"},
		}, nil
	}

	return &CreateResult{
		Success: true,
		Data:    map[string]interface{}{"id": rel.ID},
	}, nil
}

// ListRelationships implements RelationshipStore.
func (s *Neo4jStore) ListRelationships(ctx context.Context, graphName string) ([]graph.Relationship, error) {
	query := `
		MATCH (from:Entity)-[r:RELATES {graph: $graph}]->(to:Entity)
		RETURN from.id, to.id, r
	`

	result, err := s.session.Run(query, map[string]interface{}{"graph": graphName})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list relationships")
	}

	rels := make([]graph.Relationship, 0)
	for result.Next() {
		record := result.Record()
		edge, ok := record.Values[2].(neo4j.Relationship)
		if !ok {
			continue
		}

		rel := graph.Relationship{
			SourceID: record.Values[0].(string),
			TargetID: record.Values[1].(string),
		}
		if id, ok := edge.Props["id"].(string); ok {
			rel.ID = id
		}
		if t, ok := edge.Props["relationship_type"].(string); ok {
			rel.Type = t
		}
		if c, ok := edge.Props["source_column"].(string); ok {
			rel.SourceColumn = c
		}
		if c, ok := edge.Props["target_column"].(string); ok {
			rel.TargetColumn = c
		}
		if props, ok := edge.Props["properties"].(map[string]interface{}); ok {
			rel.Properties = props
		}
		rels = append(rels, rel)
	}

	return rels, nil
}

// ListNodes implements NodeLister.
func (s *Neo4jStore) ListNodes(ctx context.Context, graphName string) ([]graph.Node, error) {
	query := `
		MATCH (e:Entity {graph: $graph})
		RETURN e
	`

	result, err := s.session.Run(query, map[string]interface{}{"graph": graphName})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list nodes")
	}

	nodes := make([]graph.Node, 0)
	for result.Next() {
		record := result.Record()
		nodeData, ok := record.Values[0].(neo4j.Node)
		if !ok {
			continue
		}

		node := graph.Node{Properties: nodeData.Props}
		if id, ok := nodeData.Props["id"].(string); ok {
			node.ID = id
		}
		if label, ok := nodeData.Props["label"].(string); ok {
			node.Label = label
		}
		if name, ok := nodeData.Props["name"].(string); ok {
			node.Name = name
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}
