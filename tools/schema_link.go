package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/athapong/schema-linker/pkg/graph/storage"
	"github.com/athapong/schema-linker/pkg/linker"
	"github.com/athapong/schema-linker/util"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// neo4jStore connects lazily from NEO4J_URI / NEO4J_USERNAME / NEO4J_PASSWORD.
// When NEO4J_URI is unset the linker runs in local mode and synthesized
// records are returned to the client instead of being persisted.
var neo4jStore = sync.OnceValue(func() *storage.Neo4jStore {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		return nil
	}

	store, err := storage.NewNeo4jStore(uri, os.Getenv("NEO4J_USERNAME"), os.Getenv("NEO4J_PASSWORD"))
	if err != nil {
		panic(fmt.Sprintf("failed to create Neo4j store: %v", err))
	}
	if err := store.Connect(context.Background()); err != nil {
		panic(fmt.Sprintf("failed to connect to Neo4j: %v", err))
	}
	return store
})

type linkSessionServer struct {
	mu        sync.Mutex
	session   *linker.Session
	graphName string
	created   []graph.Relationship
	logger    *logrus.Logger
}

func newLinkSessionServer() *linkSessionServer {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	graphName := os.Getenv("KG_GRAPH_NAME")
	if graphName == "" {
		graphName = "default"
	}

	return &linkSessionServer{
		graphName: graphName,
		logger:    logger,
	}
}

// Package-level server instance shared by the registered tools; one dialog
// session is active at a time.
var linkServer *linkSessionServer

func RegisterSchemaLinkTools(s *server.MCPServer) {
	linkServer = newLinkSessionServer()

	openTool := mcp.NewTool("link_session_open",
		mcp.WithDescription("Open a relationship editing session between two schema entities. Discards any previous session."),
		mcp.WithString("source_id", mcp.Description("Node id to preselect as the relationship source")),
		mcp.WithString("target_id", mcp.Description("Node id to preselect as the relationship target")),
	)

	nodesTool := mcp.NewTool("link_nodes_list",
		mcp.WithDescription("List the schema entities available as relationship endpoints"),
	)

	addTool := mcp.NewTool("link_mapping_add",
		mcp.WithDescription("Add a blank column mapping row to the current session"),
	)

	updateTool := mcp.NewTool("link_mapping_update",
		mcp.WithDescription("Update one field of a draft mapping. Fields: sourceColumn, targetColumn, relationshipType, confidence, bidirectional, comment"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft mapping id")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name to update")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value; numbers and booleans in their string form")),
	)

	removeTool := mcp.NewTool("link_mapping_remove",
		mcp.WithDescription("Remove a draft mapping row; the last remaining row cannot be removed"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Draft mapping id")),
	)

	statusTool := mcp.NewTool("link_session_status",
		mcp.WithDescription("Show the current session state including live duplicate classification"),
	)

	submitTool := mcp.NewTool("link_session_submit",
		mcp.WithDescription("Validate the draft mappings and create the relationships"),
	)

	cancelTool := mcp.NewTool("link_session_cancel",
		mcp.WithDescription("Discard the draft mappings and close the session"),
	)

	s.AddTool(openTool, util.ErrorGuard(linkServer.openHandler))
	s.AddTool(nodesTool, util.ErrorGuard(linkServer.nodesHandler))
	s.AddTool(addTool, util.ErrorGuard(linkServer.addHandler))
	s.AddTool(updateTool, util.ErrorGuard(linkServer.updateHandler))
	s.AddTool(removeTool, util.ErrorGuard(linkServer.removeHandler))
	s.AddTool(statusTool, util.ErrorGuard(linkServer.statusHandler))
	s.AddTool(submitTool, util.ErrorGuard(linkServer.submitHandler))
	s.AddTool(cancelTool, util.ErrorGuard(linkServer.cancelHandler))
}

func (ls *linkSessionServer) openHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	nodes, existing, err := ls.loadGraphState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var store storage.RelationshipStore
	if s := neo4jStore(); s != nil {
		store = s
	}

	ls.created = nil
	ls.session = linker.NewSession(linker.Config{
		GraphName: ls.graphName,
		Store:     store,
		Nodes:     nodes,
		Existing:  existing,
		Logger:    ls.logger,
		Callbacks: linker.Callbacks{
			OnCreateRelationship: func(rel graph.Relationship) {
				// Runs on the submitting goroutine while ls.mu is held.
				ls.created = append(ls.created, rel)
			},
			OnRefresh: func(ctx context.Context) error {
				if store == nil {
					return nil
				}
				_, err := store.ListRelationships(ctx, ls.graphName)
				return err
			},
		},
	})

	if sourceID, ok := arguments["source_id"].(string); ok && sourceID != "" {
		if err := ls.session.SelectSource(sourceID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if targetID, ok := arguments["target_id"].(string); ok && targetID != "" {
		if err := ls.session.SelectTarget(targetID); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	return ls.statusResult()
}

func (ls *linkSessionServer) nodesHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	nodes, _, err := ls.loadGraphState()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := json.MarshalIndent(nodes, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (ls *linkSessionServer) addHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session; call link_session_open first"), nil
	}
	ls.session.Drafts().Add()
	return ls.statusResult()
}

func (ls *linkSessionServer) updateHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session; call link_session_open first"), nil
	}

	id, ok := arguments["id"].(string)
	if !ok {
		return mcp.NewToolResultError("id must be a string"), nil
	}
	fieldName, ok := arguments["field"].(string)
	if !ok {
		return mcp.NewToolResultError("field must be a string"), nil
	}
	raw, ok := arguments["value"].(string)
	if !ok {
		return mcp.NewToolResultError("value must be a string"), nil
	}

	field, err := linker.ParseField(fieldName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	value, err := coerceFieldValue(field, raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := ls.session.Drafts().Update(id, field, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return ls.statusResult()
}

func (ls *linkSessionServer) removeHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session; call link_session_open first"), nil
	}

	id, ok := arguments["id"].(string)
	if !ok {
		return mcp.NewToolResultError("id must be a string"), nil
	}
	if err := ls.session.Drafts().Remove(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return ls.statusResult()
}

func (ls *linkSessionServer) statusHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session; call link_session_open first"), nil
	}
	return ls.statusResult()
}

func (ls *linkSessionServer) submitHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session; call link_session_open first"), nil
	}

	if err := ls.session.Submit(context.Background()); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := map[string]interface{}{
		"submitted": true,
		"created":   ls.created,
	}
	if w := ls.session.Warning(); w != "" {
		response["warning"] = w
	}
	ls.session = nil

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (ls *linkSessionServer) cancelHandler(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return mcp.NewToolResultError("no active session"), nil
	}
	ls.session.Cancel()
	ls.session = nil
	ls.created = nil
	return mcp.NewToolResultText("session cancelled"), nil
}

// statusResult renders the current session state; callers must hold ls.mu.
func (ls *linkSessionServer) statusResult() (*mcp.CallToolResult, error) {
	drafts := ls.session.Drafts()
	response := map[string]interface{}{
		"graph":                 ls.graphName,
		"mappings":              drafts.Mappings(),
		"completeCount":         drafts.CompleteCount(),
		"hasInternalDuplicates": drafts.HasInternalDuplicates(),
	}

	if src := ls.session.Source(); src != nil {
		response["source"] = map[string]interface{}{
			"id":      src.ID,
			"label":   graph.DisplayName(src),
			"columns": ls.session.SourceColumns(),
		}
	}
	if tgt := ls.session.Target(); tgt != nil {
		response["target"] = map[string]interface{}{
			"id":      tgt.ID,
			"label":   graph.DisplayName(tgt),
			"columns": ls.session.TargetColumns(),
		}
	}
	if issue := ls.session.FirstIssue(); issue != nil {
		response["issue"] = map[string]interface{}{
			"classification": issue.Classification.String(),
			"blocking":       issue.Classification.Blocking(),
			"message":        issue.Message,
		}
	}

	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// loadGraphState fetches the available nodes and the existing-relationship
// snapshot, either from Neo4j or from the SCHEMA_NODES_FILE document.
func (ls *linkSessionServer) loadGraphState() ([]graph.Node, []graph.Relationship, error) {
	if store := neo4jStore(); store != nil {
		ctx := context.Background()
		nodes, err := store.ListNodes(ctx, ls.graphName)
		if err != nil {
			return nil, nil, err
		}
		existing, err := store.ListRelationships(ctx, ls.graphName)
		if err != nil {
			return nil, nil, err
		}
		return nodes, existing, nil
	}

	path := os.Getenv("SCHEMA_NODES_FILE")
	if path == "" {
		return nil, nil, fmt.Errorf("neither NEO4J_URI nor SCHEMA_NODES_FILE is set")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %v", path, err)
	}
	return ParseGraphDocument(data)
}

// ParseGraphDocument extracts nodes and relationships from a loosely-typed
// JSON document with top-level "nodes" and "relationships" arrays.
func ParseGraphDocument(data []byte) ([]graph.Node, []graph.Relationship, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("invalid JSON document")
	}

	var nodes []graph.Node
	gjson.GetBytes(data, "nodes").ForEach(func(_, value gjson.Result) bool {
		node := graph.Node{
			ID:    value.Get("id").String(),
			Label: value.Get("label").String(),
			Name:  value.Get("name").String(),
		}
		if props, ok := value.Get("properties").Value().(map[string]interface{}); ok {
			node.Properties = props
		}
		nodes = append(nodes, node)
		return true
	})

	var rels []graph.Relationship
	gjson.GetBytes(data, "relationships").ForEach(func(_, value gjson.Result) bool {
		rel := graph.Relationship{
			ID:           value.Get("id").String(),
			SourceID:     value.Get("source_id").String(),
			TargetID:     value.Get("target_id").String(),
			Type:         value.Get("relationship_type").String(),
			SourceColumn: value.Get("source_column").String(),
			TargetColumn: value.Get("target_column").String(),
		}
		if props, ok := value.Get("properties").Value().(map[string]interface{}); ok {
			rel.Properties = props
		}
		rels = append(rels, rel)
		return true
	})

	return nodes, rels, nil
}

func coerceFieldValue(field linker.Field, raw string) (interface{}, error) {
	switch field {
	case linker.FieldConfidence:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("confidence must be a number: %s", raw)
		}
		return v, nil
	case linker.FieldBidirectional:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("bidirectional must be true or false: %s", raw)
		}
		return v, nil
	default:
		return raw, nil
	}
}
