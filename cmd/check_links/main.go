package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/athapong/schema-linker/pkg/graph/storage"
	"github.com/athapong/schema-linker/pkg/linker"
	"github.com/athapong/schema-linker/tools"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

var (
	inputFile  = flag.String("input", "", "JSON document with nodes, relationships and candidate mappings")
	graphName  = flag.String("graph", "default", "Graph name recorded in the output snapshot")
	outputFile = flag.String("output", "", "Optional snapshot file for candidates that passed the duplicate check")
	logLevel   = flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if *inputFile == "" {
		logger.Fatal("Input file must be specified")
	}

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		logger.Fatalf("Failed to read input file: %v", err)
	}

	nodes, existing, err := tools.ParseGraphDocument(data)
	if err != nil {
		logger.Fatalf("Failed to parse input document: %v", err)
	}

	nodesByID := make(map[string]*graph.Node, len(nodes))
	for i := range nodes {
		nodesByID[nodes[i].ID] = &nodes[i]
	}

	logger.Infof("Loaded %d nodes and %d existing relationships", len(nodes), len(existing))

	accepted := make([]graph.Relationship, 0)
	blocking := 0
	candidates := gjson.GetBytes(data, "candidates")

	candidates.ForEach(func(_, value gjson.Result) bool {
		mapping := &linker.DraftMapping{
			ID:               uuid.New().String(),
			SourceColumn:     value.Get("source_column").String(),
			TargetColumn:     value.Get("target_column").String(),
			RelationshipType: value.Get("relationship_type").String(),
			Confidence:       linker.DefaultConfidence,
			Bidirectional:    linker.DefaultBidirectional,
			Comment:          value.Get("comment").String(),
		}
		if c := value.Get("confidence"); c.Exists() {
			mapping.Confidence = c.Float()
		}
		if b := value.Get("bidirectional"); b.Exists() {
			mapping.Bidirectional = b.Bool()
		}

		sourceID := value.Get("source_id").String()
		targetID := value.Get("target_id").String()

		if !mapping.Complete() {
			logger.Warnf("Skipping incomplete candidate %s -> %s", sourceID, targetID)
			return true
		}

		source := nodeOrPlaceholder(nodesByID, sourceID)
		target := nodeOrPlaceholder(nodesByID, targetID)

		verdict := linker.Classify(mapping, source, target, existing)
		switch {
		case verdict.Classification.Blocking():
			blocking++
			logger.Errorf("Blocked: %s", verdict.Message)
		case verdict.Classification == linker.ClassificationTypeConflict:
			logger.Warnf("Type conflict: %s", verdict.Message)
			accepted = append(accepted, buildRecord(mapping, source, target))
		default:
			logger.Debugf("Candidate %s -> %s on %s -> %s is new",
				sourceID, targetID, mapping.SourceColumn, mapping.TargetColumn)
			accepted = append(accepted, buildRecord(mapping, source, target))
		}
		return true
	})

	logger.Infof("Checked %d candidates: %d accepted, %d blocked",
		int(candidates.Get("#").Int()), len(accepted), blocking)

	if *outputFile != "" {
		snapshotStore := storage.NewJSONSnapshotStore(*outputFile)
		snap := &storage.RelationshipSnapshot{
			GraphName:     *graphName,
			Relationships: accepted,
			ExportedAt:    time.Now().UTC(),
		}
		if err := snapshotStore.StoreSnapshot(context.Background(), snap); err != nil {
			logger.Fatalf("Failed to write snapshot: %v", err)
		}
		logger.Infof("Wrote %d accepted records to %s", len(accepted), *outputFile)
	}

	if blocking > 0 {
		os.Exit(1)
	}
}

func nodeOrPlaceholder(nodesByID map[string]*graph.Node, id string) *graph.Node {
	if n, ok := nodesByID[id]; ok {
		return n
	}
	return &graph.Node{ID: id, Label: id}
}

func buildRecord(m *linker.DraftMapping, source, target *graph.Node) graph.Relationship {
	return graph.Relationship{
		ID:           uuid.New().String(),
		SourceID:     source.ID,
		TargetID:     target.ID,
		Type:         graph.CanonicalType(m.RelationshipType),
		SourceColumn: m.SourceColumn,
		TargetColumn: m.TargetColumn,
		Properties: map[string]interface{}{
			"confidence":    m.Confidence,
			"bidirectional": m.Bidirectional,
			"source":        "manual",
			"created_at":    time.Now().UTC().Format(time.RFC3339),
			"source_label":  graph.DisplayName(source),
			"target_label":  graph.DisplayName(target),
		},
	}
}
