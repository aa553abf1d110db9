package linker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/athapong/schema-linker/pkg/graph"
	"github.com/athapong/schema-linker/pkg/graph/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Validation errors raised before any store access. All of them are
// recoverable by editing the draft set or the selection.
var (
	ErrSourceRequired      = errors.New("source node is required")
	ErrTargetRequired      = errors.New("target node is required")
	ErrNoCompleteMapping   = errors.New("at least one complete mapping is required")
	ErrDuplicateColumnPair = errors.New("two mappings declare the same source and target column pair")
	ErrSelfReference       = errors.New("a column cannot be related to itself on the same entity")
	ErrSessionClosed       = errors.New("session is closed")
)

// DuplicateError is returned when the classifier finds an exact forward or
// reverse duplicate among the complete mappings.
type DuplicateError struct {
	Verdict Verdict
}

func (e *DuplicateError) Error() string { return e.Verdict.Message }

// Callbacks are the exposed hooks from the session core back to its caller.
type Callbacks struct {
	// OnCreateRelationship is invoked once per mapping in local mode with the
	// synthesized record.
	OnCreateRelationship func(rel graph.Relationship)

	// OnRefresh is invoked once after a fully successful server-backed batch,
	// before the session closes.
	OnRefresh func(ctx context.Context) error

	// OnClose is invoked when the session ends, on success or cancellation.
	OnClose func()
}

// Config describes one relationship editing session.
type Config struct {
	// GraphName is the target graph for server-backed creations.
	GraphName string

	// Store is the relationship store. A nil store puts the session in local
	// mode: records are synthesized client-side and handed to the
	// OnCreateRelationship callback instead of being persisted.
	Store storage.RelationshipStore

	// Nodes are the schema entities available as endpoints.
	Nodes []graph.Node

	// Existing is the snapshot of known relationships used for duplicate
	// detection. It is not re-fetched mid-session; the caller may push a
	// newer snapshot with SetExisting.
	Existing []graph.Relationship

	Callbacks Callbacks

	Logger *logrus.Logger
}

// Session owns the draft mapping state for one relationship editing dialog.
// All state is discarded when the session closes; nothing is shared across
// sessions.
type Session struct {
	mu sync.Mutex

	graphName string
	store     storage.RelationshipStore
	nodes     []graph.Node
	existing  []graph.Relationship
	callbacks Callbacks
	logger    *logrus.Logger

	source *graph.Node
	target *graph.Node
	drafts *DraftSet

	warning string
	closed  bool
}

// NewSession creates a session with a single blank draft mapping.
func NewSession(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Session{
		graphName: cfg.GraphName,
		store:     cfg.Store,
		nodes:     cfg.Nodes,
		existing:  cfg.Existing,
		callbacks: cfg.Callbacks,
		logger:    logger,
		drafts:    NewDraftSet(),
	}
}

// Nodes returns the schema entities available as endpoints.
func (s *Session) Nodes() []graph.Node {
	return s.nodes
}

// Source returns the selected source node, or nil.
func (s *Session) Source() *graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Target returns the selected target node, or nil.
func (s *Session) Target() *graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// SelectSource sets the source endpoint and resets the draft set.
func (s *Session) SelectSource(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.findNode(id)
	if node == nil {
		return fmt.Errorf("unknown node: %s", id)
	}
	s.source = node
	s.drafts.Reset()
	s.warning = ""
	return nil
}

// SelectTarget sets the target endpoint and resets the draft set.
func (s *Session) SelectTarget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node := s.findNode(id)
	if node == nil {
		return fmt.Errorf("unknown node: %s", id)
	}
	s.target = node
	s.drafts.Reset()
	s.warning = ""
	return nil
}

// SourceColumns returns the selectable columns of the source node.
func (s *Session) SourceColumns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.ColumnsOf(s.source)
}

// TargetColumns returns the selectable columns of the target node.
func (s *Session) TargetColumns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return graph.ColumnsOf(s.target)
}

// Drafts exposes the editable draft mapping set.
func (s *Session) Drafts() *DraftSet {
	return s.drafts
}

// SetExisting replaces the duplicate-detection snapshot.
func (s *Session) SetExisting(rels []graph.Relationship) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existing = rels
}

// Warning returns the retained type-conflict message from the last
// submission, if any.
func (s *Session) Warning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// Closed reports whether the session has ended.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// FirstIssue recomputes the live classification across all complete mappings
// and returns the message to surface, or nil. The first blocking duplicate
// takes precedence over any type-conflict warning.
func (s *Session) FirstIssue() *Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.source == nil || s.target == nil {
		return nil
	}

	var firstWarning *Verdict
	for _, m := range s.drafts.CompleteMappings() {
		v := Classify(m, s.source, s.target, s.existing)
		switch {
		case v.Classification.Blocking():
			return &v
		case v.Classification == ClassificationTypeConflict && firstWarning == nil:
			firstWarning = &v
		}
	}
	return firstWarning
}

// Submit validates the draft set and drives the creation batch. In server
// mode creations run strictly sequentially and the batch stops at the first
// failure; records already created are not rolled back. On full success the
// refresh callback fires, then the session closes. In local mode each record
// is synthesized client-side and handed to the creation callback, then the
// session closes. A type-conflict warning never blocks; the first one is
// retained for display via Warning.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	warning, err := s.validate()
	if err != nil {
		submissionsTotal.WithLabelValues("rejected").Inc()
		return err
	}
	if warning != nil {
		s.warning = warning.Message
		s.logger.WithField("message", warning.Message).Warn("submitting despite type conflict")
	}

	complete := s.drafts.CompleteMappings()

	if s.store == nil {
		for _, m := range complete {
			rel := s.buildRecord(m, "local")
			rel.ID = uuid.New().String()
			if s.callbacks.OnCreateRelationship != nil {
				s.callbacks.OnCreateRelationship(rel)
			}
			relationshipsCreatedTotal.WithLabelValues("local").Inc()
		}
		submissionsTotal.WithLabelValues("ok").Inc()
		s.close()
		return nil
	}

	created := 0
	for _, m := range complete {
		rel := s.buildRecord(m, "manual")
		rel.ID = uuid.New().String()

		result, err := s.store.CreateRelationship(ctx, s.graphName, rel)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"created": created,
				"total":   len(complete),
				"error":   err.Error(),
			}).Error("relationship batch aborted")
			submissionsTotal.WithLabelValues("remote_error").Inc()
			// Records created by earlier calls in this batch stay persisted.
			return fmt.Errorf("failed to create relationship %s -> %s: %v", m.SourceColumn, m.TargetColumn, err)
		}
		if result != nil && !result.Success {
			submissionsTotal.WithLabelValues("remote_error").Inc()
			if detail, ok := result.Data["error"].(string); ok && detail != "" {
				return fmt.Errorf("failed to create relationship %s -> %s: %s", m.SourceColumn, m.TargetColumn, detail)
			}
			return fmt.Errorf("failed to create relationship %s -> %s", m.SourceColumn, m.TargetColumn)
		}

		created++
		relationshipsCreatedTotal.WithLabelValues("server").Inc()
	}

	if s.callbacks.OnRefresh != nil {
		if err := s.callbacks.OnRefresh(ctx); err != nil {
			s.logger.WithField("error", err.Error()).Warn("refresh after submission failed")
		}
	}

	submissionsTotal.WithLabelValues("ok").Inc()
	s.close()
	return nil
}

// Cancel discards all draft state and closes the session.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.close()
}

// validate runs the submission pipeline, short-circuiting on the first
// blocking problem. The returned verdict is the first type-conflict warning,
// which does not block.
func (s *Session) validate() (*Verdict, error) {
	if s.source == nil {
		return nil, ErrSourceRequired
	}
	if s.target == nil {
		return nil, ErrTargetRequired
	}

	complete := s.drafts.CompleteMappings()
	if len(complete) == 0 {
		return nil, ErrNoCompleteMapping
	}
	if s.drafts.HasInternalDuplicates() {
		return nil, ErrDuplicateColumnPair
	}
	if s.source.ID == s.target.ID {
		for _, m := range complete {
			if m.SourceColumn == m.TargetColumn {
				return nil, ErrSelfReference
			}
		}
	}

	var firstWarning *Verdict
	for _, m := range complete {
		v := Classify(m, s.source, s.target, s.existing)
		switch {
		case v.Classification.Blocking():
			return nil, &DuplicateError{Verdict: v}
		case v.Classification == ClassificationTypeConflict && firstWarning == nil:
			firstWarning = &v
		}
	}

	for _, m := range complete {
		if m.Confidence < 0 || m.Confidence > 1 {
			return nil, fmt.Errorf("confidence %v out of range [0,1] for mapping %s -> %s",
				m.Confidence, m.SourceColumn, m.TargetColumn)
		}
	}

	return firstWarning, nil
}

// buildRecord assembles the canonical relationship record for one mapping.
func (s *Session) buildRecord(m *DraftMapping, provenance string) graph.Relationship {
	props := map[string]interface{}{
		"confidence":    m.Confidence,
		"bidirectional": m.Bidirectional,
		"source":        provenance,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
		"source_label":  graph.DisplayName(s.source),
		"target_label":  graph.DisplayName(s.target),
	}
	if m.Comment != "" {
		props["comment"] = m.Comment
	}

	return graph.Relationship{
		SourceID:     s.source.ID,
		TargetID:     s.target.ID,
		Type:         graph.CanonicalType(m.RelationshipType),
		SourceColumn: m.SourceColumn,
		TargetColumn: m.TargetColumn,
		Properties:   props,
	}
}

func (s *Session) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.drafts.Reset()
	if s.callbacks.OnClose != nil {
		s.callbacks.OnClose()
	}
}

func (s *Session) findNode(id string) *graph.Node {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return &s.nodes[i]
		}
	}
	return nil
}
