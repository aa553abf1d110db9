package linker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Defaults applied to every freshly added draft mapping.
const (
	DefaultConfidence    = 0.8
	DefaultBidirectional = true
)

// ErrLastMapping is returned when removal would leave the draft set empty.
var ErrLastMapping = errors.New("cannot remove the last remaining mapping")

// DraftMapping is one candidate column-to-column relationship being edited
// before submission. RelationshipType is free text here; it is canonicalized
// only at validation and submission time.
type DraftMapping struct {
	ID               string  `json:"id"`
	SourceColumn     string  `json:"sourceColumn"`
	TargetColumn     string  `json:"targetColumn"`
	RelationshipType string  `json:"relationshipType"`
	Confidence       float64 `json:"confidence"`
	Bidirectional    bool    `json:"bidirectional"`
	Comment          string  `json:"comment,omitempty"`
}

// Complete reports whether the mapping has both columns and a non-blank type.
func (m *DraftMapping) Complete() bool {
	return m.SourceColumn != "" && m.TargetColumn != "" && strings.TrimSpace(m.RelationshipType) != ""
}

// Field identifies one editable field of a draft mapping.
type Field int

const (
	FieldSourceColumn Field = iota
	FieldTargetColumn
	FieldRelationshipType
	FieldConfidence
	FieldBidirectional
	FieldComment
)

var fieldNames = map[string]Field{
	"sourceColumn":     FieldSourceColumn,
	"targetColumn":     FieldTargetColumn,
	"relationshipType": FieldRelationshipType,
	"confidence":       FieldConfidence,
	"bidirectional":    FieldBidirectional,
	"comment":          FieldComment,
}

// ParseField maps a field name to its Field value.
func ParseField(name string) (Field, error) {
	f, ok := fieldNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown mapping field: %s", name)
	}
	return f, nil
}

func (f Field) String() string {
	for name, v := range fieldNames {
		if v == f {
			return name
		}
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// DraftSet is the ordered, editable collection of candidate mappings for one
// dialog session. It always holds at least one entry.
type DraftSet struct {
	mappings []*DraftMapping
}

// NewDraftSet creates a draft set seeded with a single blank mapping.
func NewDraftSet() *DraftSet {
	s := &DraftSet{}
	s.Reset()
	return s
}

func newBlankMapping() *DraftMapping {
	// Random UUIDs keep rows added within the same clock tick distinct.
	return &DraftMapping{
		ID:            uuid.New().String(),
		Confidence:    DefaultConfidence,
		Bidirectional: DefaultBidirectional,
	}
}

// Add appends a blank mapping and returns it.
func (s *DraftSet) Add() *DraftMapping {
	m := newBlankMapping()
	s.mappings = append(s.mappings, m)
	return m
}

// Remove deletes the mapping with the given id. Removing the last remaining
// mapping is rejected with ErrLastMapping.
func (s *DraftSet) Remove(id string) error {
	for i, m := range s.mappings {
		if m.ID == id {
			if len(s.mappings) == 1 {
				return ErrLastMapping
			}
			s.mappings = append(s.mappings[:i], s.mappings[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no mapping with id %s", id)
}

// Update replaces a single field of the mapping with the given id. The value
// must match the field's type: string for columns, type and comment, float64
// for confidence, bool for bidirectional.
func (s *DraftSet) Update(id string, field Field, value interface{}) error {
	m := s.Get(id)
	if m == nil {
		return fmt.Errorf("no mapping with id %s", id)
	}

	switch field {
	case FieldSourceColumn, FieldTargetColumn, FieldRelationshipType, FieldComment:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %s requires a string value", field)
		}
		switch field {
		case FieldSourceColumn:
			m.SourceColumn = v
		case FieldTargetColumn:
			m.TargetColumn = v
		case FieldRelationshipType:
			m.RelationshipType = v
		case FieldComment:
			m.Comment = v
		}
	case FieldConfidence:
		v, ok := value.(float64)
		if !ok {
			return fmt.Errorf("field %s requires a number value", field)
		}
		m.Confidence = v
	case FieldBidirectional:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("field %s requires a boolean value", field)
		}
		m.Bidirectional = v
	default:
		return fmt.Errorf("unknown field %d", int(field))
	}
	return nil
}

// Reset replaces the set with exactly one blank mapping.
func (s *DraftSet) Reset() {
	s.mappings = []*DraftMapping{newBlankMapping()}
}

// Get returns the mapping with the given id, or nil.
func (s *DraftSet) Get(id string) *DraftMapping {
	for _, m := range s.mappings {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Mappings returns the mappings in insertion order.
func (s *DraftSet) Mappings() []*DraftMapping {
	return s.mappings
}

// CompleteMappings returns the complete mappings in insertion order.
func (s *DraftSet) CompleteMappings() []*DraftMapping {
	out := make([]*DraftMapping, 0, len(s.mappings))
	for _, m := range s.mappings {
		if m.Complete() {
			out = append(out, m)
		}
	}
	return out
}

// CompleteCount returns the number of complete mappings.
func (s *DraftSet) CompleteCount() int {
	return len(s.CompleteMappings())
}

// HasInternalDuplicates reports whether two complete mappings share the same
// (sourceColumn, targetColumn) pair, regardless of relationship type.
func (s *DraftSet) HasInternalDuplicates() bool {
	seen := make(map[string]bool, len(s.mappings))
	for _, m := range s.mappings {
		if !m.Complete() {
			continue
		}
		key := m.SourceColumn + "\x00" + m.TargetColumn
		if seen[key] {
			return true
		}
		seen[key] = true
	}
	return false
}
