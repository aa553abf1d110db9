package linker

import (
	"fmt"

	"github.com/athapong/schema-linker/pkg/graph"
)

// Classification is the outcome of checking one candidate mapping against the
// known relationship set.
type Classification int

const (
	// ClassificationNone means no known relationship matches the candidate.
	ClassificationNone Classification = iota

	// ClassificationExactForward means an identical relationship already
	// exists: same endpoints, same columns, same canonical type.
	ClassificationExactForward

	// ClassificationExactReverse means the transposed relationship already
	// exists with the same canonical type, making the candidate redundant.
	ClassificationExactReverse

	// ClassificationTypeConflict means a relationship with identical
	// endpoints and columns exists under a different canonical type.
	// Informational only, never blocks submission.
	ClassificationTypeConflict
)

func (c Classification) String() string {
	switch c {
	case ClassificationNone:
		return "none"
	case ClassificationExactForward:
		return "exact_forward"
	case ClassificationExactReverse:
		return "exact_reverse"
	case ClassificationTypeConflict:
		return "type_conflict"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

// Blocking reports whether the classification prevents submission.
func (c Classification) Blocking() bool {
	return c == ClassificationExactForward || c == ClassificationExactReverse
}

// Verdict carries a classification together with a human-readable message and,
// for non-none results, the matched existing relationship.
type Verdict struct {
	Classification Classification
	Message        string
	Matched        *graph.Relationship
}

// Classify checks one candidate mapping between source and target against the
// existing relationship set. Tiers are evaluated in strict priority order and
// the first match within a tier wins, scanning existing in its given order:
//
//  1. exact forward duplicate (same endpoints, columns and canonical type)
//  2. exact reverse duplicate (transposed endpoints and columns, same type)
//  3. type conflict (same endpoints and columns, different canonical type)
func Classify(m *DraftMapping, source, target *graph.Node, existing []graph.Relationship) Verdict {
	candType := graph.CanonicalType(m.RelationshipType)
	sourceID, targetID := source.ID, target.ID

	for i := range existing {
		rel := &existing[i]
		if rel.SourceID == sourceID && rel.TargetID == targetID &&
			rel.SourceColumn == m.SourceColumn && rel.TargetColumn == m.TargetColumn &&
			graph.CanonicalType(rel.Type) == candType {
			v := Verdict{
				Classification: ClassificationExactForward,
				Matched:        rel,
				Message: fmt.Sprintf("a %s relationship from %s (%s) to %s (%s) on columns %s -> %s already exists",
					candType, graph.DisplayName(source), sourceID, graph.DisplayName(target), targetID,
					m.SourceColumn, m.TargetColumn),
			}
			observeClassification(v.Classification)
			return v
		}
	}

	for i := range existing {
		rel := &existing[i]
		if rel.SourceID == targetID && rel.TargetID == sourceID &&
			rel.SourceColumn == m.TargetColumn && rel.TargetColumn == m.SourceColumn &&
			graph.CanonicalType(rel.Type) == candType {
			v := Verdict{
				Classification: ClassificationExactReverse,
				Matched:        rel,
				Message: fmt.Sprintf("%s (%s) already declares a %s relationship back to %s (%s) on columns %s -> %s; the reverse mapping is redundant",
					graph.DisplayName(target), targetID, candType, graph.DisplayName(source), sourceID,
					m.TargetColumn, m.SourceColumn),
			}
			observeClassification(v.Classification)
			return v
		}
	}

	for i := range existing {
		rel := &existing[i]
		if rel.SourceID == sourceID && rel.TargetID == targetID &&
			rel.SourceColumn == m.SourceColumn && rel.TargetColumn == m.TargetColumn &&
			graph.CanonicalType(rel.Type) != candType {
			v := Verdict{
				Classification: ClassificationTypeConflict,
				Matched:        rel,
				Message: fmt.Sprintf("%s and %s are already linked on columns %s -> %s with type %s; adding %s alongside it",
					graph.DisplayName(source), graph.DisplayName(target),
					m.SourceColumn, m.TargetColumn, graph.CanonicalType(rel.Type), candType),
			}
			observeClassification(v.Classification)
			return v
		}
	}

	observeClassification(ClassificationNone)
	return Verdict{Classification: ClassificationNone}
}
