// Package relquery parses relationship predicates and compiles them
// into SQL fragments a host query pipeline can splice into its own
// item or actor queries.
package relquery

// Relation combines predicate segments.
type Relation string

const (
	RelationAnd Relation = "AND"
	RelationOr  Relation = "OR"
)

// Segment is one clause of a relationship predicate: find rows related
// to one specific item or actor under a named relationship. Exactly one
// of RelatedItemID / RelatedActorID must be set.
type Segment struct {
	Name           string
	RelatedItemID  *int64
	RelatedActorID *int64
}

// Valid reports whether the segment carries a name and exactly one
// related participant.
func (s Segment) Valid() bool {
	if s.RelatedItemID != nil && s.RelatedActorID != nil {
		return false
	}
	return s.Name != "" && (s.RelatedItemID != nil || s.RelatedActorID != nil)
}

// Predicate is a parsed relationship predicate.
type Predicate struct {
	Segments []Segment
	Relation Relation
}

// Empty reports whether the predicate has no valid segments.
func (p Predicate) Empty() bool {
	for _, s := range p.Segments {
		if s.Valid() {
			return false
		}
	}
	return true
}
