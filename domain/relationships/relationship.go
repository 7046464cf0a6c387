package relationships

import "context"

// Relationship is the contract shared by both relationship kinds.
//
// Anchor resolution: RelatedIDs, ReplaceEdges and SaveSortOrder accept
// either participant as the anchor and resolve its side through the
// kind catalog. Anchors that resolve to neither side yield empty
// results rather than errors.
type Relationship interface {
	// Key returns the canonical registry key.
	Key() string

	// RelatedIDs returns the IDs related to anchorID. With
	// orderByRelationship set, explicitly ordered edges come first in
	// their stored order and unordered edges trail.
	RelatedIDs(ctx context.Context, anchorID int64, orderByRelationship bool) ([]int64, error)

	// AddEdge relates two participants. Re-adding an existing edge is
	// a no-op and never disturbs its stored order.
	AddEdge(ctx context.Context, fromID, toID int64) error

	// DeleteEdge removes the edge between two participants. Removing
	// an absent edge is a no-op.
	DeleteEdge(ctx context.Context, fromID, toID int64) error

	// ReplaceEdges makes relatedIDs the exact related set of anchorID:
	// edges not listed are removed, missing ones are added, and edges
	// present in both keep their stored order.
	ReplaceEdges(ctx context.Context, anchorID int64, relatedIDs []int64) error

	// SaveSortOrder stores the 1-based display order of orderedIDs
	// under anchorID. An empty list is a no-op.
	SaveSortOrder(ctx context.Context, anchorID int64, orderedIDs []int64) error
}

// diffIDs returns the elements of a that are not in b, preserving order.
func diffIDs(a, b []int64) []int64 {
	seen := make(map[int64]struct{}, len(b))
	for _, id := range b {
		seen[id] = struct{}{}
	}
	var out []int64
	for _, id := range a {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
