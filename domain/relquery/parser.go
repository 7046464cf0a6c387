package relquery

import (
	"encoding/json"
	"sort"
	"strings"
)

// Wire keys accepted by ParsePredicate.
const (
	keyName           = "name"
	keyRelatedToItem  = "related_to_item"
	keyRelatedToActor = "related_to_actor"
	keyRelation       = "relation"
)

// ParsePredicate normalizes a raw wire-format predicate into a typed
// one. Top-level name/related_to_item/related_to_actor keys are lifted
// into an implicit first segment; remaining map values are parsed as
// segments; a "relation" key (any case) selects AND/OR, defaulting to
// AND for anything unrecognized. Malformed segments are dropped
// silently and contribute nothing.
func ParsePredicate(raw map[string]any) Predicate {
	pred := Predicate{Relation: RelationAnd}

	if lifted := parseSegment(raw); lifted.Valid() {
		pred.Segments = append(pred.Segments, lifted)
	}

	// Map order is not stable, so nested segments are visited in sorted
	// key order to keep fragment output deterministic.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := raw[k].(type) {
		case map[string]any:
			if seg := parseSegment(v); seg.Valid() {
				pred.Segments = append(pred.Segments, seg)
			}
		default:
			if strings.ToLower(k) == keyRelation {
				if s, ok := v.(string); ok && strings.EqualFold(s, "or") {
					pred.Relation = RelationOr
				}
			}
		}
	}

	return pred
}

func parseSegment(raw map[string]any) Segment {
	var seg Segment
	if name, ok := raw[keyName].(string); ok {
		seg.Name = name
	}
	if id, ok := toID(raw[keyRelatedToItem]); ok {
		seg.RelatedItemID = &id
	}
	if id, ok := toID(raw[keyRelatedToActor]); ok {
		seg.RelatedActorID = &id
	}
	return seg
}

// toID coerces the numeric representations a decoded JSON or literal
// map may carry into an int64.
func toID(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	default:
		return 0, false
	}
}
