package relquery

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/contentlink/contentlink/domain/relationships"
	"github.com/contentlink/contentlink/pkg/logger"
)

// KindResolver resolves predicate participants against the host.
type KindResolver interface {
	ItemKind(ctx context.Context, id int64) (string, error)
	ActorExists(ctx context.Context, id int64) (bool, error)
}

// ResolvedSegment is a predicate segment whose relationship schema and
// related participant both resolved.
type ResolvedSegment struct {
	Segment

	// Exactly one of these is set, matching the segment target.
	ItemRel  *relationships.ItemToItem
	ActorRel *relationships.ItemToActor

	// Alias is the join table alias this segment's clauses reference.
	Alias string
}

// Compiled is the SQL fragment pair for a predicate. Where is either
// empty or a parenthesized group prefixed with " and ", matching the
// append position in the host query's WHERE clause; Join is the
// matching left-join chain. Both are empty when nothing resolved.
type Compiled struct {
	Where     string
	WhereArgs []any
	Join      string
	Relation  Relation
	Segments  []ResolvedSegment
}

// Compiler turns predicates into SQL fragments. Resolution failures
// (unknown relationship, unresolvable related ID) drop the segment
// silently; storage errors propagate.
type Compiler struct {
	registry *relationships.Registry
	resolver KindResolver
	log      *slog.Logger
}

// NewCompiler creates a predicate compiler.
func NewCompiler(registry *relationships.Registry, resolver KindResolver, log *slog.Logger) *Compiler {
	return &Compiler{
		registry: registry,
		resolver: resolver,
		log:      log.With(logger.Scope("relquery.compiler")),
	}
}

// CompileForItems compiles a predicate for a query over content items
// of itemKind. The fragments reference the item table through its "ci"
// alias.
//
// Join aliases are numbered per segment under AND (each segment needs
// its own join to be satisfiable simultaneously); under OR a single
// join per table kind is shared and the counter stays at 1.
func (c *Compiler) CompileForItems(ctx context.Context, pred Predicate, itemKind string) (Compiled, error) {
	out := Compiled{Relation: pred.Relation}

	count := 1
	i2iJoined := false
	i2aJoined := false
	var whereParts []string
	var joinParts []string

	for _, seg := range pred.Segments {
		if !seg.Valid() {
			continue
		}

		switch {
		case seg.RelatedItemID != nil:
			relatedKind, err := c.resolver.ItemKind(ctx, *seg.RelatedItemID)
			if err != nil {
				return Compiled{}, err
			}
			if relatedKind == "" {
				continue
			}
			rel := c.registry.ItemToItemByParticipants(itemKind, relatedKind, seg.Name)
			if rel == nil {
				continue
			}

			alias := fmt.Sprintf("i2i%d", count)
			whereParts = append(whereParts, fmt.Sprintf("(%s.id2 = ? and %s.name = ?)", alias, alias))
			out.WhereArgs = append(out.WhereArgs, *seg.RelatedItemID, seg.Name)
			if pred.Relation == RelationAnd || !i2iJoined {
				joinParts = append(joinParts, fmt.Sprintf(" left join %s as %s on ci.id = %s.id1",
					relationships.TableItemToItem, alias, alias))
				i2iJoined = true
			}
			out.Segments = append(out.Segments, ResolvedSegment{Segment: seg, ItemRel: rel, Alias: alias})

		case seg.RelatedActorID != nil:
			exists, err := c.resolver.ActorExists(ctx, *seg.RelatedActorID)
			if err != nil {
				return Compiled{}, err
			}
			if !exists {
				continue
			}
			rel := c.registry.ItemToActorByParticipants(itemKind, seg.Name)
			if rel == nil {
				continue
			}

			alias := fmt.Sprintf("i2a%d", count)
			whereParts = append(whereParts, fmt.Sprintf("(%s.actor_id = ? and %s.name = ?)", alias, alias))
			out.WhereArgs = append(out.WhereArgs, *seg.RelatedActorID, seg.Name)
			if pred.Relation == RelationAnd || !i2aJoined {
				joinParts = append(joinParts, fmt.Sprintf(" left join %s as %s on ci.id = %s.item_id",
					relationships.TableItemToActor, alias, alias))
				i2aJoined = true
			}
			out.Segments = append(out.Segments, ResolvedSegment{Segment: seg, ActorRel: rel, Alias: alias})
		}

		if pred.Relation == RelationAnd {
			count++
		}
	}

	if len(whereParts) > 0 {
		out.Where = " and (" + strings.Join(whereParts, " "+string(pred.Relation)+" ") + ")"
		out.Join = strings.Join(joinParts, "")
	}

	return out, nil
}

// CompileForActors compiles a predicate for a query over actors. Only
// item-target segments apply; actor-target segments never resolve here.
// The fragments reference the actor table through its "a" alias.
func (c *Compiler) CompileForActors(ctx context.Context, pred Predicate) (Compiled, error) {
	out := Compiled{Relation: pred.Relation}

	count := 1
	joined := false
	var whereParts []string
	var joinParts []string

	for _, seg := range pred.Segments {
		if !seg.Valid() || seg.RelatedItemID == nil {
			continue
		}

		itemKind, err := c.resolver.ItemKind(ctx, *seg.RelatedItemID)
		if err != nil {
			return Compiled{}, err
		}
		if itemKind == "" {
			continue
		}
		rel := c.registry.ItemToActorByParticipants(itemKind, seg.Name)
		if rel == nil {
			continue
		}

		alias := fmt.Sprintf("i2a%d", count)
		whereParts = append(whereParts, fmt.Sprintf("(%s.item_id = ? and %s.name = ?)", alias, alias))
		out.WhereArgs = append(out.WhereArgs, *seg.RelatedItemID, seg.Name)
		if pred.Relation == RelationAnd || !joined {
			joinParts = append(joinParts, fmt.Sprintf(" left join %s as %s on a.id = %s.actor_id",
				relationships.TableItemToActor, alias, alias))
			joined = true
		}
		out.Segments = append(out.Segments, ResolvedSegment{Segment: seg, ActorRel: rel, Alias: alias})

		if pred.Relation == RelationAnd {
			count++
		}
	}

	if len(whereParts) > 0 {
		out.Where = " and (" + strings.Join(whereParts, " "+string(pred.Relation)+" ") + ")"
		out.Join = strings.Join(joinParts, "")
	}

	return out, nil
}
