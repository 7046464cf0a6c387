// Package queryintegration splices compiled relationship predicates
// into host item and actor queries: predicate, join, group-by and
// order-by phases, in that order.
package queryintegration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/contentlink/contentlink/domain/relquery"
	"github.com/contentlink/contentlink/pkg/logger"
)

// OrderByRelationship selects relationship order in query args.
const OrderByRelationship = "relationship"

// Fragments are the SQL pieces a host query splices in. Where carries
// a leading " and (...)" group; Join a left-join chain; GroupBy and
// OrderBy are bare column lists without their keywords.
type Fragments struct {
	Where     string
	WhereArgs []any
	Join      string
	GroupBy   string
	OrderBy   string
}

// ItemQueryArgs describes a host query over content items.
type ItemQueryArgs struct {
	// Kind filters the queried items and scopes relationship lookup.
	Kind string

	// Relationship is the raw wire-format predicate. Ignored when
	// Predicate is set.
	Relationship map[string]any

	// Predicate is a pre-parsed predicate.
	Predicate *relquery.Predicate

	// OrderBy passes through untouched unless it is
	// OrderByRelationship and the predicate qualifies for the
	// relationship order rewrite.
	OrderBy string

	Limit int
}

// ActorQueryArgs describes a host query over actors.
type ActorQueryArgs struct {
	Relationship map[string]any
	Predicate    *relquery.Predicate
	OrderBy      string
	Limit        int
}

// ItemArgsHook mutates item query args before compilation.
type ItemArgsHook func(ctx context.Context, args *ItemQueryArgs) error

// ActorArgsHook mutates actor query args before compilation.
type ActorArgsHook func(ctx context.Context, args *ActorQueryArgs) error

// Integration runs the four query phases against a compiler.
type Integration struct {
	compiler *relquery.Compiler
	log      *slog.Logger

	itemHooks  []ItemArgsHook
	actorHooks []ActorArgsHook
}

// NewIntegration creates the query pipeline glue.
func NewIntegration(compiler *relquery.Compiler, log *slog.Logger) *Integration {
	return &Integration{
		compiler: compiler,
		log:      log.With(logger.Scope("queryintegration")),
	}
}

// RegisterItemArgsHook adds a hook run before item query compilation.
func (i *Integration) RegisterItemArgsHook(fn ItemArgsHook) {
	i.itemHooks = append(i.itemHooks, fn)
}

// RegisterActorArgsHook adds a hook run before actor query compilation.
func (i *Integration) RegisterActorArgsHook(fn ActorArgsHook) {
	i.actorHooks = append(i.actorHooks, fn)
}

// ApplyToItemQuery compiles the relationship predicate in args and
// returns the fragments for an item query.
//
// Group-by collapses duplicate rows from multi-edge joins and is forced
// to the primary key whenever a predicate applied. The order-by rewrite
// fires only for a single resolved item-target segment on a sortable
// relationship; everything else passes the caller's order-by through.
func (i *Integration) ApplyToItemQuery(ctx context.Context, args ItemQueryArgs) (Fragments, error) {
	for _, fn := range i.itemHooks {
		if err := fn(ctx, &args); err != nil {
			return Fragments{}, err
		}
	}

	pred := i.predicate(args.Predicate, args.Relationship)

	compiled, err := i.compiler.CompileForItems(ctx, pred, args.Kind)
	if err != nil {
		return Fragments{}, err
	}

	frags := Fragments{
		Where:     compiled.Where,
		WhereArgs: compiled.WhereArgs,
		Join:      compiled.Join,
	}

	if frags.Where == "" {
		frags.OrderBy = passthroughOrder(args.OrderBy)
		return frags, nil
	}

	frags.GroupBy = "ci.id"
	frags.OrderBy = passthroughOrder(args.OrderBy)

	if args.OrderBy == OrderByRelationship && len(compiled.Segments) == 1 {
		seg := compiled.Segments[0]
		// Actor-target segments never customize item order: the item
		// side of that edge has no stored order to honor here.
		if seg.ItemRel != nil && (seg.ItemRel.FromSortable || seg.ItemRel.ToSortable) {
			orderCol := fmt.Sprintf(`%s."order"`, seg.Alias)
			// The single joined row per item makes the order column
			// safe to group on.
			frags.GroupBy = "ci.id, " + orderCol
			frags.OrderBy = fmt.Sprintf("(%s = 0) ASC, %s ASC, ci.id ASC", orderCol, orderCol)
		}
	}

	return frags, nil
}

// ApplyToActorQuery compiles the relationship predicate in args and
// returns the fragments for an actor query. The order-by rewrite fires
// for a single resolved item-target segment whose relationship tracks
// actor order.
func (i *Integration) ApplyToActorQuery(ctx context.Context, args ActorQueryArgs) (Fragments, error) {
	for _, fn := range i.actorHooks {
		if err := fn(ctx, &args); err != nil {
			return Fragments{}, err
		}
	}

	pred := i.predicate(args.Predicate, args.Relationship)

	compiled, err := i.compiler.CompileForActors(ctx, pred)
	if err != nil {
		return Fragments{}, err
	}

	frags := Fragments{
		Where:     compiled.Where,
		WhereArgs: compiled.WhereArgs,
		Join:      compiled.Join,
	}

	if frags.Where == "" {
		frags.OrderBy = passthroughOrder(args.OrderBy)
		return frags, nil
	}

	frags.GroupBy = "a.id"
	frags.OrderBy = passthroughOrder(args.OrderBy)

	if args.OrderBy == OrderByRelationship && len(compiled.Segments) == 1 {
		seg := compiled.Segments[0]
		if seg.ActorRel != nil && seg.ActorRel.FromSortable {
			orderCol := seg.Alias + ".actor_order"
			frags.GroupBy = "a.id, " + orderCol
			frags.OrderBy = fmt.Sprintf("(%s = 0) ASC, %s ASC, a.id ASC", orderCol, orderCol)
		}
	}

	return frags, nil
}

func (i *Integration) predicate(typed *relquery.Predicate, raw map[string]any) relquery.Predicate {
	if typed != nil {
		return *typed
	}
	return relquery.ParsePredicate(raw)
}

// passthroughOrder forwards a caller order-by, swallowing the
// relationship keyword when the rewrite did not apply.
func passthroughOrder(orderBy string) string {
	if orderBy == OrderByRelationship {
		return ""
	}
	return orderBy
}
