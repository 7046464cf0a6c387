package relationships

import (
	"context"

	"github.com/contentlink/contentlink/internal/database"
)

// ItemToActor is a named many-to-many relationship between a content
// kind and actors. A single row carries both participants; each
// direction has its own stored order column (actor_order sorts actors
// under an item, item_order sorts items under an actor).
type ItemToActor struct {
	ItemKind string
	Name     string

	// FromSortable tracks actor order under items, ToSortable tracks
	// item order under actors.
	FromSortable bool
	ToSortable   bool

	tables  *Tables
	catalog KindCatalog
}

func newItemToActor(itemKind, name string, opts Options, tables *Tables, catalog KindCatalog) *ItemToActor {
	return &ItemToActor{
		ItemKind:     itemKind,
		Name:         name,
		FromSortable: opts.FromSortable,
		ToSortable:   opts.ToSortable,
		tables:       tables,
		catalog:      catalog,
	}
}

// Key returns the canonical registry key.
func (r *ItemToActor) Key() string {
	return Key(r.ItemKind, ActorParticipant, r.Name)
}

// anchorSide reports how an anchor ID resolves: as an item of this
// relationship's kind, as an actor, or not at all.
type anchorSide int

const (
	sideNone anchorSide = iota
	sideItem
	sideActor
)

func (r *ItemToActor) resolveAnchor(ctx context.Context, anchorID int64) (anchorSide, error) {
	kind, err := r.catalog.ItemKind(ctx, anchorID)
	if err != nil {
		return sideNone, err
	}
	if kind == r.ItemKind {
		return sideItem, nil
	}
	if kind != "" {
		// An item of a foreign kind is not a participant.
		return sideNone, nil
	}
	exists, err := r.catalog.ActorExists(ctx, anchorID)
	if err != nil {
		return sideNone, err
	}
	if exists {
		return sideActor, nil
	}
	return sideNone, nil
}

// RelatedIDs returns actor IDs for an item anchor and item IDs for an
// actor anchor. Unresolvable anchors yield an empty set.
func (r *ItemToActor) RelatedIDs(ctx context.Context, anchorID int64, orderByRelationship bool) ([]int64, error) {
	side, err := r.resolveAnchor(ctx, anchorID)
	if err != nil {
		return nil, err
	}
	switch side {
	case sideItem:
		return r.tables.ActorIDsForItem(ctx, anchorID, r.Name, orderByRelationship)
	case sideActor:
		return r.tables.ItemIDsForActor(ctx, anchorID, r.Name, r.ItemKind, orderByRelationship)
	default:
		return nil, nil
	}
}

// AddEdge relates an item to an actor. The first argument is always the
// item ID, the second the actor ID.
func (r *ItemToActor) AddEdge(ctx context.Context, itemID, actorID int64) error {
	return r.tables.UpsertItemToActor(ctx, []ItemToActorEdge{
		{ItemID: itemID, ActorID: actorID, Name: r.Name},
	})
}

// DeleteEdge removes the edge between an item and an actor.
func (r *ItemToActor) DeleteEdge(ctx context.Context, itemID, actorID int64) error {
	return r.tables.DeleteItemToActorByItem(ctx, itemID, r.Name, []int64{actorID})
}

// ReplaceEdges makes relatedIDs the exact related set of anchorID,
// resolving which side anchors the replacement.
func (r *ItemToActor) ReplaceEdges(ctx context.Context, anchorID int64, relatedIDs []int64) error {
	side, err := r.resolveAnchor(ctx, anchorID)
	if err != nil {
		return err
	}
	if side == sideNone {
		return nil
	}

	tx, err := database.BeginSafeTx(ctx, r.tables.db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tt := r.tables.WithDB(tx)

	if side == sideItem {
		current, err := tt.ActorIDsForItem(ctx, anchorID, r.Name, false)
		if err != nil {
			return err
		}
		if err := tt.DeleteItemToActorByItem(ctx, anchorID, r.Name, diffIDs(current, relatedIDs)); err != nil {
			return err
		}
		var add []ItemToActorEdge
		for _, id := range diffIDs(relatedIDs, current) {
			add = append(add, ItemToActorEdge{ItemID: anchorID, ActorID: id, Name: r.Name})
		}
		if err := tt.UpsertItemToActor(ctx, add); err != nil {
			return err
		}
	} else {
		current, err := tt.ItemIDsForActor(ctx, anchorID, r.Name, r.ItemKind, false)
		if err != nil {
			return err
		}
		if err := tt.DeleteItemToActorByActor(ctx, anchorID, r.Name, diffIDs(current, relatedIDs)); err != nil {
			return err
		}
		var add []ItemToActorEdge
		for _, id := range diffIDs(relatedIDs, current) {
			add = append(add, ItemToActorEdge{ItemID: id, ActorID: anchorID, Name: r.Name})
		}
		if err := tt.UpsertItemToActor(ctx, add); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveSortOrder stores the 1-based order of orderedIDs under anchorID.
// An item anchor orders its actors (actor_order); an actor anchor
// orders its items (item_order).
func (r *ItemToActor) SaveSortOrder(ctx context.Context, anchorID int64, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	side, err := r.resolveAnchor(ctx, anchorID)
	if err != nil {
		return err
	}

	switch side {
	case sideItem:
		edges := make([]ItemToActorEdge, 0, len(orderedIDs))
		for i, id := range orderedIDs {
			edges = append(edges, ItemToActorEdge{ItemID: anchorID, ActorID: id, Name: r.Name, ActorOrder: i + 1})
		}
		return r.tables.SetActorOrders(ctx, edges)
	case sideActor:
		edges := make([]ItemToActorEdge, 0, len(orderedIDs))
		for i, id := range orderedIDs {
			edges = append(edges, ItemToActorEdge{ItemID: id, ActorID: anchorID, Name: r.Name, ItemOrder: i + 1})
		}
		return r.tables.SetItemOrders(ctx, edges)
	default:
		return nil
	}
}
