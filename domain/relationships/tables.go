package relationships

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/contentlink/contentlink/pkg/apperror"
	"github.com/contentlink/contentlink/pkg/logger"
)

// Tables is the storage engine for the relationship join tables. It
// owns their schema (see schema.go) and the row-level operations the
// relationship entities are built on.
type Tables struct {
	db  bun.IDB
	log *slog.Logger
}

// NewTables creates the join table storage engine.
func NewTables(db bun.IDB, log *slog.Logger) *Tables {
	return &Tables{
		db:  db,
		log: log.With(logger.Scope("relationships.tables")),
	}
}

// WithDB returns a copy of the storage engine bound to a different
// executor, typically a transaction.
func (t *Tables) WithDB(db bun.IDB) *Tables {
	return &Tables{db: db, log: t.log}
}

// UpsertItemToItem inserts item-to-item edge rows. Existing rows are
// left untouched, so re-adding an edge never clears its stored order.
func (t *Tables) UpsertItemToItem(ctx context.Context, edges []ItemToItemEdge) error {
	if len(edges) == 0 {
		return nil
	}
	_, err := t.db.NewInsert().
		Model(&edges).
		On("CONFLICT (id1, id2, name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("upsert item-to-item edges: %w", err))
	}
	return nil
}

// DeleteItemToItem removes the edge rows relating anchorID to each of
// relatedIDs under name, in both stored directions. Zero affected rows
// is not an error.
func (t *Tables) DeleteItemToItem(ctx context.Context, anchorID int64, name string, relatedIDs []int64) error {
	if len(relatedIDs) == 0 {
		return nil
	}
	_, err := t.db.NewDelete().
		Model((*ItemToItemEdge)(nil)).
		Where("name = ?", name).
		Where("(id1 = ? AND id2 IN (?)) OR (id2 = ? AND id1 IN (?))",
			anchorID, bun.In(relatedIDs), anchorID, bun.In(relatedIDs)).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("delete item-to-item edges: %w", err))
	}
	return nil
}

// RelatedItemIDs returns the item IDs of kind relatedKind related to
// anchorID under name. The anchor is matched on id2 so the returned
// rows carry the order of the related items as sorted under the anchor
// (see SetItemToItemOrders). With ordered set, rows carrying an
// explicit order come first ascending and unordered rows (order 0)
// trail.
func (t *Tables) RelatedItemIDs(ctx context.Context, anchorID int64, name, relatedKind string, ordered bool) ([]int64, error) {
	q := t.db.NewSelect().
		Model((*ItemToItemEdge)(nil)).
		Column("i2i.id1").
		Join("INNER JOIN content_items AS p ON p.id = i2i.id1").
		Where("i2i.id2 = ?", anchorID).
		Where("i2i.name = ?", name).
		Where("p.kind = ?", relatedKind)
	if ordered {
		q = q.OrderExpr("(i2i.? = 0) ASC", bun.Ident("order")).
			OrderExpr("i2i.? ASC", bun.Ident("order"))
	}

	var ids []int64
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("select related item ids: %w", err))
	}
	return ids, nil
}

// SetItemToItemOrders writes explicit edge orders in one statement.
// Rows that do not exist yet are created with the given order.
func (t *Tables) SetItemToItemOrders(ctx context.Context, edges []ItemToItemEdge) error {
	if len(edges) == 0 {
		return nil
	}
	_, err := t.db.NewInsert().
		Model(&edges).
		On("CONFLICT (id1, id2, name) DO UPDATE").
		Set("? = EXCLUDED.?", bun.Ident("order"), bun.Ident("order")).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("set item-to-item orders: %w", err))
	}
	return nil
}

// UpsertItemToActor inserts item-to-actor edge rows, leaving existing
// rows (and their stored orders) untouched.
func (t *Tables) UpsertItemToActor(ctx context.Context, edges []ItemToActorEdge) error {
	if len(edges) == 0 {
		return nil
	}
	_, err := t.db.NewInsert().
		Model(&edges).
		On("CONFLICT (item_id, actor_id, name) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("upsert item-to-actor edges: %w", err))
	}
	return nil
}

// DeleteItemToActorByItem removes the edges relating itemID to each of
// actorIDs under name.
func (t *Tables) DeleteItemToActorByItem(ctx context.Context, itemID int64, name string, actorIDs []int64) error {
	if len(actorIDs) == 0 {
		return nil
	}
	_, err := t.db.NewDelete().
		Model((*ItemToActorEdge)(nil)).
		Where("item_id = ?", itemID).
		Where("name = ?", name).
		Where("actor_id IN (?)", bun.In(actorIDs)).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("delete item-to-actor edges: %w", err))
	}
	return nil
}

// DeleteItemToActorByActor removes the edges relating actorID to each
// of itemIDs under name.
func (t *Tables) DeleteItemToActorByActor(ctx context.Context, actorID int64, name string, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := t.db.NewDelete().
		Model((*ItemToActorEdge)(nil)).
		Where("actor_id = ?", actorID).
		Where("name = ?", name).
		Where("item_id IN (?)", bun.In(itemIDs)).
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("delete item-to-actor edges: %w", err))
	}
	return nil
}

// ActorIDsForItem returns the actors related to itemID under name,
// ordered by the per-item actor order when requested.
func (t *Tables) ActorIDsForItem(ctx context.Context, itemID int64, name string, ordered bool) ([]int64, error) {
	q := t.db.NewSelect().
		Model((*ItemToActorEdge)(nil)).
		Column("actor_id").
		Where("i2a.item_id = ?", itemID).
		Where("i2a.name = ?", name)
	if ordered {
		q = q.OrderExpr("(i2a.actor_order = 0) ASC").
			OrderExpr("i2a.actor_order ASC")
	}

	var ids []int64
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("select actor ids for item: %w", err))
	}
	return ids, nil
}

// ItemIDsForActor returns the items of kind itemKind related to actorID
// under name, ordered by the per-actor item order when requested.
func (t *Tables) ItemIDsForActor(ctx context.Context, actorID int64, name, itemKind string, ordered bool) ([]int64, error) {
	q := t.db.NewSelect().
		Model((*ItemToActorEdge)(nil)).
		Column("i2a.item_id").
		Join("INNER JOIN content_items AS p ON p.id = i2a.item_id").
		Where("i2a.actor_id = ?", actorID).
		Where("i2a.name = ?", name).
		Where("p.kind = ?", itemKind)
	if ordered {
		q = q.OrderExpr("(i2a.item_order = 0) ASC").
			OrderExpr("i2a.item_order ASC")
	}

	var ids []int64
	if err := q.Scan(ctx, &ids); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("select item ids for actor: %w", err))
	}
	return ids, nil
}

// SetActorOrders writes per-item actor orders in one statement.
func (t *Tables) SetActorOrders(ctx context.Context, edges []ItemToActorEdge) error {
	if len(edges) == 0 {
		return nil
	}
	_, err := t.db.NewInsert().
		Model(&edges).
		On("CONFLICT (item_id, actor_id, name) DO UPDATE").
		Set("actor_order = EXCLUDED.actor_order").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("set actor orders: %w", err))
	}
	return nil
}

// SetItemOrders writes per-actor item orders in one statement.
func (t *Tables) SetItemOrders(ctx context.Context, edges []ItemToActorEdge) error {
	if len(edges) == 0 {
		return nil
	}
	_, err := t.db.NewInsert().
		Model(&edges).
		On("CONFLICT (item_id, actor_id, name) DO UPDATE").
		Set("item_order = EXCLUDED.item_order").
		Exec(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("set item orders: %w", err))
	}
	return nil
}

// PurgeItemEdges removes every relationship row referencing a content
// item, across all relationship names. Used on item hard delete.
func (t *Tables) PurgeItemEdges(ctx context.Context, itemID int64) error {
	if _, err := t.db.NewDelete().
		Model((*ItemToItemEdge)(nil)).
		Where("id1 = ? OR id2 = ?", itemID, itemID).
		Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("purge item-to-item edges: %w", err))
	}
	if _, err := t.db.NewDelete().
		Model((*ItemToActorEdge)(nil)).
		Where("item_id = ?", itemID).
		Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("purge item-to-actor edges: %w", err))
	}
	t.log.Debug("purged relationship edges for item", slog.Int64("item_id", itemID))
	return nil
}

// PurgeActorEdges removes every relationship row referencing an actor.
// Used on actor hard delete.
func (t *Tables) PurgeActorEdges(ctx context.Context, actorID int64) error {
	if _, err := t.db.NewDelete().
		Model((*ItemToActorEdge)(nil)).
		Where("actor_id = ?", actorID).
		Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("purge actor edges: %w", err))
	}
	t.log.Debug("purged relationship edges for actor", slog.Int64("actor_id", actorID))
	return nil
}
