package relationships

import (
	"context"

	"github.com/contentlink/contentlink/internal/database"
)

// ItemToItem is a named many-to-many relationship between two content
// kinds (which may be the same kind).
//
// Edges are stored mirrored: both (a, b) and (b, a) rows exist for
// every relationship. That keeps reads single-sided regardless of which
// participant anchors the query, and gives each direction its own
// stored sort order: the order on row (id1, id2) is the position of id1
// as sorted under id2.
type ItemToItem struct {
	From string
	To   string
	Name string

	// FromSortable / ToSortable mark which sides track an explicit
	// relationship order.
	FromSortable bool
	ToSortable   bool

	tables  *Tables
	catalog KindCatalog
}

func newItemToItem(from, to, name string, opts Options, tables *Tables, catalog KindCatalog) *ItemToItem {
	return &ItemToItem{
		From:         from,
		To:           to,
		Name:         name,
		FromSortable: opts.FromSortable,
		ToSortable:   opts.ToSortable,
		tables:       tables,
		catalog:      catalog,
	}
}

// Key returns the canonical registry key.
func (r *ItemToItem) Key() string {
	return Key(r.From, r.To, r.Name)
}

// relatedKind resolves which participant kind the anchor belongs to and
// returns the opposite kind. Empty when the anchor is not a participant.
func (r *ItemToItem) relatedKind(ctx context.Context, anchorID int64) (string, error) {
	kind, err := r.catalog.ItemKind(ctx, anchorID)
	if err != nil {
		return "", err
	}
	switch kind {
	case r.From:
		return r.To, nil
	case r.To:
		return r.From, nil
	default:
		return "", nil
	}
}

// RelatedIDs returns the items related to anchorID. Anchors whose kind
// is neither participant resolve to an empty set.
func (r *ItemToItem) RelatedIDs(ctx context.Context, anchorID int64, orderByRelationship bool) ([]int64, error) {
	relatedKind, err := r.relatedKind(ctx, anchorID)
	if err != nil {
		return nil, err
	}
	if relatedKind == "" {
		return nil, nil
	}
	return r.tables.RelatedItemIDs(ctx, anchorID, r.Name, relatedKind, orderByRelationship)
}

// AddEdge relates two items, writing both mirror rows.
func (r *ItemToItem) AddEdge(ctx context.Context, fromID, toID int64) error {
	return r.tables.UpsertItemToItem(ctx, []ItemToItemEdge{
		{ID1: fromID, ID2: toID, Name: r.Name},
		{ID1: toID, ID2: fromID, Name: r.Name},
	})
}

// DeleteEdge removes both mirror rows of an edge.
func (r *ItemToItem) DeleteEdge(ctx context.Context, fromID, toID int64) error {
	return r.tables.DeleteItemToItem(ctx, fromID, r.Name, []int64{toID})
}

// ReplaceEdges makes relatedIDs the exact related set of anchorID. Runs
// in a transaction so concurrent readers never observe the half-swapped
// set.
func (r *ItemToItem) ReplaceEdges(ctx context.Context, anchorID int64, relatedIDs []int64) error {
	relatedKind, err := r.relatedKind(ctx, anchorID)
	if err != nil {
		return err
	}
	if relatedKind == "" {
		return nil
	}

	tx, err := database.BeginSafeTx(ctx, r.tables.db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tt := r.tables.WithDB(tx)

	current, err := tt.RelatedItemIDs(ctx, anchorID, r.Name, relatedKind, false)
	if err != nil {
		return err
	}

	if err := tt.DeleteItemToItem(ctx, anchorID, r.Name, diffIDs(current, relatedIDs)); err != nil {
		return err
	}

	var add []ItemToItemEdge
	for _, id := range diffIDs(relatedIDs, current) {
		add = append(add,
			ItemToItemEdge{ID1: anchorID, ID2: id, Name: r.Name},
			ItemToItemEdge{ID1: id, ID2: anchorID, Name: r.Name},
		)
	}
	if err := tt.UpsertItemToItem(ctx, add); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveSortOrder stores the 1-based order of orderedIDs under anchorID.
// Only the (related, anchor) direction carries the order; the mirror
// direction belongs to the other participant's own sort. Mirror rows
// are still created for edges that did not exist yet, so the storage
// stays symmetric.
func (r *ItemToItem) SaveSortOrder(ctx context.Context, anchorID int64, orderedIDs []int64) error {
	if len(orderedIDs) == 0 {
		return nil
	}

	ordered := make([]ItemToItemEdge, 0, len(orderedIDs))
	mirrors := make([]ItemToItemEdge, 0, len(orderedIDs))
	for i, id := range orderedIDs {
		ordered = append(ordered, ItemToItemEdge{ID1: id, ID2: anchorID, Name: r.Name, Order: i + 1})
		mirrors = append(mirrors, ItemToItemEdge{ID1: anchorID, ID2: id, Name: r.Name})
	}

	tx, err := database.BeginSafeTx(ctx, r.tables.db)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tt := r.tables.WithDB(tx)
	if err := tt.SetItemToItemOrders(ctx, ordered); err != nil {
		return err
	}
	if err := tt.UpsertItemToItem(ctx, mirrors); err != nil {
		return err
	}

	return tx.Commit()
}
