package relationships

import (
	"context"
	"fmt"

	"github.com/contentlink/contentlink/pkg/apperror"
)

// RelatedItemIDsByName returns every item related to itemID under a
// relationship name, without restricting by kind. Useful when several
// relationships between different kind pairs share a name and the
// caller wants the union.
func (t *Tables) RelatedItemIDsByName(ctx context.Context, itemID int64, name string) ([]int64, error) {
	var ids []int64
	err := t.db.NewSelect().
		Model((*ItemToItemEdge)(nil)).
		Column("i2i.id1").
		Where("i2i.id2 = ?", itemID).
		Where("i2i.name = ?", name).
		Scan(ctx, &ids)
	if err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("select related ids by name: %w", err))
	}
	return ids, nil
}

// ItemToItemByKey looks up an item-to-item relationship by its
// canonical key. Returns nil when absent.
func (r *Registry) ItemToItemByKey(key string) *ItemToItem {
	return r.itemToItem[key]
}

// ItemToActorByKey looks up an item-to-actor relationship by its
// canonical key. Returns nil when absent.
func (r *Registry) ItemToActorByKey(key string) *ItemToActor {
	return r.itemToActor[key]
}

// ItemToItemByKind returns the item-to-item relationships where either
// participant is kind.
func (r *Registry) ItemToItemByKind(kind string) []*ItemToItem {
	var out []*ItemToItem
	for _, rel := range r.itemToItem {
		if rel.From == kind || rel.To == kind {
			out = append(out, rel)
		}
	}
	return out
}

// ItemToActorByKind returns the item-to-actor relationships whose item
// participant is kind.
func (r *Registry) ItemToActorByKind(kind string) []*ItemToActor {
	var out []*ItemToActor
	for _, rel := range r.itemToActor {
		if rel.ItemKind == kind {
			out = append(out, rel)
		}
	}
	return out
}
