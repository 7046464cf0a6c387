package queryintegration

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentlink/contentlink/domain/relationships"
	"github.com/contentlink/contentlink/domain/relquery"
)

type stubHost struct {
	itemKinds map[int64]string
	actors    map[int64]struct{}
}

func (h *stubHost) KindExists(kind string) bool {
	return kind == "post" || kind == "page"
}

func (h *stubHost) ItemKind(ctx context.Context, id int64) (string, error) {
	return h.itemKinds[id], nil
}

func (h *stubHost) ActorExists(ctx context.Context, id int64) (bool, error) {
	_, ok := h.actors[id]
	return ok, nil
}

func newTestIntegration(t *testing.T) *Integration {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	host := &stubHost{
		itemKinds: map[int64]string{2: "page", 3: "page", 10: "post"},
		actors:    map[int64]struct{}{5: {}},
	}

	reg := relationships.NewRegistry(host, relationships.NewTables(nil, log), log)
	_, err := reg.DefineItemToItem("post", "page", "sorted", relationships.Options{FromSortable: true})
	require.NoError(t, err)
	_, err = reg.DefineItemToItem("post", "page", "plain", relationships.Options{})
	require.NoError(t, err)
	_, err = reg.DefineItemToActor("post", "owners", relationships.Options{FromSortable: true})
	require.NoError(t, err)

	return NewIntegration(relquery.NewCompiler(reg, host, log), log)
}

func segPred(segs ...relquery.Segment) *relquery.Predicate {
	return &relquery.Predicate{Relation: relquery.RelationAnd, Segments: segs}
}

func id(v int64) *int64 { return &v }

func TestApplyToItemQueryNoPredicate(t *testing.T) {
	i := newTestIntegration(t)

	frags, err := i.ApplyToItemQuery(context.Background(), ItemQueryArgs{
		Kind:    "post",
		OrderBy: "ci.created_at DESC",
	})
	require.NoError(t, err)

	assert.Empty(t, frags.Where)
	assert.Empty(t, frags.Join)
	assert.Empty(t, frags.GroupBy)
	assert.Equal(t, "ci.created_at DESC", frags.OrderBy)
}

func TestApplyToItemQueryGroupByForcedWithPredicate(t *testing.T) {
	i := newTestIntegration(t)

	frags, err := i.ApplyToItemQuery(context.Background(), ItemQueryArgs{
		Kind:      "post",
		Predicate: segPred(relquery.Segment{Name: "plain", RelatedItemID: id(2)}),
		OrderBy:   "ci.id DESC",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, frags.Where)
	assert.Equal(t, "ci.id", frags.GroupBy)
	assert.Equal(t, "ci.id DESC", frags.OrderBy)
}

func TestApplyToItemQueryRelationshipOrder(t *testing.T) {
	i := newTestIntegration(t)
	ctx := context.Background()

	t.Run("single sortable item-target segment rewrites", func(t *testing.T) {
		frags, err := i.ApplyToItemQuery(ctx, ItemQueryArgs{
			Kind:      "post",
			Predicate: segPred(relquery.Segment{Name: "sorted", RelatedItemID: id(2)}),
			OrderBy:   OrderByRelationship,
		})
		require.NoError(t, err)

		assert.Equal(t, `ci.id, i2i1."order"`, frags.GroupBy)
		assert.Equal(t, `(i2i1."order" = 0) ASC, i2i1."order" ASC, ci.id ASC`, frags.OrderBy)
	})

	t.Run("multiple segments refuse the rewrite", func(t *testing.T) {
		frags, err := i.ApplyToItemQuery(ctx, ItemQueryArgs{
			Kind: "post",
			Predicate: segPred(
				relquery.Segment{Name: "sorted", RelatedItemID: id(2)},
				relquery.Segment{Name: "plain", RelatedItemID: id(3)},
			),
			OrderBy: OrderByRelationship,
		})
		require.NoError(t, err)

		assert.Equal(t, "ci.id", frags.GroupBy)
		assert.Empty(t, frags.OrderBy)
	})

	t.Run("actor-target segment refuses the rewrite", func(t *testing.T) {
		frags, err := i.ApplyToItemQuery(ctx, ItemQueryArgs{
			Kind:      "post",
			Predicate: segPred(relquery.Segment{Name: "owners", RelatedActorID: id(5)}),
			OrderBy:   OrderByRelationship,
		})
		require.NoError(t, err)

		assert.Equal(t, "ci.id", frags.GroupBy)
		assert.Empty(t, frags.OrderBy)
	})

	t.Run("non-sortable relationship refuses the rewrite", func(t *testing.T) {
		frags, err := i.ApplyToItemQuery(ctx, ItemQueryArgs{
			Kind:      "post",
			Predicate: segPred(relquery.Segment{Name: "plain", RelatedItemID: id(2)}),
			OrderBy:   OrderByRelationship,
		})
		require.NoError(t, err)

		assert.Equal(t, "ci.id", frags.GroupBy)
		assert.Empty(t, frags.OrderBy)
	})
}

func TestApplyToActorQueryRelationshipOrder(t *testing.T) {
	i := newTestIntegration(t)

	frags, err := i.ApplyToActorQuery(context.Background(), ActorQueryArgs{
		Predicate: segPred(relquery.Segment{Name: "owners", RelatedItemID: id(10)}),
		OrderBy:   OrderByRelationship,
	})
	require.NoError(t, err)

	assert.Equal(t, "a.id, i2a1.actor_order", frags.GroupBy)
	assert.Equal(t, "(i2a1.actor_order = 0) ASC, i2a1.actor_order ASC, a.id ASC", frags.OrderBy)
}

func TestApplyToItemQueryParsesRawPredicate(t *testing.T) {
	i := newTestIntegration(t)

	frags, err := i.ApplyToItemQuery(context.Background(), ItemQueryArgs{
		Kind: "post",
		Relationship: map[string]any{
			"name":            "plain",
			"related_to_item": float64(2),
		},
	})
	require.NoError(t, err)

	assert.Contains(t, frags.Where, "i2i1.id2 = ?")
	assert.Equal(t, []any{int64(2), "plain"}, frags.WhereArgs)
}

func TestItemArgsHooks(t *testing.T) {
	i := newTestIntegration(t)

	i.RegisterItemArgsHook(func(ctx context.Context, args *ItemQueryArgs) error {
		args.Predicate = segPred(relquery.Segment{Name: "plain", RelatedItemID: id(2)})
		return nil
	})

	frags, err := i.ApplyToItemQuery(context.Background(), ItemQueryArgs{Kind: "post"})
	require.NoError(t, err)
	assert.NotEmpty(t, frags.Where)
}
