package relationships

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentlink/contentlink/domain/catalog"
	"github.com/contentlink/contentlink/internal/testutil"
)

type dbFixture struct {
	cat    *catalog.Service
	tables *Tables
	reg    *Registry
}

func setupDBFixture(t *testing.T, kinds ...string) *dbFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := discardLogger()

	tables := NewTables(db, log)
	require.NoError(t, tables.UpgradeSchema(context.Background()))

	cat := catalog.NewService(catalog.NewRepository(db, log), log)
	for _, k := range kinds {
		cat.RegisterKind(k)
	}

	return &dbFixture{
		cat:    cat,
		tables: tables,
		reg:    NewRegistry(cat, tables, log),
	}
}

func (f *dbFixture) createItem(t *testing.T, kind string) int64 {
	t.Helper()
	item := &catalog.ContentItem{Kind: kind, Title: "fixture"}
	require.NoError(t, f.cat.CreateItem(context.Background(), item))
	return item.ID
}

func (f *dbFixture) createActor(t *testing.T, name string) int64 {
	t.Helper()
	actor := &catalog.Actor{Name: name}
	require.NoError(t, f.cat.CreateActor(context.Background(), actor))
	return actor.ID
}

func TestItemToItemEdges(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToItem("post", "page", "linked", Options{})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	page := f.createItem(t, "page")

	require.NoError(t, rel.AddEdge(ctx, post, page))

	t.Run("visible from both anchors", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{page}, ids)

		ids, err = rel.RelatedIDs(ctx, page, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{post}, ids)
	})

	t.Run("re-adding is a no-op", func(t *testing.T) {
		require.NoError(t, rel.AddEdge(ctx, post, page))
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{page}, ids)
	})

	t.Run("anchor outside the pair resolves empty", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, 999999, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("delete removes both directions", func(t *testing.T) {
		require.NoError(t, rel.DeleteEdge(ctx, post, page))

		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = rel.RelatedIDs(ctx, page, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestItemToItemSaveSortOrder(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToItem("post", "page", "sorted", Options{FromSortable: true})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	a := f.createItem(t, "page")
	b := f.createItem(t, "page")
	c := f.createItem(t, "page")

	for _, id := range []int64{a, b, c} {
		require.NoError(t, rel.AddEdge(ctx, post, id))
	}

	require.NoError(t, rel.SaveSortOrder(ctx, post, []int64{c, a, b}))

	ids, err := rel.RelatedIDs(ctx, post, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{c, a, b}, ids)

	t.Run("re-adding an edge keeps its order", func(t *testing.T) {
		require.NoError(t, rel.AddEdge(ctx, post, c))
		ids, err := rel.RelatedIDs(ctx, post, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{c, a, b}, ids)
	})

	t.Run("unordered edges trail ordered ones", func(t *testing.T) {
		d := f.createItem(t, "page")
		require.NoError(t, rel.AddEdge(ctx, post, d))

		ids, err := rel.RelatedIDs(ctx, post, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{c, a, b, d}, ids)
	})

	t.Run("each anchor owns its own order", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, a, true)
		require.NoError(t, err)
		// No order has been saved under a, so post carries order 0.
		assert.Equal(t, []int64{post}, ids)
	})

	t.Run("empty order list is a no-op", func(t *testing.T) {
		require.NoError(t, rel.SaveSortOrder(ctx, post, nil))
		ids, err := rel.RelatedIDs(ctx, post, true)
		require.NoError(t, err)
		assert.NotEmpty(t, ids)
	})

	t.Run("ordering edges that were never added creates them", func(t *testing.T) {
		post2 := f.createItem(t, "post")
		e := f.createItem(t, "page")
		require.NoError(t, rel.SaveSortOrder(ctx, post2, []int64{e}))

		ids, err := rel.RelatedIDs(ctx, post2, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{e}, ids)

		// The mirror row exists too.
		ids, err = rel.RelatedIDs(ctx, e, false)
		require.NoError(t, err)
		assert.Contains(t, ids, post2)
	})
}

func TestItemToItemReplaceEdges(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToItem("post", "page", "sorted", Options{FromSortable: true})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	a := f.createItem(t, "page")
	b := f.createItem(t, "page")
	c := f.createItem(t, "page")

	require.NoError(t, rel.AddEdge(ctx, post, a))
	require.NoError(t, rel.AddEdge(ctx, post, b))
	require.NoError(t, rel.SaveSortOrder(ctx, post, []int64{b, a}))

	t.Run("grows and shrinks to the exact set", func(t *testing.T) {
		require.NoError(t, rel.ReplaceEdges(ctx, post, []int64{a, b, c}))
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{a, b, c}, ids)

		require.NoError(t, rel.ReplaceEdges(ctx, post, []int64{c}))
		ids, err = rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{c}, ids)

		// Removed edges are gone from the far side as well.
		ids, err = rel.RelatedIDs(ctx, a, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, rel.ReplaceEdges(ctx, post, []int64{c}))
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{c}, ids)
	})
}

func TestItemToItemReplacePreservesSurvivingOrder(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToItem("post", "page", "sorted", Options{FromSortable: true})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	a := f.createItem(t, "page")
	b := f.createItem(t, "page")
	c := f.createItem(t, "page")

	require.NoError(t, rel.AddEdge(ctx, post, a))
	require.NoError(t, rel.AddEdge(ctx, post, b))
	require.NoError(t, rel.SaveSortOrder(ctx, post, []int64{b, a}))

	// Keep a and b, add c. The stored orders of a and b survive and the
	// new edge trails with order 0.
	require.NoError(t, rel.ReplaceEdges(ctx, post, []int64{a, b, c}))

	ids, err := rel.RelatedIDs(ctx, post, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{b, a, c}, ids)
}

func TestItemToItemSelfRelationshipEdges(t *testing.T) {
	f := setupDBFixture(t, "post")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToItem("post", "post", "siblings", Options{})
	require.NoError(t, err)

	p1 := f.createItem(t, "post")
	p2 := f.createItem(t, "post")

	require.NoError(t, rel.AddEdge(ctx, p1, p2))

	ids, err := rel.RelatedIDs(ctx, p1, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2}, ids)

	ids, err = rel.RelatedIDs(ctx, p2, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{p1}, ids)
}

func TestItemToActorEdges(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	rel, err := f.reg.DefineItemToActor("post", "owners", Options{FromSortable: true, ToSortable: true})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	page := f.createItem(t, "page")
	u1 := f.createActor(t, "u1")
	u2 := f.createActor(t, "u2")

	require.NoError(t, rel.AddEdge(ctx, post, u1))
	require.NoError(t, rel.AddEdge(ctx, post, u2))

	t.Run("item anchor returns actors", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.ElementsMatch(t, []int64{u1, u2}, ids)
	})

	t.Run("actor anchor returns items", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, u1, false)
		require.NoError(t, err)
		assert.Equal(t, []int64{post}, ids)
	})

	t.Run("item of a foreign kind resolves empty", func(t *testing.T) {
		ids, err := rel.RelatedIDs(ctx, page, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("item anchor orders actors", func(t *testing.T) {
		require.NoError(t, rel.SaveSortOrder(ctx, post, []int64{u2, u1}))
		ids, err := rel.RelatedIDs(ctx, post, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{u2, u1}, ids)
	})

	t.Run("actor anchor orders items independently", func(t *testing.T) {
		post2 := f.createItem(t, "post")
		require.NoError(t, rel.AddEdge(ctx, post2, u1))

		require.NoError(t, rel.SaveSortOrder(ctx, u1, []int64{post2, post}))
		ids, err := rel.RelatedIDs(ctx, u1, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{post2, post}, ids)

		// The per-item actor order set above is untouched.
		ids, err = rel.RelatedIDs(ctx, post, true)
		require.NoError(t, err)
		assert.Equal(t, []int64{u2, u1}, ids)
	})

	t.Run("replace from the actor side", func(t *testing.T) {
		require.NoError(t, rel.ReplaceEdges(ctx, u2, nil))
		ids, err := rel.RelatedIDs(ctx, u2, false)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.NotContains(t, ids, u2)
	})

	t.Run("delete edge", func(t *testing.T) {
		require.NoError(t, rel.DeleteEdge(ctx, post, u1))
		ids, err := rel.RelatedIDs(ctx, post, false)
		require.NoError(t, err)
		assert.NotContains(t, ids, u1)
	})
}

func TestCleanupPurgesEdgesOnDelete(t *testing.T) {
	f := setupDBFixture(t, "post", "page")
	ctx := context.Background()

	RegisterCleanup(f.cat, f.tables)

	itemRel, err := f.reg.DefineItemToItem("post", "page", "linked", Options{})
	require.NoError(t, err)
	actorRel, err := f.reg.DefineItemToActor("post", "owners", Options{})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	page := f.createItem(t, "page")
	actor := f.createActor(t, "u1")

	require.NoError(t, itemRel.AddEdge(ctx, post, page))
	require.NoError(t, actorRel.AddEdge(ctx, post, actor))

	t.Run("deleting an item purges every edge it touches", func(t *testing.T) {
		require.NoError(t, f.cat.DeleteItem(ctx, post))

		ids, err := itemRel.RelatedIDs(ctx, page, false)
		require.NoError(t, err)
		assert.Empty(t, ids)

		ids, err = actorRel.RelatedIDs(ctx, actor, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("deleting an actor purges its edges", func(t *testing.T) {
		post2 := f.createItem(t, "post")
		require.NoError(t, actorRel.AddEdge(ctx, post2, actor))

		require.NoError(t, f.cat.DeleteActor(ctx, actor))

		ids, err := actorRel.RelatedIDs(ctx, post2, false)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestRelatedItemIDsByNameSpansKinds(t *testing.T) {
	f := setupDBFixture(t, "post", "page", "tag")
	ctx := context.Background()

	pageRel, err := f.reg.DefineItemToItem("post", "page", "linked", Options{})
	require.NoError(t, err)
	tagRel, err := f.reg.DefineItemToItem("post", "tag", "linked", Options{})
	require.NoError(t, err)

	post := f.createItem(t, "post")
	page := f.createItem(t, "page")
	tag := f.createItem(t, "tag")

	require.NoError(t, pageRel.AddEdge(ctx, post, page))
	require.NoError(t, tagRel.AddEdge(ctx, post, tag))

	// Each relationship only sees its own kind pair.
	ids, err := pageRel.RelatedIDs(ctx, post, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{page}, ids)

	// The name-scoped read returns the union.
	ids, err = f.tables.RelatedItemIDsByName(ctx, post, "linked")
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{page, tag}, ids)
}

func TestUpgradeSchemaIsIdempotent(t *testing.T) {
	f := setupDBFixture(t, "post")
	ctx := context.Background()

	// Setup already upgraded once; repeat runs must not fail.
	require.NoError(t, f.tables.UpgradeSchema(ctx))
	require.NoError(t, f.tables.UpgradeSchema(ctx))
}
