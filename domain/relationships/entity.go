package relationships

import (
	"github.com/uptrace/bun"
)

// Join table names. The relquery compiler references these when
// building join fragments.
const (
	TableItemToItem  = "contentlink_item_to_item"
	TableItemToActor = "contentlink_item_to_actor"
)

// ItemToItemEdge is one direction of an item-to-item relationship edge.
// Edges are stored mirrored: relating (a, b) writes both (a, b) and
// (b, a), so reads anchor on id2 and return id1 regardless of which
// participant anchors the query. The order column on (id1, id2) is the
// position of id1 as sorted under id2.
type ItemToItemEdge struct {
	bun.BaseModel `bun:"table:contentlink_item_to_item,alias:i2i"`

	ID1   int64  `bun:"id1,pk"`
	ID2   int64  `bun:"id2,pk"`
	Name  string `bun:"name,pk"`
	Order int    `bun:"order,default:0"`
}

// ItemToActorEdge is an item-to-actor relationship edge. A single row
// carries both participants, with one stored order per direction.
type ItemToActorEdge struct {
	bun.BaseModel `bun:"table:contentlink_item_to_actor,alias:i2a"`

	ItemID     int64  `bun:"item_id,pk"`
	ActorID    int64  `bun:"actor_id,pk"`
	Name       string `bun:"name,pk"`
	ActorOrder int    `bun:"actor_order,default:0"`
	ItemOrder  int    `bun:"item_order,default:0"`
}
