package relationships

import (
	"github.com/contentlink/contentlink/domain/catalog"
)

// RegisterCleanup subscribes the join tables to catalog hard-delete
// events so edges never outlive their participants. Deletion is
// immediate and spans every relationship name.
func RegisterCleanup(cat *catalog.Service, tables *Tables) {
	cat.OnItemDeleted(tables.PurgeItemEdges)
	cat.OnActorDeleted(tables.PurgeActorEdges)
}
