// Package relationships implements many-to-many relationships between
// content items and between items and actors: definition registry, join
// table storage, and edge operations.
package relationships

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/contentlink/contentlink/pkg/apperror"
	"github.com/contentlink/contentlink/pkg/logger"
)

// Domain errors.
var (
	ErrDuplicateRelationship  = apperror.New(http.StatusConflict, "duplicate_relationship", "Relationship already defined")
	ErrUnknownParticipantKind = apperror.New(http.StatusBadRequest, "unknown_participant_kind", "Unknown content kind")
)

// KindCatalog resolves relationship participants against the host.
type KindCatalog interface {
	KindExists(kind string) bool
	ItemKind(ctx context.Context, id int64) (string, error)
	ActorExists(ctx context.Context, id int64) (bool, error)
}

// ActorParticipant is the reserved participant label for the actor side
// of item-to-actor relationships.
const ActorParticipant = "actor"

// Key builds the canonical registry key for a relationship between two
// participant labels. The pair is sorted first, so Key(a, b, name) and
// Key(b, a, name) are identical.
func Key(a, b, name string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join([]string{pair[0], pair[1], name}, "_")
}

// Options controls optional relationship behavior.
type Options struct {
	// FromSortable enables a stored relationship order on the "from"
	// side (for item-to-actor: order of actors under an item).
	FromSortable bool

	// ToSortable enables a stored relationship order on the "to" side
	// (for item-to-actor: order of items under an actor).
	ToSortable bool
}

// Registry holds all defined relationships, keyed canonically.
// Definitions happen at startup; lookups dominate afterwards.
type Registry struct {
	log     *slog.Logger
	catalog KindCatalog
	tables  *Tables

	itemToItem  map[string]*ItemToItem
	itemToActor map[string]*ItemToActor
}

// NewRegistry creates an empty relationship registry.
func NewRegistry(catalog KindCatalog, tables *Tables, log *slog.Logger) *Registry {
	return &Registry{
		log:         log.With(logger.Scope("relationships.registry")),
		catalog:     catalog,
		tables:      tables,
		itemToItem:  make(map[string]*ItemToItem),
		itemToActor: make(map[string]*ItemToActor),
	}
}

// DefineItemToItem registers a relationship between two content kinds.
// The kinds may be equal (self relationships are valid). Defining the
// same (pair, name) twice in either participant order fails with
// ErrDuplicateRelationship.
func (r *Registry) DefineItemToItem(from, to, name string, opts Options) (*ItemToItem, error) {
	if !r.catalog.KindExists(from) {
		return nil, ErrUnknownParticipantKind.WithMessage("unknown content kind '" + from + "'")
	}
	if !r.catalog.KindExists(to) {
		return nil, ErrUnknownParticipantKind.WithMessage("unknown content kind '" + to + "'")
	}

	key := Key(from, to, name)
	if _, ok := r.itemToItem[key]; ok {
		return nil, ErrDuplicateRelationship.WithMessage("relationship '" + key + "' already defined")
	}

	rel := newItemToItem(from, to, name, opts, r.tables, r.catalog)
	r.itemToItem[key] = rel

	r.log.Debug("item-to-item relationship defined",
		slog.String("key", key),
		slog.String("from", from),
		slog.String("to", to),
	)
	return rel, nil
}

// DefineItemToActor registers a relationship between a content kind and
// actors. Duplicate (kind, name) definitions fail with
// ErrDuplicateRelationship.
func (r *Registry) DefineItemToActor(itemKind, name string, opts Options) (*ItemToActor, error) {
	if !r.catalog.KindExists(itemKind) {
		return nil, ErrUnknownParticipantKind.WithMessage("unknown content kind '" + itemKind + "'")
	}

	key := Key(itemKind, ActorParticipant, name)
	if _, ok := r.itemToActor[key]; ok {
		return nil, ErrDuplicateRelationship.WithMessage("relationship '" + key + "' already defined")
	}

	rel := newItemToActor(itemKind, name, opts, r.tables, r.catalog)
	r.itemToActor[key] = rel

	r.log.Debug("item-to-actor relationship defined",
		slog.String("key", key),
		slog.String("item_kind", itemKind),
	)
	return rel, nil
}

// ItemToItemByParticipants looks up an item-to-item relationship by its
// participant kinds and name, in either order. Returns nil when absent.
func (r *Registry) ItemToItemByParticipants(a, b, name string) *ItemToItem {
	return r.itemToItem[Key(a, b, name)]
}

// ItemToActorByParticipants looks up an item-to-actor relationship by
// its item kind and name. Returns nil when absent.
func (r *Registry) ItemToActorByParticipants(itemKind, name string) *ItemToActor {
	return r.itemToActor[Key(itemKind, ActorParticipant, name)]
}

// AllItemToItem returns all defined item-to-item relationships.
func (r *Registry) AllItemToItem() []*ItemToItem {
	out := make([]*ItemToItem, 0, len(r.itemToItem))
	for _, rel := range r.itemToItem {
		out = append(out, rel)
	}
	return out
}

// AllItemToActor returns all defined item-to-actor relationships.
func (r *Registry) AllItemToActor() []*ItemToActor {
	out := make([]*ItemToActor, 0, len(r.itemToActor))
	for _, rel := range r.itemToActor {
		out = append(out, rel)
	}
	return out
}
