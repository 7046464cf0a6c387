// Package catalog is the host stand-in the relationship engine hangs off:
// a registered set of content kinds, the tables items and actors live in,
// and hard-delete lifecycle events other packages subscribe to.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/contentlink/contentlink/pkg/logger"
)

// DeleteListener is invoked synchronously after a row has been hard
// deleted. Listener errors abort the remaining listeners and surface to
// the caller.
type DeleteListener func(ctx context.Context, id int64) error

// Service is the kind catalog plus item/actor lifecycle.
type Service struct {
	repo *Repository
	log  *slog.Logger

	mu             sync.RWMutex
	kinds          map[string]struct{}
	onItemDeleted  []DeleteListener
	onActorDeleted []DeleteListener
}

// NewService creates the catalog service.
func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		log:   log.With(logger.Scope("catalog")),
		kinds: make(map[string]struct{}),
	}
}

// RegisterKind adds a content kind to the catalog. Registering the same
// kind twice is a no-op.
func (s *Service) RegisterKind(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kinds[kind]; !ok {
		s.kinds[kind] = struct{}{}
		s.log.Debug("kind registered", slog.String("kind", kind))
	}
}

// KindExists reports whether a content kind has been registered.
func (s *Service) KindExists(kind string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.kinds[kind]
	return ok
}

// Kinds returns the registered kinds.
func (s *Service) Kinds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		out = append(out, k)
	}
	return out
}

// ItemKind returns the kind of a content item, or "" when the item does
// not exist.
func (s *Service) ItemKind(ctx context.Context, id int64) (string, error) {
	return s.repo.ItemKind(ctx, id)
}

// ActorExists reports whether an actor exists.
func (s *Service) ActorExists(ctx context.Context, id int64) (bool, error) {
	return s.repo.ActorExists(ctx, id)
}

// CreateItem inserts a content item after validating its kind.
func (s *Service) CreateItem(ctx context.Context, item *ContentItem) error {
	if !s.KindExists(item.Kind) {
		return fmt.Errorf("unregistered content kind %q", item.Kind)
	}
	return s.repo.CreateItem(ctx, item)
}

// CreateActor inserts an actor.
func (s *Service) CreateActor(ctx context.Context, actor *Actor) error {
	return s.repo.CreateActor(ctx, actor)
}

// GetItem fetches a content item by ID.
func (s *Service) GetItem(ctx context.Context, id int64) (*ContentItem, error) {
	return s.repo.GetItem(ctx, id)
}

// OnItemDeleted subscribes to content item hard deletes.
func (s *Service) OnItemDeleted(fn DeleteListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onItemDeleted = append(s.onItemDeleted, fn)
}

// OnActorDeleted subscribes to actor hard deletes.
func (s *Service) OnActorDeleted(fn DeleteListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onActorDeleted = append(s.onActorDeleted, fn)
}

// DeleteItem hard deletes a content item and notifies listeners.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	if err := s.repo.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.mu.RLock()
	listeners := append([]DeleteListener(nil), s.onItemDeleted...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		if err := fn(ctx, id); err != nil {
			return fmt.Errorf("item delete listener: %w", err)
		}
	}
	return nil
}

// DeleteActor hard deletes an actor and notifies listeners.
func (s *Service) DeleteActor(ctx context.Context, id int64) error {
	if err := s.repo.DeleteActor(ctx, id); err != nil {
		return err
	}
	s.mu.RLock()
	listeners := append([]DeleteListener(nil), s.onActorDeleted...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		if err := fn(ctx, id); err != nil {
			return fmt.Errorf("actor delete listener: %w", err)
		}
	}
	return nil
}
