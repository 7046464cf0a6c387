package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"

	"github.com/contentlink/contentlink/pkg/apperror"
	"github.com/contentlink/contentlink/pkg/logger"
)

// Repository provides access to the host stand-in content and actor rows.
type Repository struct {
	db  bun.IDB
	log *slog.Logger
}

// NewRepository creates a catalog repository.
func NewRepository(db bun.IDB, log *slog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With(logger.Scope("catalog.repository")),
	}
}

// CreateItem inserts a content item and populates its ID.
func (r *Repository) CreateItem(ctx context.Context, item *ContentItem) error {
	if _, err := r.db.NewInsert().Model(item).Returning("id, created_at").Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("create content item: %w", err))
	}
	return nil
}

// GetItem fetches a content item by ID.
func (r *Repository) GetItem(ctx context.Context, id int64) (*ContentItem, error) {
	item := new(ContentItem)
	err := r.db.NewSelect().Model(item).Where("ci.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound("content item", fmt.Sprintf("%d", id))
		}
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("get content item: %w", err))
	}
	return item, nil
}

// ItemKind returns the kind of a content item, or "" when the item does
// not exist. Absence is not an error here: callers use the empty kind to
// decide whether an ID resolves at all.
func (r *Repository) ItemKind(ctx context.Context, id int64) (string, error) {
	var kind string
	err := r.db.NewSelect().
		Model((*ContentItem)(nil)).
		Column("kind").
		Where("ci.id = ?", id).
		Scan(ctx, &kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", apperror.ErrDatabase.WithInternal(fmt.Errorf("resolve item kind: %w", err))
	}
	return kind, nil
}

// DeleteItem removes a content item row. Missing rows are not an error.
func (r *Repository) DeleteItem(ctx context.Context, id int64) error {
	if _, err := r.db.NewDelete().Model((*ContentItem)(nil)).Where("ci.id = ?", id).Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("delete content item: %w", err))
	}
	return nil
}

// CreateActor inserts an actor and populates its ID.
func (r *Repository) CreateActor(ctx context.Context, actor *Actor) error {
	if _, err := r.db.NewInsert().Model(actor).Returning("id, created_at").Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("create actor: %w", err))
	}
	return nil
}

// ActorExists reports whether an actor row exists.
func (r *Repository) ActorExists(ctx context.Context, id int64) (bool, error) {
	exists, err := r.db.NewSelect().Model((*Actor)(nil)).Where("a.id = ?", id).Exists(ctx)
	if err != nil {
		return false, apperror.ErrDatabase.WithInternal(fmt.Errorf("check actor: %w", err))
	}
	return exists, nil
}

// DeleteActor removes an actor row. Missing rows are not an error.
func (r *Repository) DeleteActor(ctx context.Context, id int64) error {
	if _, err := r.db.NewDelete().Model((*Actor)(nil)).Where("a.id = ?", id).Exec(ctx); err != nil {
		return apperror.ErrDatabase.WithInternal(fmt.Errorf("delete actor: %w", err))
	}
	return nil
}
