package queryintegration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/uptrace/bun"

	"github.com/contentlink/contentlink/pkg/apperror"
	"github.com/contentlink/contentlink/pkg/logger"
)

// Runner is the host-engine stand-in: it splices compiled fragments
// into full queries over the stand-in tables and returns matching IDs.
// Real host integrations splice Fragments into their own SQL instead.
type Runner struct {
	db          bun.IDB
	integration *Integration
	log         *slog.Logger
}

// NewRunner creates a query runner.
func NewRunner(db bun.IDB, integration *Integration, log *slog.Logger) *Runner {
	return &Runner{
		db:          db,
		integration: integration,
		log:         log.With(logger.Scope("queryintegration.runner")),
	}
}

// QueryItemIDs runs an item query and returns the matching item IDs.
func (r *Runner) QueryItemIDs(ctx context.Context, args ItemQueryArgs) ([]int64, error) {
	frags, err := r.integration.ApplyToItemQuery(ctx, args)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ci.id FROM content_items AS ci")
	sb.WriteString(frags.Join)
	sb.WriteString(" WHERE 1=1")

	var queryArgs []any
	if args.Kind != "" {
		sb.WriteString(" AND ci.kind = ?")
		queryArgs = append(queryArgs, args.Kind)
	}
	sb.WriteString(frags.Where)
	queryArgs = append(queryArgs, frags.WhereArgs...)

	if frags.GroupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(frags.GroupBy)
	}
	if frags.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(frags.OrderBy)
	}
	if args.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", args.Limit))
	}

	var ids []int64
	if err := r.db.NewRaw(sb.String(), queryArgs...).Scan(ctx, &ids); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("run item query: %w", err))
	}

	r.log.Debug("item query",
		slog.String("sql", sb.String()),
		slog.Int("results", len(ids)),
	)
	return ids, nil
}

// QueryActorIDs runs an actor query and returns the matching actor IDs.
func (r *Runner) QueryActorIDs(ctx context.Context, args ActorQueryArgs) ([]int64, error) {
	frags, err := r.integration.ApplyToActorQuery(ctx, args)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT a.id FROM actors AS a")
	sb.WriteString(frags.Join)
	sb.WriteString(" WHERE 1=1")
	sb.WriteString(frags.Where)

	queryArgs := append([]any(nil), frags.WhereArgs...)

	if frags.GroupBy != "" {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(frags.GroupBy)
	}
	if frags.OrderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(frags.OrderBy)
	}
	if args.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT %d", args.Limit))
	}

	var ids []int64
	if err := r.db.NewRaw(sb.String(), queryArgs...).Scan(ctx, &ids); err != nil {
		return nil, apperror.ErrDatabase.WithInternal(fmt.Errorf("run actor query: %w", err))
	}

	r.log.Debug("actor query",
		slog.String("sql", sb.String()),
		slog.Int("results", len(ids)),
	)
	return ids, nil
}
