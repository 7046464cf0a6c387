// Package main provides the entry point for the contentlink server: a
// standalone content-relationship service exposing many-to-many
// relationships between content items and actors.
package main

import (
	"context"
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/contentlink/contentlink/domain/catalog"
	"github.com/contentlink/contentlink/domain/health"
	"github.com/contentlink/contentlink/domain/queryintegration"
	"github.com/contentlink/contentlink/domain/relationships"
	"github.com/contentlink/contentlink/domain/relquery"
	"github.com/contentlink/contentlink/internal/config"
	"github.com/contentlink/contentlink/internal/database"
	"github.com/contentlink/contentlink/internal/migrate"
	"github.com/contentlink/contentlink/internal/server"
	"github.com/contentlink/contentlink/pkg/logger"
)

func main() {
	// Load .env if present (for local development). Load() won't
	// overwrite existing vars.
	_ = godotenv.Load(".env")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),

		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		migrate.Module,
		server.Module,

		// Host stand-in migrations run before the relationship schema
		// upgrade registered by the relationships module.
		fx.Invoke(func(lc fx.Lifecycle, m *migrate.Migrator) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return m.Up(ctx)
				},
			})
		}),

		// Domain modules
		health.Module,
		catalog.Module,
		relationships.Module,
		relquery.Module,
		queryintegration.Module,
	).Run()
}
