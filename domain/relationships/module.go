package relationships

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/contentlink/contentlink/domain/catalog"
)

var Module = fx.Module("relationships",
	fx.Provide(
		NewTables,
		func(cat *catalog.Service, tables *Tables, log *slog.Logger) *Registry {
			return NewRegistry(cat, tables, log)
		},
	),
	fx.Invoke(
		RegisterCleanup,
		func(lc fx.Lifecycle, tables *Tables) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return tables.UpgradeSchema(ctx)
				},
			})
		},
	),
)
