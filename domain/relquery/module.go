package relquery

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/contentlink/contentlink/domain/catalog"
	"github.com/contentlink/contentlink/domain/relationships"
)

var Module = fx.Module("relquery",
	fx.Provide(
		func(registry *relationships.Registry, cat *catalog.Service, log *slog.Logger) *Compiler {
			return NewCompiler(registry, cat, log)
		},
	),
)
