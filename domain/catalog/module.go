package catalog

import (
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(
		NewRepository,
		NewService,
	),
)
