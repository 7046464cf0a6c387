package queryintegration

import (
	"go.uber.org/fx"
)

var Module = fx.Module("queryintegration",
	fx.Provide(
		NewIntegration,
		NewRunner,
	),
)
