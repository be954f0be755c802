package metrics

import "go.uber.org/fx"

// Module provides the application metrics on the default registry.
var Module = fx.Module("metrics",
	fx.Provide(NewDefault),
)
