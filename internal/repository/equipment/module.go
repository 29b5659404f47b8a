package equipment

import "go.uber.org/fx"

// Module provides the equipment repository to Fx.
var Module = fx.Provide(NewRepository)
