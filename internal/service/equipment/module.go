package equipment

import "go.uber.org/fx"

// Module provides the equipment service to Fx.
var Module = fx.Provide(NewService)
