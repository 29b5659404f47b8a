package procurement

import "go.uber.org/fx"

// Module provides the procurement repository to Fx.
var Module = fx.Provide(NewRepository)
