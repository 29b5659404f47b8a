package inventory

import "go.uber.org/fx"

// Module provides the inventory repository to Fx.
var Module = fx.Provide(NewRepository)
