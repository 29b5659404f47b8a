package approval

import "go.uber.org/fx"

// Module provides the approval service to Fx.
var Module = fx.Provide(NewService)
