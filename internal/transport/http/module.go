package http

import (
	"go.uber.org/fx"

	equipmenttransport "github.com/constructflow/constructflow/internal/transport/http/equipment"
	inventorytransport "github.com/constructflow/constructflow/internal/transport/http/inventory"
	procurementtransport "github.com/constructflow/constructflow/internal/transport/http/procurement"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	procurementtransport.Module,
	inventorytransport.Module,
	equipmenttransport.Module,
)
