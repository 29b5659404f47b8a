package app

import (
	"go.uber.org/fx"

	"github.com/constructflow/constructflow/internal/cache"
	"github.com/constructflow/constructflow/internal/config"
	"github.com/constructflow/constructflow/internal/database"
	"github.com/constructflow/constructflow/internal/logger"
	"github.com/constructflow/constructflow/internal/messaging"
	"github.com/constructflow/constructflow/internal/observability"
	repositoryequipment "github.com/constructflow/constructflow/internal/repository/equipment"
	repositoryinventory "github.com/constructflow/constructflow/internal/repository/inventory"
	repositoryprocurement "github.com/constructflow/constructflow/internal/repository/procurement"
	grpcserver "github.com/constructflow/constructflow/internal/server/grpc"
	httpserver "github.com/constructflow/constructflow/internal/server/http"
	serviceapproval "github.com/constructflow/constructflow/internal/service/approval"
	serviceequipment "github.com/constructflow/constructflow/internal/service/equipment"
	serviceinventory "github.com/constructflow/constructflow/internal/service/inventory"
	serviceprocurement "github.com/constructflow/constructflow/internal/service/procurement"
	transporthttp "github.com/constructflow/constructflow/internal/transport/http"
	"github.com/constructflow/constructflow/internal/worker"
	workerprocurement "github.com/constructflow/constructflow/internal/worker/procurement"
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	repositoryprocurement.Module,
	repositoryinventory.Module,
	repositoryequipment.Module,
	serviceprocurement.Module,
	serviceapproval.Module,
	serviceinventory.Module,
	serviceequipment.Module,
)

// HTTP wires the HTTP and gRPC transports on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerprocurement.Module,
)

// Module is the default application wiring.
var Module = HTTP
