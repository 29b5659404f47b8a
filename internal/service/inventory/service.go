package inventory

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/entity"
	repo "github.com/constructflow/constructflow/internal/repository/inventory"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/constructflow/constructflow/service/inventory")

// Stock is the slice of the inventory repository the service reads from.
type Stock interface {
	LowStock(ctx context.Context, projectID string, ascending bool) ([]*entity.Material, error)
	LowStockCount(ctx context.Context, projectID string) (int, error)
}

// Service exposes stock-level aggregations over materials.
type Service struct {
	stock  Stock
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{stock: p.Repository, logger: p.Logger}
}

// LowStock lists materials at or below their reorder level. projectID is
// optional; ascending=true lists the emptiest shelves first.
func (s *Service) LowStock(ctx context.Context, projectID string, ascending bool) ([]*entity.Material, error) {
	ctx, span := serviceTracer.Start(ctx, "InventoryService.LowStock", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	materials, err := s.stock.LowStock(ctx, projectID, ascending)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list low stock materials", errorbank.WithCause(err))
	}
	return materials, nil
}

// LowStockCount counts materials at or below their reorder level.
func (s *Service) LowStockCount(ctx context.Context, projectID string) (int, error) {
	ctx, span := serviceTracer.Start(ctx, "InventoryService.LowStockCount", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	count, err := s.stock.LowStockCount(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return 0, errorbank.Internal("failed to count low stock materials", errorbank.WithCause(err))
	}
	return count, nil
}
