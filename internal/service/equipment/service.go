package equipment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/entity"
	repo "github.com/constructflow/constructflow/internal/repository/equipment"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/constructflow/constructflow/service/equipment")

// Fleet is the slice of the equipment repository the service reads from.
type Fleet interface {
	MaintenanceDue(ctx context.Context, asOf time.Time) ([]*entity.Equipment, error)
	MaintenanceDueCount(ctx context.Context, asOf time.Time) (int, error)
	CountByStatus(ctx context.Context) (map[entity.EquipmentStatus]int, error)
}

// Service exposes fleet maintenance and status aggregations.
type Service struct {
	fleet  Fleet
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
	return &Service{fleet: p.Repository, logger: p.Logger}
}

// MaintenanceDue lists active equipment overdue for maintenance.
func (s *Service) MaintenanceDue(ctx context.Context) ([]*entity.Equipment, error) {
	ctx, span := serviceTracer.Start(ctx, "EquipmentService.MaintenanceDue")
	defer span.End()

	fleet, err := s.fleet.MaintenanceDue(ctx, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list maintenance due equipment", errorbank.WithCause(err))
	}
	return fleet, nil
}

// StatusSummary reports fleet size per status alongside the overdue count.
func (s *Service) StatusSummary(ctx context.Context) (map[entity.EquipmentStatus]int, int, error) {
	ctx, span := serviceTracer.Start(ctx, "EquipmentService.StatusSummary")
	defer span.End()

	counts, err := s.fleet.CountByStatus(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, 0, errorbank.Internal("failed to summarize equipment status", errorbank.WithCause(err))
	}
	due, err := s.fleet.MaintenanceDueCount(ctx, time.Now().UTC())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, 0, errorbank.Internal("failed to count maintenance due equipment", errorbank.WithCause(err))
	}
	return counts, due, nil
}
