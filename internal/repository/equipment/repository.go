package equipment

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/constructflow/constructflow/internal/database"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/repository/aggregate"
)

var repoTracer = otel.Tracer("github.com/constructflow/constructflow/repository/equipment")

// Repository provides read access to the equipment fleet.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a repository backed by the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// MaintenanceDue lists equipment whose next maintenance date is on or before
// asOf, soonest first. Retired equipment is excluded.
func (r *Repository) MaintenanceDue(ctx context.Context, asOf time.Time) ([]*entity.Equipment, error) {
	ctx, span := repoTracer.Start(ctx, "EquipmentRepository.MaintenanceDue", trace.WithAttributes(attribute.String("as_of", asOf.Format(time.DateOnly))))
	defer span.End()

	var fleet []*entity.Equipment
	err := r.reader.NewSelect().Model(&fleet).
		Relation("CurrentProject").
		Where("equipment.next_maintenance_date IS NOT NULL").
		Where("equipment.next_maintenance_date <= ?", asOf).
		Where("equipment.status != ?", entity.EquipmentRetired).
		OrderExpr("equipment.next_maintenance_date ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return fleet, nil
}

// MaintenanceDueCount counts equipment overdue for maintenance as of asOf.
func (r *Repository) MaintenanceDueCount(ctx context.Context, asOf time.Time) (int, error) {
	ctx, span := repoTracer.Start(ctx, "EquipmentRepository.MaintenanceDueCount")
	defer span.End()

	count, err := aggregate.Count(ctx, r.reader, (*entity.Equipment)(nil),
		aggregate.Where("next_maintenance_date IS NOT NULL"),
		aggregate.Where("next_maintenance_date <= ?", asOf),
		aggregate.Where("status != ?", entity.EquipmentRetired),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}

// CountByStatus returns how many pieces of equipment sit in each status.
func (r *Repository) CountByStatus(ctx context.Context) (map[entity.EquipmentStatus]int, error) {
	ctx, span := repoTracer.Start(ctx, "EquipmentRepository.CountByStatus")
	defer span.End()

	var rows []struct {
		Status entity.EquipmentStatus `bun:"status"`
		Count  int                    `bun:"count"`
	}
	err := r.reader.NewSelect().Model((*entity.Equipment)(nil)).
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}

	counts := make(map[entity.EquipmentStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
