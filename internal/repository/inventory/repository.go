package inventory

import (
	"context"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/constructflow/constructflow/internal/database"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/repository/aggregate"
)

var repoTracer = otel.Tracer("github.com/constructflow/constructflow/repository/inventory")

// Repository provides read access to material stock levels.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a repository backed by the read connection.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

// LowStock lists materials at or below their reorder level, joined with
// project and supplier so callers can render reorder notifications without a
// second lookup. An empty projectID spans all projects; ascending orders by
// quantity on hand from the emptiest shelf up.
func (r *Repository) LowStock(ctx context.Context, projectID string, ascending bool) ([]*entity.Material, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.LowStock", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	q := r.reader.NewSelect().Model((*entity.Material)(nil)).
		Relation("Project").
		Relation("Supplier").
		Where("material.quantity_on_hand <= material.reorder_level")
	if projectID != "" {
		q = q.Where("material.project_id = ?", projectID)
	}
	if ascending {
		q = q.OrderExpr("material.quantity_on_hand ASC")
	} else {
		q = q.OrderExpr("material.quantity_on_hand DESC")
	}

	var materials []*entity.Material
	if err := q.Scan(ctx, &materials); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return materials, nil
}

// LowStockCount counts materials at or below their reorder level.
func (r *Repository) LowStockCount(ctx context.Context, projectID string) (int, error) {
	ctx, span := repoTracer.Start(ctx, "InventoryRepository.LowStockCount", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	filters := []aggregate.Filter{
		aggregate.Where("quantity_on_hand <= reorder_level"),
	}
	if projectID != "" {
		filters = append(filters, aggregate.Where("project_id = ?", projectID))
	}

	count, err := aggregate.Count(ctx, r.reader, (*entity.Material)(nil), filters...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, err
	}
	return count, nil
}
