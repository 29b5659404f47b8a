package procurement

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/constructflow/constructflow/internal/database"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/repository/aggregate"
)

var repoTracer = otel.Tracer("github.com/constructflow/constructflow/repository/procurement")

// ErrNotFound is returned when a purchase order is missing.
var ErrNotFound = errors.New("purchase order not found")

// ErrStatusConflict is returned when a conditional status update matched the
// order id but not its expected status, meaning the row changed underneath
// the caller.
var ErrStatusConflict = errors.New("purchase order status changed concurrently")

// Repository encapsulates read/write access for purchase orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// CreateWithItems persists a purchase order and its line items in a single
// transaction. The caller is expected to have computed Subtotal for each item
// and TotalAmount for the order; inserting both sides together keeps the
// total consistent with the items.
func (r *Repository) CreateWithItems(ctx context.Context, po *entity.PurchaseOrder, items []*entity.POItem) error {
	if po == nil {
		return errors.New("nil purchase order")
	}
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.CreateWithItems", trace.WithAttributes(
		attribute.String("po.number", po.PONumber),
		attribute.Int("po.items", len(items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(po).Exec(ctx); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&items).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches a purchase order by primary key using the read replica
// when available.
func (r *Repository) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.GetByID", trace.WithAttributes(attribute.String("po.id", id)))
	defer span.End()

	po := new(entity.PurchaseOrder)
	err := r.reader.NewSelect().Model(po).Where("purchase_order.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return po, nil
}

// GetWithProject fetches a purchase order together with its parent project,
// giving the approval flow the budget ceiling in one round trip.
func (r *Repository) GetWithProject(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.GetWithProject", trace.WithAttributes(attribute.String("po.id", id)))
	defer span.End()

	po := new(entity.PurchaseOrder)
	err := r.reader.NewSelect().Model(po).
		Relation("Project").
		Where("purchase_order.id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return po, nil
}

// ApprovedTotal sums total_amount over the project's approved purchase
// orders. A project with no approved orders totals zero.
func (r *Repository) ApprovedTotal(ctx context.Context, projectID string) (decimal.Decimal, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.ApprovedTotal", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	total, err := aggregate.SumDecimal(ctx, r.reader, (*entity.PurchaseOrder)(nil), "total_amount",
		aggregate.Where("project_id = ?", projectID),
		aggregate.Where("status = ?", entity.POStatusApproved),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sum failed")
		return decimal.Zero, err
	}
	return total, nil
}

// MonthlySpend sums approved spend with an order date inside the month
// starting at monthStart. An empty projectID sums across all projects.
func (r *Repository) MonthlySpend(ctx context.Context, projectID string, monthStart time.Time) (decimal.Decimal, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.MonthlySpend", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("month", monthStart.Format("2006-01")),
	))
	defer span.End()

	filters := []aggregate.Filter{
		aggregate.Where("status = ?", entity.POStatusApproved),
		aggregate.Where("order_date >= ?", monthStart),
		aggregate.Where("order_date < ?", monthStart.AddDate(0, 1, 0)),
	}
	if projectID != "" {
		filters = append(filters, aggregate.Where("project_id = ?", projectID))
	}

	total, err := aggregate.SumDecimal(ctx, r.reader, (*entity.PurchaseOrder)(nil), "total_amount", filters...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sum failed")
		return decimal.Zero, err
	}
	return total, nil
}

// ListRunning returns the newest purchase orders that are still in flight
// (pending approval, approved, or ordered).
func (r *Repository) ListRunning(ctx context.Context, limit int) ([]*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.ListRunning")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}

	var pos []*entity.PurchaseOrder
	err := r.reader.NewSelect().Model(&pos).
		Relation("Supplier").
		Where("purchase_order.status IN (?)", bun.In([]entity.POStatus{
			entity.POStatusPendingApproval,
			entity.POStatusApproved,
			entity.POStatusOrdered,
		})).
		OrderExpr("purchase_order.created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return pos, nil
}

// ApproveIfPending performs the approval commit as a conditional write: the
// approval fields are set only when the order is still pending approval at
// write time, so two racing approvals cannot both land. When the condition
// fails it distinguishes a missing order from one whose status moved
// concurrently.
func (r *Repository) ApproveIfPending(ctx context.Context, id, approverID string, at time.Time) (*entity.PurchaseOrder, error) {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.ApproveIfPending", trace.WithAttributes(
		attribute.String("po.id", id),
		attribute.String("po.approver", approverID),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.PurchaseOrder)(nil)).
		Set("status = ?", entity.POStatusApproved).
		Set("approved_by = ?", approverID).
		Set("approved_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", entity.POStatusPendingApproval).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if affected == 0 {
		// The guard condition no longer holds. Re-fetch to tell the caller
		// whether the order vanished or was modified concurrently.
		if _, err := r.GetByID(ctx, id); errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		} else if err != nil {
			return nil, err
		}
		span.SetStatus(codes.Error, "status conflict")
		return nil, ErrStatusConflict
	}

	return r.GetByID(ctx, id)
}

// UpdateStatusIfCurrent moves a purchase order from one status to another
// with the same conditional-write shape as approval.
func (r *Repository) UpdateStatusIfCurrent(ctx context.Context, id string, current, next entity.POStatus, at time.Time) error {
	ctx, span := repoTracer.Start(ctx, "ProcurementRepository.UpdateStatusIfCurrent", trace.WithAttributes(
		attribute.String("po.id", id),
		attribute.String("po.status.current", string(current)),
		attribute.String("po.status.next", string(next)),
	))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.PurchaseOrder)(nil)).
		Set("status = ?", next).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", current).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return nil
}
