package procurement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/cache"
	"github.com/constructflow/constructflow/internal/config"
	"github.com/constructflow/constructflow/internal/entity"
	repo "github.com/constructflow/constructflow/internal/repository/procurement"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/constructflow/constructflow/service/procurement")

// POCacheKey is the cache key for a purchase order snapshot. The approval
// service deletes this key when an approval commits.
func POCacheKey(id string) string {
	return fmt.Sprintf("po:%s", id)
}

// Store is the slice of the procurement repository the order lifecycle
// needs, separated from the concrete type so tests can supply a fake.
type Store interface {
	CreateWithItems(ctx context.Context, po *entity.PurchaseOrder, items []*entity.POItem) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	ListRunning(ctx context.Context, limit int) ([]*entity.PurchaseOrder, error)
	MonthlySpend(ctx context.Context, projectID string, monthStart time.Time) (decimal.Decimal, error)
	ApprovedTotal(ctx context.Context, projectID string) (decimal.Decimal, error)
	UpdateStatusIfCurrent(ctx context.Context, id string, current, next entity.POStatus, at time.Time) error
}

// LineItem is one requested order line. Subtotals and the order total are
// computed here, not trusted from the caller.
type LineItem struct {
	MaterialID string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
}

// CreateRequest carries everything needed to open a draft purchase order.
type CreateRequest struct {
	ProjectID        string
	SupplierID       string
	ExpectedDelivery *time.Time
	Notes            string
	CreatedBy        string
	Items            []LineItem
}

// Service encapsulates the purchase order lifecycle outside of approval:
// creation with line items, reads, and status advancement.
type Service struct {
	store    Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		store:    p.Repository,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// Create opens a draft purchase order. The order row and its line items are
// written in one transaction and the order total is the sum of the item
// subtotals, so the two can never drift apart.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*entity.PurchaseOrder, error) {
	if req.ProjectID == "" || req.SupplierID == "" {
		return nil, errorbank.BadRequest("project id and supplier id are required")
	}
	if len(req.Items) == 0 {
		return nil, errorbank.BadRequest("at least one line item is required")
	}

	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Create", trace.WithAttributes(
		attribute.String("po.project", req.ProjectID),
		attribute.Int("po.items", len(req.Items)),
	))
	defer span.End()

	now := time.Now().UTC()
	po := &entity.PurchaseOrder{
		ID:               uuid.NewString(),
		PONumber:         newPONumber(now),
		ProjectID:        req.ProjectID,
		SupplierID:       req.SupplierID,
		OrderDate:        now,
		ExpectedDelivery: req.ExpectedDelivery,
		Status:           entity.POStatusDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.Notes != "" {
		po.Notes = &req.Notes
	}
	if req.CreatedBy != "" {
		po.CreatedBy = &req.CreatedBy
	}

	items := make([]*entity.POItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		if line.Quantity.Sign() <= 0 {
			return nil, errorbank.BadRequest("line item quantity must be positive")
		}
		if line.UnitPrice.Sign() < 0 {
			return nil, errorbank.BadRequest("line item unit price must not be negative")
		}
		subtotal := line.Quantity.Mul(line.UnitPrice)
		total = total.Add(subtotal)
		item := &entity.POItem{
			ID:        uuid.NewString(),
			POID:      po.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  subtotal,
			CreatedAt: now,
		}
		if line.MaterialID != "" {
			materialID := line.MaterialID
			item.MaterialID = &materialID
		}
		items = append(items, item)
	}
	po.TotalAmount = total

	if err := s.store.CreateWithItems(ctx, po, items); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create purchase order", errorbank.WithCause(err))
	}

	po.Items = items
	if err := s.storeInCache(ctx, po); err != nil {
		if s.logger != nil {
			s.logger.Warn("purchase order cache write failed", zap.String("id", po.ID), zap.Error(err))
		}
	}
	return po, nil
}

// Get retrieves a purchase order by id, consulting cache when available.
func (s *Service) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if id == "" {
		return nil, errorbank.BadRequest("purchase order id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Get", trace.WithAttributes(attribute.String("po.id", id)))
	defer span.End()

	if po, err := s.getFromCache(ctx, id); err == nil {
		return po, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		if s.logger != nil {
			s.logger.Warn("purchase order cache read failed", zap.String("id", id), zap.Error(err))
		}
	}

	po, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("purchase order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load purchase order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, po); err != nil {
		if s.logger != nil {
			s.logger.Warn("purchase order cache write failed", zap.String("id", id), zap.Error(err))
		}
	}
	return po, nil
}

// ListRunning returns in-flight purchase orders, newest first.
func (s *Service) ListRunning(ctx context.Context, limit int) ([]*entity.PurchaseOrder, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.ListRunning")
	defer span.End()

	pos, err := s.store.ListRunning(ctx, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list purchase orders", errorbank.WithCause(err))
	}
	return pos, nil
}

// ApprovedTotal returns the sum of approved order amounts for a project.
func (s *Service) ApprovedTotal(ctx context.Context, projectID string) (decimal.Decimal, error) {
	if projectID == "" {
		return decimal.Zero, errorbank.BadRequest("project id is required")
	}
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.ApprovedTotal", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	total, err := s.store.ApprovedTotal(ctx, projectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return decimal.Zero, errorbank.Internal("failed to compute approved total", errorbank.WithCause(err))
	}
	return total, nil
}

// MonthlySpend returns approved spend for the month containing monthStart.
// monthStart is truncated to the first of its month.
func (s *Service) MonthlySpend(ctx context.Context, projectID string, monthStart time.Time) (decimal.Decimal, error) {
	ctx, span := serviceTracer.Start(ctx, "ProcurementService.MonthlySpend", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	start := time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	total, err := s.store.MonthlySpend(ctx, projectID, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return decimal.Zero, errorbank.Internal("failed to compute monthly spend", errorbank.WithCause(err))
	}
	return total, nil
}

// Advance moves a purchase order along its lifecycle (submit for approval,
// mark ordered, mark received, cancel). Approval itself goes through the
// approval service, never through here. The write is conditional on the
// current status, so racing advancements cannot skip states.
func (s *Service) Advance(ctx context.Context, id string, next entity.POStatus) error {
	if id == "" {
		return errorbank.BadRequest("purchase order id is required")
	}
	if !next.Valid() {
		return errorbank.BadRequest("unknown status", errorbank.WithDetail("status", string(next)))
	}
	if next == entity.POStatusApproved {
		return errorbank.Unprocessable("approval must go through the approval endpoint")
	}

	ctx, span := serviceTracer.Start(ctx, "ProcurementService.Advance", trace.WithAttributes(
		attribute.String("po.id", id),
		attribute.String("po.status.next", string(next)),
	))
	defer span.End()

	po, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("purchase order not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to load purchase order", errorbank.WithCause(err))
	}

	if !po.Status.CanTransitionTo(next) {
		span.SetStatus(codes.Error, "invalid transition")
		return errorbank.Unprocessable("invalid status transition",
			errorbank.WithDetail("current", string(po.Status)),
			errorbank.WithDetail("requested", string(next)),
		)
	}

	err = s.store.UpdateStatusIfCurrent(ctx, id, po.Status, next, time.Now().UTC())
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrNotFound):
		return errorbank.NotFound("purchase order not found")
	case errors.Is(err, repo.ErrStatusConflict):
		span.SetStatus(codes.Error, "status conflict")
		return errorbank.Conflict("purchase order was modified concurrently",
			errorbank.WithDetail("po_id", id),
		)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to update status", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, POCacheKey(id)); err != nil {
		if s.logger != nil {
			s.logger.Warn("purchase order cache invalidation failed", zap.String("id", id), zap.Error(err))
		}
	}
}

func (s *Service) getFromCache(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, POCacheKey(id))
	if err != nil {
		return nil, err
	}
	var po entity.PurchaseOrder
	if err := json.Unmarshal(bytes, &po); err != nil {
		return nil, err
	}
	return &po, nil
}

func (s *Service) storeInCache(ctx context.Context, po *entity.PurchaseOrder) error {
	if s.cache == nil || po == nil {
		return nil
	}
	bytes, err := json.Marshal(po)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, POCacheKey(po.ID), bytes, s.cacheTTL)
}

// newPONumber derives a human-readable order number. Uniqueness is enforced
// by the po_number unique index; the uuid suffix keeps collisions out of the
// happy path without a sequence round trip.
func newPONumber(now time.Time) string {
	return fmt.Sprintf("PO-%d-%s", now.Year(), uuid.NewString()[:8])
}
