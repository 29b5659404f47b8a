package approval

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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
	"github.com/constructflow/constructflow/internal/messaging"
	repo "github.com/constructflow/constructflow/internal/repository/procurement"
	procure "github.com/constructflow/constructflow/internal/service/procurement"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/constructflow/constructflow/service/approval")

// Ledger is the slice of the procurement repository the approval flow needs:
// the order-with-budget read, the approved-spend aggregate, and the
// conditional approval write.
type Ledger interface {
	GetWithProject(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	ApprovedTotal(ctx context.Context, projectID string) (decimal.Decimal, error)
	ApproveIfPending(ctx context.Context, id, approverID string, at time.Time) (*entity.PurchaseOrder, error)
}

// Result is the budget picture returned after a successful approval.
type Result struct {
	POID           string
	PONumber       string
	Status         entity.POStatus
	ApprovedBy     string
	ApprovedAt     time.Time
	ProjectBudget  decimal.NullDecimal
	ProjectedTotal decimal.Decimal
	Remaining      decimal.NullDecimal
}

// Service runs the purchase order approval workflow: ledger read, status
// guard, budget evaluation, and the conditional commit.
type Service struct {
	ledger    Ledger
	policy    NullBudgetPolicy
	cache     cache.Store
	logger    *zap.Logger
	publisher messaging.Client
	messaging messagingConfig
}

type messagingConfig struct {
	enabled bool
	topic   string
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Cache      cache.Store
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) (*Service, error) {
	policy, err := ParsePolicy(p.Config.Approval.NullBudgetPolicy)
	if err != nil {
		return nil, err
	}
	return &Service{
		ledger:    p.Repository,
		policy:    policy,
		cache:     p.Cache,
		logger:    p.Logger,
		publisher: p.Publisher,
		messaging: messagingConfig{
			enabled: p.Config.Messaging.Enabled,
			topic:   p.Config.Messaging.Kafka.Topic,
		},
	}, nil
}

// Approve approves the purchase order identified by poID on behalf of
// approverID. The commit is a conditional write, so of two racing approvals
// for the same order exactly one succeeds; the loser sees a
// ConcurrentModificationError. Nothing is written when the status guard or
// the budget check fails.
//
// Two racing approvals for different orders on the same project can both
// pass the budget check against the same approved total and jointly exceed
// the ceiling; the aggregate is advisory, not locked across orders.
func (s *Service) Approve(ctx context.Context, poID, approverID string) (*Result, error) {
	if poID == "" {
		return nil, errorbank.BadRequest("purchase order id is required")
	}
	if approverID == "" {
		return nil, errorbank.BadRequest("approver id is required")
	}

	ctx, span := serviceTracer.Start(ctx, "ApprovalService.Approve", trace.WithAttributes(
		attribute.String("po.id", poID),
		attribute.String("po.approver", approverID),
	))
	defer span.End()

	po, err := s.ledger.GetWithProject(ctx, poID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, &NotFoundError{POID: poID}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger read failed")
		return nil, errorbank.Internal("failed to load purchase order", errorbank.WithCause(err))
	}

	if po.Status != entity.POStatusPendingApproval {
		span.SetStatus(codes.Error, "invalid state")
		return nil, &InvalidStateError{POID: poID, Current: po.Status}
	}

	approvedTotal, err := s.ledger.ApprovedTotal(ctx, po.ProjectID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "approved total failed")
		return nil, errorbank.Internal("failed to compute approved total", errorbank.WithCause(err))
	}

	var ceiling decimal.NullDecimal
	if po.Project != nil {
		ceiling = po.Project.Budget
	}
	summary, err := evaluateBudget(s.policy, ceiling, approvedTotal, po.TotalAmount)
	if err != nil {
		span.SetStatus(codes.Error, "budget exceeded")
		return nil, err
	}

	now := time.Now().UTC()
	updated, err := s.ledger.ApproveIfPending(ctx, poID, approverID, now)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			span.SetStatus(codes.Error, "not found at commit")
			return nil, &NotFoundError{POID: poID}
		case errors.Is(err, repo.ErrStatusConflict):
			span.SetStatus(codes.Error, "concurrent modification")
			return nil, &ConcurrentModificationError{POID: poID}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "commit failed")
		return nil, errorbank.Internal("failed to commit approval", errorbank.WithCause(err))
	}

	s.invalidateCache(ctx, poID)
	s.publishApproved(ctx, updated)

	result := &Result{
		POID:           updated.ID,
		PONumber:       updated.PONumber,
		Status:         updated.Status,
		ApprovedBy:     approverID,
		ApprovedAt:     now,
		ProjectBudget:  summary.Ceiling,
		ProjectedTotal: summary.Projected,
		Remaining:      summary.Remaining,
	}
	if updated.ApprovedBy != nil {
		result.ApprovedBy = *updated.ApprovedBy
	}
	if updated.ApprovedAt != nil {
		result.ApprovedAt = *updated.ApprovedAt
	}
	return result, nil
}

func (s *Service) invalidateCache(ctx context.Context, poID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, procure.POCacheKey(poID)); err != nil {
		if s.logger != nil {
			s.logger.Warn("purchase order cache invalidation failed", zap.String("id", poID), zap.Error(err))
		}
	}
}

func (s *Service) publishApproved(ctx context.Context, po *entity.PurchaseOrder) {
	if !s.messaging.enabled || s.publisher == nil {
		return
	}
	event := POApprovedEvent{
		POID:      po.ID,
		PONumber:  po.PONumber,
		ProjectID: po.ProjectID,
		Amount:    po.TotalAmount,
	}
	if po.ApprovedBy != nil {
		event.ApprovedBy = *po.ApprovedBy
	}
	if po.ApprovedAt != nil {
		event.ApprovedAt = *po.ApprovedAt
	}
	payload, err := json.Marshal(event)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("marshal po approved", zap.Error(err))
		}
		return
	}
	if err := s.publisher.Publish(ctx, []byte(fmt.Sprintf("po-%s", po.ID)), payload); err != nil {
		if s.logger != nil {
			s.logger.Error("publish po approved", zap.Error(err))
		}
	}
}

// POApprovedEvent is emitted when a purchase order approval commits.
type POApprovedEvent struct {
	POID       string          `json:"po_id"`
	PONumber   string          `json:"po_number"`
	ProjectID  string          `json:"project_id"`
	ApprovedBy string          `json:"approved_by"`
	Amount     decimal.Decimal `json:"amount"`
	ApprovedAt time.Time       `json:"approved_at"`
}
