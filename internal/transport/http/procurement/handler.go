package procurement

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/constructflow/constructflow/internal/dto"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/presentation/http/response"
	"github.com/constructflow/constructflow/internal/service/approval"
	svc "github.com/constructflow/constructflow/internal/service/procurement"
	"github.com/constructflow/constructflow/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/constructflow/constructflow/transport/http/procurement")

// Orders is the procurement service surface the handler depends on.
type Orders interface {
	Create(ctx context.Context, req svc.CreateRequest) (*entity.PurchaseOrder, error)
	Get(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	ListRunning(ctx context.Context, limit int) ([]*entity.PurchaseOrder, error)
	ApprovedTotal(ctx context.Context, projectID string) (decimal.Decimal, error)
	MonthlySpend(ctx context.Context, projectID string, monthStart time.Time) (decimal.Decimal, error)
	Advance(ctx context.Context, id string, next entity.POStatus) error
}

// Approver is the approval service surface the handler depends on.
type Approver interface {
	Approve(ctx context.Context, poID, approverID string) (*approval.Result, error)
}

// Handler exposes purchase order endpoints over HTTP.
type Handler struct {
	orders   Orders
	approver Approver
}

// NewHandler constructs a procurement Handler.
func NewHandler(orders *svc.Service, approver *approval.Service) *Handler {
	return &Handler{orders: orders, approver: approver}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/purchase-orders")
	g.POST("", h.create)
	g.GET("", h.listRunning)
	g.GET("/:id", h.getByID)
	g.POST("/:id/approve", h.approve)
	g.POST("/:id/status", h.advance)

	e.GET("/projects/:id/approved-total", h.approvedTotal)
	e.GET("/spend", h.monthlySpend)
}

type lineItemPayload struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type createPayload struct {
	ProjectID        string            `json:"project_id"`
	SupplierID       string            `json:"supplier_id"`
	ExpectedDelivery *time.Time        `json:"expected_delivery"`
	Notes            string            `json:"notes"`
	CreatedBy        string            `json:"created_by"`
	Items            []lineItemPayload `json:"items"`
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	items := make([]svc.LineItem, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, svc.LineItem{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
		})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.create", trace.WithAttributes(
		attribute.String("po.project", payload.ProjectID),
	))
	defer span.End()

	po, err := h.orders.Create(ctx, svc.CreateRequest{
		ProjectID:        payload.ProjectID,
		SupplierID:       payload.SupplierID,
		ExpectedDelivery: payload.ExpectedDelivery,
		Notes:            payload.Notes,
		CreatedBy:        payload.CreatedBy,
		Items:            items,
	})
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(toPOResponse(po)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.getByID", trace.WithAttributes(attribute.String("po.id", id)))
	defer span.End()

	po, err := h.orders.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toPOResponse(po)).Build()
}

func (h *Handler) listRunning(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.listRunning")
	defer span.End()

	pos, err := h.orders.ListRunning(ctx, 0)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.PurchaseOrderResponse, 0, len(pos))
	for _, po := range pos {
		out = append(out, toPOResponse(po))
	}
	return b.WithData(out).WithMeta("count", len(out)).Build()
}

func (h *Handler) approve(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var payload struct {
		ApproverID string `json:"approver_id"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.approve", trace.WithAttributes(
		attribute.String("po.id", id),
		attribute.String("po.approver", payload.ApproverID),
	))
	defer span.End()

	result, err := h.approver.Approve(ctx, id, payload.ApproverID)
	if err != nil {
		return b.WithError(translateApprovalErr(err)).Build()
	}

	return b.WithData(toApprovalResponse(result)).Build()
}

func (h *Handler) advance(c echo.Context) error {
	b := response.New(c)
	id := c.Param("id")

	var payload struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.advance", trace.WithAttributes(
		attribute.String("po.id", id),
		attribute.String("po.status.next", payload.Status),
	))
	defer span.End()

	if err := h.orders.Advance(ctx, id, entity.POStatus(payload.Status)); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]string{"id": id, "status": payload.Status}).Build()
}

func (h *Handler) approvedTotal(c echo.Context) error {
	b := response.New(c)
	projectID := c.Param("id")

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.approvedTotal", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	total, err := h.orders.ApprovedTotal(ctx, projectID)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]decimal.Decimal{"approved_total": total}).Build()
}

func (h *Handler) monthlySpend(c echo.Context) error {
	b := response.New(c)

	month := time.Now().UTC()
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := time.Parse("2006-01", raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid month, expected YYYY-MM", errorbank.WithCause(err))).Build()
		}
		month = parsed
	}
	projectID := c.QueryParam("project_id")

	ctx, span := httpTracer.Start(c.Request().Context(), "purchase_orders.monthlySpend", trace.WithAttributes(
		attribute.String("project.id", projectID),
		attribute.String("month", month.Format("2006-01")),
	))
	defer span.End()

	total, err := h.orders.MonthlySpend(ctx, projectID, month)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{
		"month":       month.Format("2006-01"),
		"total_spend": total,
	}).Build()
}

// translateApprovalErr maps the approval service's typed errors onto
// errorbank kinds, carrying the structured context each error holds.
func translateApprovalErr(err error) error {
	var notFound *approval.NotFoundError
	if errors.As(err, &notFound) {
		return errorbank.NotFound("purchase order not found", errorbank.WithDetail("po_id", notFound.POID))
	}

	var invalidState *approval.InvalidStateError
	if errors.As(err, &invalidState) {
		return errorbank.Unprocessable("purchase order is not pending approval",
			errorbank.WithDetail("po_id", invalidState.POID),
			errorbank.WithDetail("current_status", string(invalidState.Current)),
		)
	}

	var exceeded *approval.BudgetExceededError
	if errors.As(err, &exceeded) {
		return errorbank.Unprocessable("budget exceeded", errorbank.WithDetails(map[string]any{
			"project_budget":         exceeded.ProjectBudget,
			"current_approved_total": exceeded.CurrentApprovedTotal,
			"po_amount":              exceeded.POAmount,
			"over_by":                exceeded.OverBy,
		}))
	}

	var concurrent *approval.ConcurrentModificationError
	if errors.As(err, &concurrent) {
		return errorbank.Conflict("purchase order was modified concurrently; refresh and review current state",
			errorbank.WithDetail("po_id", concurrent.POID),
		)
	}

	return err
}

func toPOResponse(po *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	resp := dto.PurchaseOrderResponse{
		ID:               po.ID,
		PONumber:         po.PONumber,
		ProjectID:        po.ProjectID,
		SupplierID:       po.SupplierID,
		OrderDate:        po.OrderDate,
		ExpectedDelivery: po.ExpectedDelivery,
		TotalAmount:      po.TotalAmount,
		Status:           string(po.Status),
		ApprovedBy:       po.ApprovedBy,
		ApprovedAt:       po.ApprovedAt,
		Notes:            po.Notes,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
	}
	if po.Supplier != nil {
		resp.SupplierName = po.Supplier.Name
	}
	for _, item := range po.Items {
		resp.Items = append(resp.Items, dto.POItemResponse{
			ID:         item.ID,
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Subtotal:   item.Subtotal,
		})
	}
	return resp
}

func toApprovalResponse(result *approval.Result) dto.ApprovalResponse {
	resp := dto.ApprovalResponse{
		POID:           result.POID,
		PONumber:       result.PONumber,
		Status:         string(result.Status),
		ApprovedBy:     result.ApprovedBy,
		ApprovedAt:     result.ApprovedAt,
		ProjectedTotal: result.ProjectedTotal,
	}
	if result.ProjectBudget.Valid {
		budget := result.ProjectBudget.Decimal
		resp.ProjectBudget = &budget
	}
	if result.Remaining.Valid {
		remaining := result.Remaining.Decimal
		resp.Remaining = &remaining
	}
	return resp
}
