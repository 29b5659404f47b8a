package inventory

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/constructflow/constructflow/internal/dto"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/presentation/http/response"
	svc "github.com/constructflow/constructflow/internal/service/inventory"
)

var httpTracer = otel.Tracer("github.com/constructflow/constructflow/transport/http/inventory")

// Stock is the inventory service surface the handler depends on.
type Stock interface {
	LowStock(ctx context.Context, projectID string, ascending bool) ([]*entity.Material, error)
	LowStockCount(ctx context.Context, projectID string) (int, error)
}

// Handler exposes stock-level endpoints over HTTP.
type Handler struct {
	stock Stock
}

// NewHandler constructs an inventory Handler.
func NewHandler(stock *svc.Service) *Handler {
	return &Handler{stock: stock}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/materials/low-stock", h.lowStock)
}

func (h *Handler) lowStock(c echo.Context) error {
	b := response.New(c)

	projectID := c.QueryParam("project_id")
	ascending := c.QueryParam("order") != "desc"

	ctx, span := httpTracer.Start(c.Request().Context(), "materials.lowStock", trace.WithAttributes(attribute.String("project.id", projectID)))
	defer span.End()

	materials, err := h.stock.LowStock(ctx, projectID, ascending)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.LowStockMaterialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, toLowStockResponse(m))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func toLowStockResponse(m *entity.Material) dto.LowStockMaterialResponse {
	resp := dto.LowStockMaterialResponse{
		MaterialID:     m.ID,
		Name:           m.Name,
		Unit:           m.Unit,
		QuantityOnHand: m.QuantityOnHand,
		ReorderLevel:   m.ReorderLevel,
		ProjectID:      m.ProjectID,
	}
	if m.Project != nil {
		resp.ProjectName = m.Project.Name
	}
	if m.Supplier != nil {
		resp.SupplierName = m.Supplier.Name
		resp.SupplierPhone = m.Supplier.Phone
	}
	if m.UnitCost.Valid {
		cost := m.UnitCost.Decimal
		resp.UnitCost = &cost
	}
	return resp
}
