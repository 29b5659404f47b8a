package equipment

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/constructflow/constructflow/internal/dto"
	"github.com/constructflow/constructflow/internal/entity"
	"github.com/constructflow/constructflow/internal/presentation/http/response"
	svc "github.com/constructflow/constructflow/internal/service/equipment"
)

var httpTracer = otel.Tracer("github.com/constructflow/constructflow/transport/http/equipment")

// Fleet is the equipment service surface the handler depends on.
type Fleet interface {
	MaintenanceDue(ctx context.Context) ([]*entity.Equipment, error)
	StatusSummary(ctx context.Context) (map[entity.EquipmentStatus]int, int, error)
}

// Handler exposes fleet endpoints over HTTP.
type Handler struct {
	fleet Fleet
}

// NewHandler constructs an equipment Handler.
func NewHandler(fleet *svc.Service) *Handler {
	return &Handler{fleet: fleet}
}

// Register routes with the provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/equipment")
	g.GET("/maintenance-due", h.maintenanceDue)
	g.GET("/status-summary", h.statusSummary)
}

func (h *Handler) maintenanceDue(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "equipment.maintenanceDue")
	defer span.End()

	fleet, err := h.fleet.MaintenanceDue(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.EquipmentResponse, 0, len(fleet))
	for _, eq := range fleet {
		out = append(out, toEquipmentResponse(eq))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) statusSummary(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "equipment.statusSummary")
	defer span.End()

	counts, due, err := h.fleet.StatusSummary(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	byStatus := make(map[string]int, len(counts))
	for status, count := range counts {
		byStatus[string(status)] = count
	}
	return b.WithData(dto.EquipmentStatusSummaryResponse{
		ByStatus:       byStatus,
		MaintenanceDue: due,
	}).Build()
}

func toEquipmentResponse(eq *entity.Equipment) dto.EquipmentResponse {
	resp := dto.EquipmentResponse{
		ID:                  eq.ID,
		Name:                eq.Name,
		Type:                eq.Type,
		Status:              string(eq.Status),
		LastMaintenanceDate: eq.LastMaintenanceDate,
		NextMaintenanceDate: eq.NextMaintenanceDate,
		Location:            eq.Location,
	}
	if eq.CurrentProject != nil {
		resp.CurrentProjectName = eq.CurrentProject.Name
	}
	return resp
}
