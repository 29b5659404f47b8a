package procurement

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/constructflow/constructflow/internal/config"
	"github.com/constructflow/constructflow/internal/messaging"
	"github.com/constructflow/constructflow/internal/service/approval"
	"github.com/constructflow/constructflow/internal/worker"
)

var workerTracer = otel.Tracer("github.com/constructflow/constructflow/worker/procurement")

// Module registers procurement worker handlers.
var Module = fx.Module("worker_procurement",
	fx.Provide(
		fx.Annotate(
			NewPOApprovedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewPOApprovedHandler sets up a worker handler that records purchase order
// approvals flowing through the bus, the hook point for downstream
// notifications to suppliers and project managers.
func NewPOApprovedHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.procurement.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event approval.POApprovedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode po approved", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		logger.Info("po approved event processed",
			zap.String("po_id", event.POID),
			zap.String("po_number", event.PONumber),
			zap.String("project_id", event.ProjectID),
			zap.String("approved_by", event.ApprovedBy),
			zap.String("amount", event.Amount.String()),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
