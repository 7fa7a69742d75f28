package stock

import (
	"context"
	"fmt"

	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/domain/vending"
	"github.com/vendtrack/vendtrack/internal/observability"
	"github.com/vendtrack/vendtrack/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RefillHandler adds refilled quantities to the source machine's stock.
type RefillHandler struct {
	machines vending.Repository
	log      observability.Logger
	tracer   observability.Tracer
	handled  observability.Counter
}

func NewRefillHandler(machines vending.Repository, tel observability.Observability) *RefillHandler {
	log, tracer, handled := telemetryFor(tel)
	return &RefillHandler{
		machines: machines,
		log:      log,
		tracer:   tracer,
		handled:  handled,
	}
}

func (h *RefillHandler) Handle(ctx context.Context, e pubsub.Event) (err error) {
	evt, ok := e.(vending.RefillEvent)
	if !ok {
		count(h.handled, vending.KindRefill, outcomeIgnored)
		return nil
	}

	ctx, span := h.tracer.Start(ctx, spanPrefix+"Refill",
		attribute.String("machine.id", evt.MachineID),
		attribute.Int("refill.quantity", evt.Quantity),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "REFILL_FAILED")
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
	}()

	logger := logctx.FromOr(ctx, h.log).With(
		observability.F("event", evt.Kind()),
		observability.F("machine_id", evt.MachineID),
		observability.F("quantity", evt.Quantity),
	)

	m, err := h.machines.Get(ctx, evt.MachineID)
	if err != nil {
		count(h.handled, vending.KindRefill, outcomeError)
		return fmt.Errorf("stock: get machine: %w", err)
	}

	if err := m.Refill(evt.Quantity); err != nil {
		count(h.handled, vending.KindRefill, outcomeError)
		return fmt.Errorf("stock: refill: %w", err)
	}

	if err := h.machines.Save(ctx, m); err != nil {
		count(h.handled, vending.KindRefill, outcomeError)
		return fmt.Errorf("stock: save machine: %w", err)
	}

	count(h.handled, vending.KindRefill, outcomeSuccess)
	logger.Info("stock_refilled",
		observability.F("stock", m.Stock),
	)
	return nil
}
