package stock

import (
	"context"
	"errors"
	"fmt"

	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/domain/vending"
	"github.com/vendtrack/vendtrack/internal/observability"
	"github.com/vendtrack/vendtrack/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SaleHandler deducts sold quantities from the source machine's stock.
type SaleHandler struct {
	machines vending.Repository
	log      observability.Logger
	tracer   observability.Tracer
	handled  observability.Counter
}

func NewSaleHandler(machines vending.Repository, tel observability.Observability) *SaleHandler {
	log, tracer, handled := telemetryFor(tel)
	return &SaleHandler{
		machines: machines,
		log:      log,
		tracer:   tracer,
		handled:  handled,
	}
}

func (h *SaleHandler) Handle(ctx context.Context, e pubsub.Event) (err error) {
	evt, ok := e.(vending.SaleEvent)
	if !ok {
		count(h.handled, vending.KindSale, outcomeIgnored)
		return nil
	}

	ctx, span := h.tracer.Start(ctx, spanPrefix+"Sale",
		attribute.String("machine.id", evt.MachineID),
		attribute.Int("sale.quantity", evt.Quantity),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "SALE_FAILED")
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
		count(h.handled, vending.KindSale, outcomeError)
		return fmt.Errorf("stock: get machine: %w", err)
	}

	if err := m.Deduct(evt.Quantity); err != nil {
		if errors.Is(err, vending.ErrInsufficientStock) {
			// Oversells are rejected, not faulted: the machine cannot
			// dispense what it does not hold.
			count(h.handled, vending.KindSale, outcomeRejected)
			logger.Warn("sale_exceeds_stock",
				observability.F("stock", m.Stock),
			)
			return nil
		}
		count(h.handled, vending.KindSale, outcomeError)
		return fmt.Errorf("stock: deduct: %w", err)
	}

	if err := h.machines.Save(ctx, m); err != nil {
		count(h.handled, vending.KindSale, outcomeError)
		return fmt.Errorf("stock: save machine: %w", err)
	}

	count(h.handled, vending.KindSale, outcomeSuccess)
	logger.Info("stock_deducted",
		observability.F("stock", m.Stock),
	)
	return nil
}
