package stock

import (
	"context"

	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/domain/vending"
	"github.com/vendtrack/vendtrack/internal/observability"
	"github.com/vendtrack/vendtrack/internal/observability/logctx"
)

// WarningHandler turns check events into at-most-one low-stock warning and
// at-most-one stock-ok notice per handler instance. Each latch transitions
// once on the first qualifying event and never resets; repeated qualifying
// events are suppressed.
type WarningHandler struct {
	log     observability.Logger
	handled observability.Counter

	lowFired bool
	okFired  bool
}

func NewWarningHandler(tel observability.Observability) *WarningHandler {
	log, _, handled := telemetryFor(tel)
	return &WarningHandler{
		log:     log,
		handled: handled,
	}
}

func (h *WarningHandler) Handle(ctx context.Context, e pubsub.Event) error {
	evt, ok := e.(vending.StockCheckEvent)
	if !ok {
		count(h.handled, vending.KindCheck, outcomeIgnored)
		return nil
	}

	logger := logctx.FromOr(ctx, h.log).With(
		observability.F("event", evt.Kind()),
		observability.F("machine_id", evt.MachineID),
		observability.F("level", string(evt.Level)),
	)

	switch evt.Level {
	case vending.LevelLow:
		if h.lowFired {
			count(h.handled, vending.KindCheck, outcomeSuppressed)
			return nil
		}
		h.lowFired = true
		count(h.handled, vending.KindCheck, outcomeSuccess)
		logger.Warn("stock_low")
	case vending.LevelOK:
		if h.okFired {
			count(h.handled, vending.KindCheck, outcomeSuppressed)
			return nil
		}
		h.okFired = true
		count(h.handled, vending.KindCheck, outcomeSuccess)
		logger.Info("stock_ok")
	default:
		count(h.handled, vending.KindCheck, outcomeIgnored)
	}
	return nil
}
