// Package stock holds the subscribers that react to vending events replayed
// by the registry, mutating machine stock keyed by the event's source id.
package stock

import (
	"github.com/vendtrack/vendtrack/internal/observability"
)

const (
	handlerService = "stock-handler"
	spanPrefix     = "EV."

	outcomeSuccess    = "success"
	outcomeRejected   = "rejected"
	outcomeIgnored    = "ignored"
	outcomeSuppressed = "suppressed"
	outcomeError      = "error"
)

func telemetryFor(tel observability.Observability) (observability.Logger, observability.Tracer, observability.Counter) {
	if tel == nil {
		tel = observability.Nop()
	}
	log := tel.Logger().With(observability.F("service", handlerService))
	return log, tel.Tracer(), tel.Metrics().Counter(observability.MStockEventsHandled)
}

func count(c observability.Counter, event, outcome string) {
	if c == nil {
		return
	}
	c.Add(1,
		observability.L("event", event),
		observability.L("outcome", outcome),
	)
}
