// Package bus implements the in-memory event registry.
//
// The registry deliberately uses replay-on-subscribe semantics rather than
// the conventional register-then-receive-future-events observer model:
// Publish only buffers, Subscribe synchronously drains the current backlog
// of the requested kind to the given subscriber and retains no registration,
// and Unsubscribe purges the backlog of a kind. Two Subscribe calls for the
// same kind therefore both receive the full backlog.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/vendtrack/vendtrack/internal/domain/pubsub"
	"github.com/vendtrack/vendtrack/internal/observability"
	"github.com/vendtrack/vendtrack/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const componentBus = "bus"

// Registry buffers published events and replays them to subscribers by kind.
// A single mutex guards the buffer for the whole duration of each operation,
// including handler invocations during replay; subscribers must not call
// back into the registry from Handle.
type Registry struct {
	mu     sync.Mutex
	buffer []pubsub.Event

	log         observability.Logger
	tracer      observability.Tracer
	published   observability.Counter
	dispatched  observability.Counter
	dispatchDur observability.Histogram
}

func New(tel observability.Observability) *Registry {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Registry{
		log:         tel.Logger().With(observability.F("component", componentBus)),
		tracer:      tel.Tracer(),
		published:   tel.Metrics().Counter(observability.MEventsPublished),
		dispatched:  tel.Metrics().Counter(observability.MEventsDispatched),
		dispatchDur: tel.Metrics().Histogram(observability.MDispatchDuration),
	}
}

// Publish appends the events, in the given order, to the backlog. It never
// dispatches anything; delivery happens only on Subscribe. Publishing an
// empty sequence is a no-op.
func (r *Registry) Publish(events ...pubsub.Event) {
	if len(events) == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	appended := 0
	for _, e := range events {
		if e == nil {
			continue
		}
		r.buffer = append(r.buffer, e)
		appended++
	}
	if appended == 0 {
		return
	}

	r.published.Add(float64(appended))
	r.log.Debug("events_buffered",
		observability.F("count", appended),
		observability.F("backlog", len(r.buffer)),
	)
}

// Subscribe replays every buffered event of the given kind to the subscriber,
// synchronously and in publish order. The backlog is not mutated, so a second
// Subscribe for the same kind replays the same events again. A handler error
// aborts the replay and is returned wrapped in *pubsub.DispatchError; the
// registry does not retry, skip, or log the fault itself.
func (r *Registry) Subscribe(ctx context.Context, kind string, s pubsub.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, span := r.tracer.Start(ctx, "Registry.Subscribe",
		attribute.String("event.kind", kind),
		attribute.Int("backlog", len(r.buffer)),
	)
	defer span.End()

	logger := logctx.FromOr(ctx, r.log).With(observability.F("kind", kind))
	ctx = logctx.With(ctx, logger)

	succeeded := r.dispatched.Bind(observability.L("kind", kind), observability.L("outcome", "success"))
	duration := r.dispatchDur.Bind(observability.L("kind", kind))

	start := time.Now()
	delivered := 0
	for _, e := range r.buffer {
		if e.Kind() != kind {
			continue
		}
		if err := s.Handle(ctx, e); err != nil {
			if delivered > 0 {
				succeeded.Add(float64(delivered))
			}
			r.dispatched.Add(1, observability.L("kind", kind), observability.L("outcome", "error"))
			duration.Observe(time.Since(start).Seconds())
			return &pubsub.DispatchError{Kind: kind, SourceID: e.SourceID(), Err: err}
		}
		delivered++
	}

	if delivered > 0 {
		succeeded.Add(float64(delivered))
	}
	duration.Observe(time.Since(start).Seconds())

	logger.Debug("backlog_replayed",
		observability.F("delivered", delivered),
	)
	return nil
}

// Unsubscribe removes every buffered event of the given kind. There is no
// registration to remove; its only observable effect is that later Subscribe
// calls for the kind see an empty backlog.
func (r *Registry) Unsubscribe(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.buffer[:0]
	removed := 0
	for _, e := range r.buffer {
		if e.Kind() == kind {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	// Release the purged tail so the backing array does not pin the events.
	for i := len(kept); i < len(r.buffer); i++ {
		r.buffer[i] = nil
	}
	r.buffer = kept

	if removed > 0 {
		r.log.Debug("backlog_purged",
			observability.F("kind", kind),
			observability.F("removed", removed),
			observability.F("backlog", len(r.buffer)),
		)
	}
}

// Backlog reports the number of buffered events across all kinds.
func (r *Registry) Backlog() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}
