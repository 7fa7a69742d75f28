package pubsub

import (
	"context"
	"fmt"
)

// Event is an immutable typed fact with a kind discriminant and the id of the
// entity it originated from. Events are constructed once and never mutated.
type Event interface {
	Kind() string
	SourceID() string
}

// Subscriber consumes one event and produces a side effect.
type Subscriber interface {
	Handle(ctx context.Context, e Event) error
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(ctx context.Context, e Event) error

func (f SubscriberFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) }

// Publisher buffers events for later replay to subscribers.
type Publisher interface {
	Publish(events ...Event)
}

// Broker is the full registry surface: buffer events, replay backlog to a
// subscriber by kind, and purge backlog by kind.
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, kind string, s Subscriber) error
	Unsubscribe(kind string)
}

// DispatchError reports a subscriber fault raised while the registry was
// replaying backlog. The registry neither retries nor swallows the fault;
// remaining events of the kind are not delivered.
type DispatchError struct {
	Kind     string
	SourceID string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("pubsub: dispatch %q event from %s: %v", e.Kind, e.SourceID, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
