package shared

import "context"

// EventHandler reacts to published events.
// EventTypes lists the types it wants; nil subscribes to everything.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

// EventPublisher publishes domain events. Delivery failures are the
// publisher's concern and are not reported back to the caller's operation.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}
