package shared

import "context"

// EventHandler handles domain events delivered from the outbox
type EventHandler interface {
	// Handle processes a domain event
	Handle(ctx context.Context, event DomainEvent) error
	// EventTypes returns the event types this handler is interested in.
	// An empty slice means the handler receives all events.
	EventTypes() []string
}

// EventSerializer converts domain events to and from their stored form
type EventSerializer interface {
	Serialize(event DomainEvent) ([]byte, error)
	Deserialize(eventType string, payload []byte) (DomainEvent, error)
}
