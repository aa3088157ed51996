package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/hotel/backoffice/internal/domain/shared"
)

// JSONSerializer serializes domain events to JSON. Event types must be
// registered so deserialization can rebuild the concrete type.
type JSONSerializer struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewJSONSerializer creates an empty serializer registry
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{types: make(map[string]reflect.Type)}
}

// Register records the concrete type for an event so it can be
// deserialized later. Pass a pointer to the event struct.
func (s *JSONSerializer) Register(event shared.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := reflect.TypeOf(event)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s.types[event.EventType()] = t
}

// Serialize converts an event to JSON
func (s *JSONSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize rebuilds the concrete event from its stored payload
func (s *JSONSerializer) Deserialize(eventType string, payload []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	t, ok := s.types[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unregistered event type: %s", eventType)
	}

	value := reflect.New(t).Interface()
	if err := json.Unmarshal(payload, value); err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", eventType, err)
	}

	event, ok := value.(shared.DomainEvent)
	if !ok {
		return nil, fmt.Errorf("type %s does not implement DomainEvent", eventType)
	}
	return event, nil
}

var _ shared.EventSerializer = (*JSONSerializer)(nil)
