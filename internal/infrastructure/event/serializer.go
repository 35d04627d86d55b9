package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
)

// Envelope is the wire form of a published domain event. Payload holds
// the event's own JSON encoding.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	AggregateID   uint            `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	Source        string          `json:"source"`
	Payload       json.RawMessage `json:"payload"`
}

// Serializer encodes domain events into envelopes
type Serializer struct {
	source string
}

// NewSerializer creates a serializer stamping envelopes with source
func NewSerializer(source string) *Serializer {
	return &Serializer{source: source}
}

// Envelope wraps an event
func (s *Serializer) Envelope(event shared.DomainEvent) (*Envelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", event.EventType(), err)
	}
	return &Envelope{
		ID:            event.EventID(),
		Type:          event.EventType(),
		OccurredAt:    event.OccurredAt(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		Source:        s.source,
		Payload:       payload,
	}, nil
}

// Serialize returns the JSON encoding of the event's envelope
func (s *Serializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	env, err := s.Envelope(event)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
