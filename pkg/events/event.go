package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. It is meant to be
// embedded in concrete event payloads so that its fields serialise alongside them.
type BaseEvent struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	Aggregate uuid.UUID `json:"aggregate_id"`
	Kind      string    `json:"aggregate_type"`
	At        time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a new BaseEvent with a generated UUID.
func NewBaseEvent(eventType string, aggregateID uuid.UUID, aggregateType string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Aggregate: aggregateID,
		Kind:      aggregateType,
		At:        occurredAt.UTC(),
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type name of this event.
func (e BaseEvent) EventType() string {
	return e.Type
}

// AggregateID returns the identifier of the aggregate that produced this event.
func (e BaseEvent) AggregateID() uuid.UUID {
	return e.Aggregate
}

// AggregateType returns the type name of the aggregate that produced this event.
func (e BaseEvent) AggregateType() string {
	return e.Kind
}

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.At
}

// ContentTypeJSON is the content type of serialised events.
const ContentTypeJSON = "application/json"

// Headers returns the transport headers that identify e without decoding it.
func Headers(e DomainEvent) map[string]string {
	return map[string]string{
		"event_type":     e.EventType(),
		"event_id":       e.EventID().String(),
		"aggregate_type": e.AggregateType(),
		"content-type":   ContentTypeJSON,
	}
}
