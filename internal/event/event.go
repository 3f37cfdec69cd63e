package event

import (
	"time"

	"github.com/google/uuid"
)

// Metadata is attached to every event.
type Metadata struct {
	ID        string
	Timestamp time.Time
	// Source names the component that published the event.
	Source string
	// CorrelationID links related events, such as everything in one session.
	CorrelationID string
}

// Event is a typed event.
type Event[T any] struct {
	Topic    Topic
	Payload  T
	Metadata Metadata
}

// New creates an event stamped with a fresh id and the current time.
func New[T any](topic Topic, payload T, source string) Event[T] {
	return Event[T]{
		Topic:   topic,
		Payload: payload,
		Metadata: Metadata{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    source,
		},
	}
}

// WithCorrelation returns a copy of e with the correlation id set.
func (e Event[T]) WithCorrelation(id string) Event[T] {
	e.Metadata.CorrelationID = id
	return e
}

// Envelope is a type-erased event as delivered to handlers.
type Envelope struct {
	Topic    Topic
	Payload  any
	Metadata Metadata
}

// Envelope erases the payload type.
func (e Event[T]) Envelope() Envelope {
	return Envelope{Topic: e.Topic, Payload: e.Payload, Metadata: e.Metadata}
}

// PayloadAs returns env's payload as T.
func PayloadAs[T any](env Envelope) (T, bool) {
	v, ok := env.Payload.(T)
	return v, ok
}
