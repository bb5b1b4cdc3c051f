package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindRequestCreated         Kind = "request_created"
	KindRequestResolved        Kind = "request_resolved"
	KindRoleCreated            Kind = "role_created"
	KindRoleDeleted            Kind = "role_deleted"
	KindAssignmentMaterialized Kind = "assignment_materialized"
)

// Event is the envelope shared by the Kafka stream and dashboard sockets.
// Key groups events of the same aggregate (an employee or a role) onto one
// partition.
type Event struct {
	Kind      Kind      `json:"kind"`
	MessageID uuid.UUID `json:"message_id"`
	Key       string    `json:"key"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

func New(kind Kind, key string, payload any) Event {
	return Event{
		Kind:      kind,
		MessageID: uuid.New(),
		Key:       key,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Fanout delivers an event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
