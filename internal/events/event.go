// Package events carries change notifications for users and messages from
// the services to live subscribers, locally and across instances.
package events

import (
	"context"
	"time"
)

// Type names a change notification
type Type string

const (
	UserCreated    Type = "user.created"
	UserUpdated    Type = "user.updated"
	UserDeleted    Type = "user.deleted"
	MessageCreated Type = "message.created"
	MessageUpdated Type = "message.updated"
	MessageDeleted Type = "message.deleted"
)

// Event is emitted once a mutation has been committed
type Event struct {
	Type Type `json:"type"`
	// EntityID is the id of the user or message that changed
	EntityID uint `json:"entity_id"`
	// UserID is the user the change belongs to; subscribers filter on it
	UserID     uint      `json:"user_id"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with the current time
func New(t Type, entityID, userID uint, payload any) Event {
	return Event{
		Type:       t,
		EntityID:   entityID,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Publisher accepts events. Publishing is best effort and never fails the caller.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Fanout publishes every event to each of its publishers in order
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, e Event) {
	for _, p := range f {
		if p != nil {
			p.Publish(ctx, e)
		}
	}
}

type discard struct{}

func (discard) Publish(context.Context, Event) {}

// Discard is a Publisher that drops everything
var Discard Publisher = discard{}
