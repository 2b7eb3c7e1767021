// Package notify announces proposition events to an external channel. Delivery
// is fire-and-forget: callers commit their change first and only report the
// returned Status.
package notify

import (
	"context"
	"time"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Status reports the outcome of a delivery attempt.
type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// EventKind names what happened to a proposition.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventUpdated EventKind = "updated"
)

// Event is a committed change worth announcing.
type Event struct {
	Kind        EventKind
	Proposition proposition.Proposition
	OccurredAt  time.Time
}

// Notifier delivers events. Implementations never undo the change they
// announce; an error only explains a StatusFailed result.
type Notifier interface {
	Notify(ctx context.Context, event Event) (Status, error)
}

// Nop skips every event.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(context.Context, Event) (Status, error) {
	return StatusSkipped, nil
}
