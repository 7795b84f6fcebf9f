package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	EventConfirmed EventType = "reservation.confirmed"
	EventUpdated   EventType = "reservation.updated"
	EventCancelled EventType = "reservation.cancelled"
)

// Cancellation reasons carried on EventCancelled.
const (
	ReasonUserDecision   = "user decision"
	ReasonAdministrative = "cancelled by facility staff"
)

// Event is emitted after a reservation mutation commits.
type Event struct {
	ID          string
	Type        EventType
	Reservation Reservation
	CourtName   string
	Reason      string
	OccurredAt  time.Time
}

func newEvent(eventType EventType, reservation Reservation, courtName, reason string, at time.Time) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		Reservation: reservation,
		CourtName:   courtName,
		Reason:      reason,
		OccurredAt:  at.UTC(),
	}
}

// Notifier delivers reservation events to users or downstream systems.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Deliver sends event through n. Failures are logged and never returned:
// a committed mutation stands regardless of notification outcome.
func Deliver(ctx context.Context, n Notifier, event Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		log.Ctx(ctx).Warn().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Int64("reservation_id", event.Reservation.ID).
			Msg("Failed to deliver reservation notification")
	}
}
