package queue

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Domain event types forwarded to the notification collaborator.
const (
	EventSessionApproved = "session.approved"
	EventSessionRejected = "session.rejected"
	EventTurnStarted     = "participant.turn_started"
	EventPaymentDue      = "payment.due"
	EventSessionClosed   = "session.closed"
)

// Event is a fire-and-forget domain event keyed by the user it concerns.
type Event struct {
	Type      string
	UserID    string
	SessionID string
	Message   string
}

// Notifier delivers domain events to the external notification system.
// Implementations must not fail the domain operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, events ...Event) error
}

// emit forwards events after the surrounding transaction has committed.
// Delivery failures are logged and swallowed.
func (e *Engine) emit(ctx context.Context, events []Event) {
	if e.notifier == nil || len(events) == 0 {
		return
	}
	if err := e.notifier.Notify(ctx, events...); err != nil {
		log.Ctx(ctx).Warn().Err(err).Int("event_count", len(events)).Msg("Failed to deliver domain events")
	}
}
