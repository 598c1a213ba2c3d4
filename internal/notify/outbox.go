// Package notify delivers queue events to players. The default
// implementation is a database outbox: events are persisted as undelivered
// notification rows and drained by a background dispatcher, so delivery
// failures never reach the operation that produced the event.
package notify

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	db "github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/queue"
)

// Outbox writes queue events as notification rows.
type Outbox struct {
	db *db.DB
}

var _ queue.Notifier = (*Outbox)(nil)

func NewOutbox(database *db.DB) *Outbox {
	return &Outbox{db: database}
}

// Notify persists each event. A failed insert fails only that event; the
// rest are still written.
func (o *Outbox) Notify(ctx context.Context, events ...queue.Event) error {
	var firstErr error
	for _, event := range events {
		sessionID := sql.NullString{}
		if event.SessionID != "" {
			sessionID = sql.NullString{String: event.SessionID, Valid: true}
		}
		if _, err := o.db.Queries.CreateNotification(ctx, dbgen.CreateNotificationParams{
			UserID:    event.UserID,
			EventType: event.Type,
			SessionID: sessionID,
			Message:   event.Message,
		}); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("enqueue notification %s for %s: %w", event.Type, event.UserID, err)
			}
			log.Ctx(ctx).Error().
				Err(err).
				Str("component", "notify").
				Str("event_type", event.Type).
				Str("user_id", event.UserID).
				Msg("Failed to enqueue notification")
		}
	}
	return firstErr
}

// Sender pushes a notification to the user's device or inbox.
type Sender interface {
	Send(ctx context.Context, n dbgen.Notification) error
}

// LogSender is the development sender: it only logs.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, n dbgen.Notification) error {
	log.Ctx(ctx).Info().
		Str("component", "notify").
		Str("user_id", n.UserID).
		Str("event_type", n.EventType).
		Str("message", n.Message).
		Msg("Notification delivered")
	return nil
}

// Dispatcher drains undelivered notifications in batches.
type Dispatcher struct {
	db        *db.DB
	sender    Sender
	batchSize int64
}

func NewDispatcher(database *db.DB, sender Sender) *Dispatcher {
	return &Dispatcher{db: database, sender: sender, batchSize: 100}
}

// DispatchPending sends one batch of undelivered notifications and marks
// the delivered ones. A send failure leaves the row undelivered for the
// next run.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	pending, err := d.db.Queries.ListUndeliveredNotifications(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list undelivered notifications: %w", err)
	}
	delivered := 0
	for _, notification := range pending {
		if err := d.sender.Send(ctx, notification); err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Str("component", "notify").
				Int64("notification_id", notification.ID).
				Msg("Delivery failed, will retry")
			continue
		}
		if err := d.db.Queries.MarkNotificationDelivered(ctx, notification.ID); err != nil {
			return delivered, fmt.Errorf("mark notification %d delivered: %w", notification.ID, err)
		}
		delivered++
	}
	return delivered, nil
}
