package scheduler

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/notify"
)

// SendPaymentDueReminders queues a payment.due notification for every
// participant of a closed session who still owes court fees.
func SendPaymentDueReminders(ctx context.Context, database *db.DB) error {
	if database == nil {
		return fmt.Errorf("payment reminders require database")
	}

	debtors, err := database.Queries.ListClosedSessionDebtors(ctx)
	if err != nil {
		return fmt.Errorf("list session debtors: %w", err)
	}
	if len(debtors) == 0 {
		return nil
	}

	logger := log.Ctx(ctx)
	queued := 0
	for _, debtor := range debtors {
		balance := decimal.New(debtor.AmountOwed-debtor.AmountPaid, -2)
		if _, err := database.Queries.CreateNotification(ctx, dbgen.CreateNotificationParams{
			UserID:    debtor.UserID,
			EventType: "payment.due",
			SessionID: sql.NullString{String: debtor.SessionID, Valid: true},
			Message:   fmt.Sprintf("You still owe %s in court fees", balance.StringFixed(2)),
		}); err != nil {
			logger.Error().Err(err).
				Str("participant_id", debtor.ID).
				Str("session_id", debtor.SessionID).
				Msg("Failed to queue payment reminder")
			continue
		}
		queued++
	}

	logger.Debug().
		Int("queued", queued).
		Int("debtors", len(debtors)).
		Msg("Payment reminders queued")
	return nil
}

// DispatchNotifications drains one batch of the notification outbox.
func DispatchNotifications(ctx context.Context, dispatcher *notify.Dispatcher) error {
	if dispatcher == nil {
		return fmt.Errorf("notification dispatch requires dispatcher")
	}
	delivered, err := dispatcher.DispatchPending(ctx)
	if err != nil {
		return err
	}
	if delivered > 0 {
		log.Ctx(ctx).Debug().Int("delivered", delivered).Msg("Dispatched notifications")
	}
	return nil
}
