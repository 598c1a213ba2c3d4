package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	db "github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

// CheckoutGateway creates hosted e-wallet checkout sessions with the payment
// provider. The engine never talks to the provider directly.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
}

// CheckoutRequest describes the charge to hand to the payment provider.
type CheckoutRequest struct {
	Amount      int64 // centavos
	Description string
	ReferenceID string
}

// CheckoutSession is the provider's handle for a pending checkout.
type CheckoutSession struct {
	SourceID    string
	CheckoutURL string
}

// Checkout statuses mirror the provider's source lifecycle.
const (
	CheckoutPending = "pending"
	CheckoutPaid    = "paid"
	CheckoutFailed  = "failed"
	CheckoutExpired = "expired"
)

// RecordPaymentParams captures a settlement entry against a participant's
// balance. Amount is in centavos.
type RecordPaymentParams struct {
	SessionID string
	UserID    string
	Amount    int64
	Method    string
	Reference string
}

// RecordPayment applies a cash payment recorded by the queue master. The
// outstanding balance never goes below zero: an overpayment fails with
// ErrOverpayment, except that a cash payment covering at least the full
// balance is clamped to exact settlement (change handed back at the table).
// E-wallet payments only enter through ConfirmCheckout.
func (e *Engine) RecordPayment(ctx context.Context, actor Actor, params RecordPaymentParams) (dbgen.QueueParticipant, error) {
	if params.Method != MethodCash {
		return dbgen.QueueParticipant{}, fmt.Errorf("%w: only cash payments may be recorded directly", ErrInvalidInput)
	}
	if params.Amount <= 0 {
		return dbgen.QueueParticipant{}, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}

	var updated dbgen.QueueParticipant
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		session, err := loadSession(ctx, txdb.Queries, params.SessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(session, actor); err != nil {
			return err
		}
		updated, err = applyPayment(ctx, txdb.Queries, session, params.UserID, params.Amount, MethodCash, params.Reference, actor.UserID, e.now())
		return err
	})
	if err != nil {
		return dbgen.QueueParticipant{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_ledger").
		Str("session_id", params.SessionID).
		Str("user_id", params.UserID).
		Str("method", MethodCash).
		Str("amount", FormatCentavos(params.Amount)).
		Str("balance", FormatCentavos(outstanding(updated))).
		Msg("Recorded payment")
	return updated, nil
}

// applyPayment settles amount against the participant's balance inside the
// caller's transaction. Cash overpayments clamp to the outstanding balance;
// anything else overpaying is rejected. Balances survive departure and close,
// so the lookup ignores roster status: debts stay payable after the
// participant has left.
func applyPayment(ctx context.Context, queries *dbgen.Queries, session dbgen.QueueSession, userID string, amount int64, method, reference, recordedBy string, now time.Time) (dbgen.QueueParticipant, error) {
	participant, err := queries.GetLatestSessionParticipant(ctx, dbgen.GetLatestSessionParticipantParams{
		SessionID: session.ID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.QueueParticipant{}, fmt.Errorf("%w: user %s", ErrParticipantNotFound, userID)
		}
		return dbgen.QueueParticipant{}, fmt.Errorf("load participant for %s: %w", userID, err)
	}

	balance := outstanding(participant)
	applied := amount
	if applied > balance {
		if method != MethodCash {
			return dbgen.QueueParticipant{}, fmt.Errorf("%w: outstanding balance is %s", ErrOverpayment, FormatCentavos(balance))
		}
		applied = balance
	}

	newPaid := participant.AmountPaid + applied
	status := PaymentUnpaid
	switch {
	case participant.FeeWaived || newPaid >= participant.AmountOwed:
		status = PaymentPaid
	case newPaid > 0:
		status = PaymentPartiallyPaid
	}

	updated, err := queries.UpdateParticipantPayment(ctx, dbgen.UpdateParticipantPaymentParams{
		AmountOwed:    participant.AmountOwed,
		AmountPaid:    newPaid,
		PaymentStatus: status,
		ID:            participant.ID,
	})
	if err != nil {
		return dbgen.QueueParticipant{}, fmt.Errorf("update participant payment %s: %w", participant.ID, err)
	}
	if _, err := queries.CreatePayment(ctx, dbgen.CreatePaymentParams{
		ID:            uuid.NewString(),
		SessionID:     session.ID,
		ParticipantID: participant.ID,
		Amount:        applied,
		Method:        method,
		Reference:     nullString(reference),
		RecordedBy:    recordedBy,
	}); err != nil {
		return dbgen.QueueParticipant{}, fmt.Errorf("create payment row: %w", err)
	}
	return updated, nil
}

// OutstandingBalance returns what the user still owes for the session,
// in centavos. Zero for fully settled or waived participants.
func (e *Engine) OutstandingBalance(ctx context.Context, sessionID, userID string) (int64, error) {
	participant, err := e.db.Queries.GetLatestSessionParticipant(ctx, dbgen.GetLatestSessionParticipantParams{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: user %s", ErrParticipantNotFound, userID)
		}
		return 0, fmt.Errorf("load participant for %s: %w", userID, err)
	}
	return outstanding(participant), nil
}

// WaiveFee zeroes a participant's balance. Queue master only; a reason is
// required and kept on the audit trail.
func (e *Engine) WaiveFee(ctx context.Context, actor Actor, sessionID, participantID, reason string) (dbgen.QueueParticipant, error) {
	if reason == "" {
		return dbgen.QueueParticipant{}, fmt.Errorf("%w: a waiver reason is required", ErrInvalidInput)
	}
	var waived dbgen.QueueParticipant
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		session, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(session, actor); err != nil {
			return err
		}
		target, err := txdb.Queries.GetParticipant(ctx, participantID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
			}
			return fmt.Errorf("load participant %s: %w", participantID, err)
		}
		if target.SessionID != sessionID {
			return fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
		}

		waived, err = txdb.Queries.WaiveParticipantFee(ctx, dbgen.WaiveParticipantFeeParams{
			FeeWaivedBy:     nullString(actor.UserID),
			FeeWaivedReason: nullString(reason),
			ID:              participantID,
		})
		if err != nil {
			return fmt.Errorf("waive fee for %s: %w", participantID, err)
		}

		beforeState, err := marshalAuditState(map[string]any{
			"amount_owed":    target.AmountOwed,
			"payment_status": target.PaymentStatus,
		})
		if err != nil {
			return err
		}
		afterState, err := marshalAuditState(map[string]any{
			"amount_owed":    int64(0),
			"payment_status": PaymentPaid,
			"fee_waived":     true,
		})
		if err != nil {
			return err
		}
		if _, err := txdb.Queries.CreateQueueAuditLog(ctx, dbgen.CreateQueueAuditLogParams{
			SessionID:   sessionID,
			Action:      "fee_waived",
			ActorID:     actor.UserID,
			BeforeState: beforeState,
			AfterState:  afterState,
			Reason:      nullString(reason),
		}); err != nil {
			return fmt.Errorf("create audit log for session %s: %w", sessionID, err)
		}
		return nil
	})
	if err != nil {
		return dbgen.QueueParticipant{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_ledger").
		Str("session_id", sessionID).
		Str("participant_id", participantID).
		Str("waived_by", actor.UserID).
		Msg("Waived participant fee")
	return waived, nil
}

// ParticipantLine is one row of a session settlement summary.
type ParticipantLine struct {
	ParticipantID string          `json:"participant_id"`
	UserID        string          `json:"user_id"`
	Status        string          `json:"status"`
	GamesPlayed   int64           `json:"games_played"`
	GamesWon      int64           `json:"games_won"`
	AmountOwed    decimal.Decimal `json:"amount_owed"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus string          `json:"payment_status"`
	FeeWaived     bool            `json:"fee_waived"`
}

// SessionSummary is the settlement screen: every participant's games
// and money, plus session totals.
type SessionSummary struct {
	SessionID        string            `json:"session_id"`
	Status           string            `json:"status"`
	GamesCompleted   int               `json:"games_completed"`
	Participants     []ParticipantLine `json:"participants"`
	TotalOwed        decimal.Decimal   `json:"total_owed"`
	TotalPaid        decimal.Decimal   `json:"total_paid"`
	TotalOutstanding decimal.Decimal   `json:"total_outstanding"`
}

// Summary builds the settlement view of a session. Participants who left
// still appear: their balances survive departure.
func (e *Engine) Summary(ctx context.Context, sessionID string) (SessionSummary, error) {
	session, err := loadSession(ctx, e.db.Queries, sessionID)
	if err != nil {
		return SessionSummary{}, err
	}
	participants, err := e.db.Queries.ListSessionParticipants(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("list participants for %s: %w", sessionID, err)
	}
	games, err := e.db.Queries.ListSessionGames(ctx, sessionID)
	if err != nil {
		return SessionSummary{}, fmt.Errorf("list games for %s: %w", sessionID, err)
	}

	summary := SessionSummary{
		SessionID:    sessionID,
		Status:       EffectiveStatus(session, e.now()),
		Participants: make([]ParticipantLine, 0, len(participants)),
	}
	for _, game := range games {
		if game.Status == GameCompleted {
			summary.GamesCompleted++
		}
	}
	var totalOwed, totalPaid, totalOutstanding int64
	for _, p := range participants {
		due := outstanding(p)
		totalOwed += p.AmountOwed
		totalPaid += p.AmountPaid
		totalOutstanding += due
		summary.Participants = append(summary.Participants, ParticipantLine{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Status:        p.Status,
			GamesPlayed:   p.GamesPlayed,
			GamesWon:      p.GamesWon,
			AmountOwed:    decimal.New(p.AmountOwed, -2),
			AmountPaid:    decimal.New(p.AmountPaid, -2),
			Outstanding:   decimal.New(due, -2),
			PaymentStatus: p.PaymentStatus,
			FeeWaived:     p.FeeWaived,
		})
	}
	summary.TotalOwed = decimal.New(totalOwed, -2)
	summary.TotalPaid = decimal.New(totalPaid, -2)
	summary.TotalOutstanding = decimal.New(totalOutstanding, -2)
	return summary, nil
}

// CreateCheckout opens a hosted e-wallet checkout for the actor's own
// outstanding balance. Nothing on the ledger moves until the provider's
// webhook confirms payment.
func (e *Engine) CreateCheckout(ctx context.Context, actor Actor, sessionID string) (dbgen.Checkout, error) {
	if e.gateway == nil {
		return dbgen.Checkout{}, fmt.Errorf("%w: e-wallet payments are not configured", ErrInvalidState)
	}

	session, err := loadSession(ctx, e.db.Queries, sessionID)
	if err != nil {
		return dbgen.Checkout{}, err
	}
	participant, err := e.db.Queries.GetLatestSessionParticipant(ctx, dbgen.GetLatestSessionParticipantParams{
		SessionID: sessionID,
		UserID:    actor.UserID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Checkout{}, fmt.Errorf("%w: user %s", ErrParticipantNotFound, actor.UserID)
		}
		return dbgen.Checkout{}, fmt.Errorf("load participant for %s: %w", actor.UserID, err)
	}
	balance := outstanding(participant)
	if balance <= 0 {
		return dbgen.Checkout{}, fmt.Errorf("%w: nothing outstanding", ErrInvalidState)
	}

	// Provider call stays outside any transaction: it is slow and remote.
	checkout, err := e.gateway.CreateCheckout(ctx, CheckoutRequest{
		Amount:      balance,
		Description: fmt.Sprintf("Court fees for queue session %s", session.ID),
		ReferenceID: participant.ID,
	})
	if err != nil {
		return dbgen.Checkout{}, fmt.Errorf("create provider checkout: %w", err)
	}

	row, err := e.db.Queries.CreateCheckout(ctx, dbgen.CreateCheckoutParams{
		ID:          uuid.NewString(),
		SourceID:    checkout.SourceID,
		SessionID:   sessionID,
		UserID:      actor.UserID,
		Amount:      balance,
		CheckoutUrl: checkout.CheckoutURL,
	})
	if err != nil {
		return dbgen.Checkout{}, fmt.Errorf("persist checkout %s: %w", checkout.SourceID, err)
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_ledger").
		Str("session_id", sessionID).
		Str("user_id", actor.UserID).
		Str("source_id", checkout.SourceID).
		Str("amount", FormatCentavos(balance)).
		Msg("Created e-wallet checkout")
	return row, nil
}

// ConfirmCheckout resolves a checkout from a provider webhook. Only a
// chargeable/paid event settles the ledger; failed and expired just close the
// checkout. Replayed events are idempotent no-ops.
func (e *Engine) ConfirmCheckout(ctx context.Context, sourceID, providerStatus string) (dbgen.Checkout, error) {
	var confirmed dbgen.Checkout
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		checkout, err := txdb.Queries.GetCheckoutBySource(ctx, sourceID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: source %s", ErrCheckoutNotFound, sourceID)
			}
			return fmt.Errorf("load checkout %s: %w", sourceID, err)
		}
		if checkout.Status != CheckoutPending {
			// Webhook replay. Keep the first resolution.
			confirmed = checkout
			return nil
		}

		status := CheckoutFailed
		switch providerStatus {
		case "chargeable", "paid":
			status = CheckoutPaid
		case "expired":
			status = CheckoutExpired
		}

		if status == CheckoutPaid {
			session, err := loadSession(ctx, txdb.Queries, checkout.SessionID)
			if err != nil {
				return err
			}
			if _, err := applyPayment(ctx, txdb.Queries, session, checkout.UserID, checkout.Amount, MethodEWallet, sourceID, checkout.UserID, e.now()); err != nil {
				// The participant may have settled in cash while the
				// checkout was open: clamp instead of dropping the money.
				if errors.Is(err, ErrOverpayment) {
					balance, berr := txdb.Queries.GetLatestSessionParticipant(ctx, dbgen.GetLatestSessionParticipantParams{
						SessionID: checkout.SessionID,
						UserID:    checkout.UserID,
					})
					if berr != nil {
						return fmt.Errorf("reload participant for %s: %w", checkout.UserID, berr)
					}
					// Apply whatever is still due, even zero: the provider
					// collected the full checkout amount, so a payment row
					// must exist to show where the money went and what is
					// owed back.
					if _, aerr := applyPayment(ctx, txdb.Queries, session, checkout.UserID, outstanding(balance), MethodEWallet, sourceID, checkout.UserID, e.now()); aerr != nil {
						return aerr
					}
				} else {
					return err
				}
			}
		}

		confirmed, err = txdb.Queries.UpdateCheckoutStatus(ctx, dbgen.UpdateCheckoutStatusParams{
			Status:      status,
			ConfirmedAt: sql.NullTime{Time: e.now(), Valid: true},
			SourceID:    sourceID,
		})
		if err != nil {
			return fmt.Errorf("update checkout %s: %w", sourceID, err)
		}
		return nil
	})
	if err != nil {
		return dbgen.Checkout{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_ledger").
		Str("source_id", sourceID).
		Str("provider_status", providerStatus).
		Str("status", confirmed.Status).
		Msg("Confirmed checkout")
	return confirmed, nil
}

// Payments lists the settlement entries recorded for a participant.
func (e *Engine) Payments(ctx context.Context, participantID string) ([]dbgen.Payment, error) {
	payments, err := e.db.Queries.ListParticipantPayments(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("list payments for %s: %w", participantID, err)
	}
	return payments, nil
}

func outstanding(p dbgen.QueueParticipant) int64 {
	if p.FeeWaived {
		return 0
	}
	due := p.AmountOwed - p.AmountPaid
	if due < 0 {
		return 0
	}
	return due
}
