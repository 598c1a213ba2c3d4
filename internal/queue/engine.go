package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	db "github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

// Caller roles supplied by the identity collaborator.
const (
	RolePlayer      = "player"
	RoleQueueMaster = "queue_master"
	RoleCourtAdmin  = "court_admin"
)

const (
	defaultApprovalTTL = 24 * time.Hour

	// Busy write transactions are retried with a fresh re-read before the
	// conflict is surfaced to the caller.
	txMaxAttempts = 3
)

// Actor identifies the authenticated caller of an engine operation.
type Actor struct {
	UserID string
	Role   string
}

// Engine owns the queue session domain: lifecycle, roster, rotation and the
// accrual ledger. All mutating operations run in a single transaction and
// re-validate their preconditions against that transaction's own reads.
type Engine struct {
	db          *db.DB
	notifier    Notifier
	gateway     CheckoutGateway
	approvalTTL time.Duration
	now         func() time.Time
}

type Option func(*Engine)

// WithNotifier wires the external notification collaborator.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithGateway wires the e-wallet payment gateway collaborator.
func WithGateway(g CheckoutGateway) Option {
	return func(e *Engine) { e.gateway = g }
}

// WithApprovalTTL overrides the pending-approval window.
func WithApprovalTTL(ttl time.Duration) Option {
	return func(e *Engine) { e.approvalTTL = ttl }
}

// WithClock overrides the engine clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func NewEngine(database *db.DB, opts ...Option) (*Engine, error) {
	if database == nil {
		return nil, errors.New("queue engine requires a database")
	}
	e := &Engine{
		db:          database,
		approvalTTL: defaultApprovalTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// runInTx wraps db.RunInTx with a bounded retry on lock contention.
func (e *Engine) runInTx(ctx context.Context, fn func(*db.DB) error) error {
	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = e.db.RunInTx(ctx, fn)
		if err == nil || !isBusy(err) {
			return err
		}
		log.Ctx(ctx).Debug().Err(err).Int("attempt", attempt).Msg("Retrying busy transaction")
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return fmt.Errorf("%w: %v", ErrContended, err)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// CreateSessionParams carries queue master input for a new session.
type CreateSessionParams struct {
	CourtID     string
	Mode        string
	GameFormat  string
	MaxPlayers  int64
	CostPerGame int64
	StartTime   time.Time
	EndTime     time.Time
}

func (p CreateSessionParams) validate() error {
	if p.CourtID == "" {
		return fmt.Errorf("%w: court id is required", ErrInvalidInput)
	}
	if p.MaxPlayers <= 0 {
		return fmt.Errorf("%w: max players must be positive", ErrInvalidInput)
	}
	if p.CostPerGame < 0 {
		return fmt.Errorf("%w: cost per game must not be negative", ErrInvalidInput)
	}
	if !p.StartTime.Before(p.EndTime) {
		return fmt.Errorf("%w: start time must be before end time", ErrInvalidInput)
	}
	if p.Mode != ModeOpen && p.Mode != ModePrivate {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidInput, p.Mode)
	}
	if p.GameFormat != FormatSingles && p.GameFormat != FormatDoubles {
		return fmt.Errorf("%w: unknown game format %q", ErrInvalidInput, p.GameFormat)
	}
	return nil
}

// CreateSession validates the config and creates a session in draft, or in
// pending_approval with the approval TTL set when the venue requires admin
// approval.
func (e *Engine) CreateSession(ctx context.Context, actor Actor, params CreateSessionParams) (dbgen.QueueSession, error) {
	if actor.Role != RoleQueueMaster {
		return dbgen.QueueSession{}, fmt.Errorf("%w: only a queue master may create sessions", ErrUnauthorized)
	}
	if err := params.validate(); err != nil {
		return dbgen.QueueSession{}, err
	}

	var session dbgen.QueueSession
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		court, err := txdb.Queries.GetCourtWithVenue(ctx, params.CourtID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: court %s not found", ErrInvalidInput, params.CourtID)
			}
			return fmt.Errorf("load court %s: %w", params.CourtID, err)
		}
		if court.VenueStatus != "active" || court.Status != "active" {
			return fmt.Errorf("%w: court is not part of an active venue", ErrInvalidInput)
		}

		status := StatusDraft
		var expiresAt sql.NullTime
		if court.RequiresApproval {
			status = StatusPendingApproval
			expiresAt = sql.NullTime{Time: e.now().Add(e.approvalTTL), Valid: true}
		}

		session, err = txdb.Queries.CreateQueueSession(ctx, dbgen.CreateQueueSessionParams{
			ID:                uuid.NewString(),
			CourtID:           params.CourtID,
			OrganizerID:       actor.UserID,
			Mode:              params.Mode,
			GameFormat:        params.GameFormat,
			MaxPlayers:        params.MaxPlayers,
			CostPerGame:       params.CostPerGame,
			Status:            status,
			ApprovalExpiresAt: expiresAt,
			StartTime:         params.StartTime,
			EndTime:           params.EndTime,
		})
		if err != nil {
			return fmt.Errorf("create queue session: %w", err)
		}
		return auditTransition(ctx, txdb.Queries, session.ID, "created", actor.UserID, "", status, "")
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", session.ID).
		Str("court_id", session.CourtID).
		Str("status", session.Status).
		Msg("Created queue session")
	return session, nil
}

// SubmitForApproval moves a draft into pending_approval and starts the
// approval TTL.
func (e *Engine) SubmitForApproval(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	var session dbgen.QueueSession
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(current, actor); err != nil {
			return err
		}
		if current.Status != StatusDraft {
			return fmt.Errorf("%w: cannot submit from %s", ErrInvalidState, current.Status)
		}

		session, err = txdb.Queries.SetQueueSessionSubmitted(ctx, dbgen.SetQueueSessionSubmittedParams{
			ApprovalExpiresAt: sql.NullTime{Time: e.now().Add(e.approvalTTL), Valid: true},
			ID:                sessionID,
		})
		if err != nil {
			return fmt.Errorf("submit session %s: %w", sessionID, err)
		}
		return auditTransition(ctx, txdb.Queries, sessionID, "submitted", actor.UserID, StatusDraft, StatusPendingApproval, "")
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	return session, nil
}

// Approve moves a pending session to open. Re-approving an already approved
// session is a no-op success; approving past the TTL fails.
func (e *Engine) Approve(ctx context.Context, actor Actor, sessionID, notes string) (dbgen.QueueSession, error) {
	var session dbgen.QueueSession
	var events []Event
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		events = events[:0]
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireVenueAdmin(ctx, txdb.Queries, current, actor); err != nil {
			return err
		}
		if current.ApprovalStatus.Valid && current.ApprovalStatus.String == "approved" {
			session = current
			return nil
		}
		effective := EffectiveStatus(current, e.now())
		if effective == StatusExpired {
			return fmt.Errorf("%w: session %s", ErrApprovalExpired, sessionID)
		}
		if effective != StatusPendingApproval {
			return fmt.Errorf("%w: cannot approve from %s", ErrInvalidState, effective)
		}

		session, err = txdb.Queries.SetQueueSessionApproval(ctx, dbgen.SetQueueSessionApprovalParams{
			Status:         StatusOpen,
			ApprovalStatus: sql.NullString{String: "approved", Valid: true},
			ApprovedBy:     sql.NullString{String: actor.UserID, Valid: true},
			ApprovalNotes:  nullString(notes),
			ID:             sessionID,
		})
		if err != nil {
			return fmt.Errorf("approve session %s: %w", sessionID, err)
		}
		events = append(events, Event{
			Type:      EventSessionApproved,
			UserID:    session.OrganizerID,
			SessionID: session.ID,
			Message:   "Your queue session has been approved",
		})
		return auditTransition(ctx, txdb.Queries, sessionID, "approved", actor.UserID, StatusPendingApproval, StatusOpen, notes)
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	e.emit(ctx, events)
	return session, nil
}

// Reject moves a pending session to rejected. A non-empty reason is required.
func (e *Engine) Reject(ctx context.Context, actor Actor, sessionID, reason string) (dbgen.QueueSession, error) {
	if reason == "" {
		return dbgen.QueueSession{}, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}

	var session dbgen.QueueSession
	var events []Event
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		events = events[:0]
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireVenueAdmin(ctx, txdb.Queries, current, actor); err != nil {
			return err
		}
		if current.Status == StatusRejected {
			session = current
			return nil
		}
		effective := EffectiveStatus(current, e.now())
		if effective != StatusPendingApproval {
			return fmt.Errorf("%w: cannot reject from %s", ErrInvalidState, effective)
		}

		session, err = txdb.Queries.SetQueueSessionRejected(ctx, dbgen.SetQueueSessionRejectedParams{
			ApprovedBy:      sql.NullString{String: actor.UserID, Valid: true},
			RejectionReason: sql.NullString{String: reason, Valid: true},
			ID:              sessionID,
		})
		if err != nil {
			return fmt.Errorf("reject session %s: %w", sessionID, err)
		}
		events = append(events, Event{
			Type:      EventSessionRejected,
			UserID:    session.OrganizerID,
			SessionID: session.ID,
			Message:   fmt.Sprintf("Your queue session was rejected: %s", reason),
		})
		return auditTransition(ctx, txdb.Queries, sessionID, "rejected", actor.UserID, StatusPendingApproval, StatusRejected, reason)
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	e.emit(ctx, events)
	return session, nil
}

// OpenSession moves a draft straight to open for venues that do not require
// admin approval.
func (e *Engine) OpenSession(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	return e.transition(ctx, actor, sessionID, StatusOpen, "opened")
}

// Activate marks an open session as actively running.
func (e *Engine) Activate(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	return e.transition(ctx, actor, sessionID, StatusActive, "activated")
}

// Pause suspends joins for an active session.
func (e *Engine) Pause(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	return e.transition(ctx, actor, sessionID, StatusPaused, "paused")
}

// Resume returns a paused session to active.
func (e *Engine) Resume(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	return e.transition(ctx, actor, sessionID, StatusActive, "resumed")
}

func (e *Engine) transition(ctx context.Context, actor Actor, sessionID, target, action string) (dbgen.QueueSession, error) {
	var session dbgen.QueueSession
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(current, actor); err != nil {
			return err
		}
		effective := EffectiveStatus(current, e.now())
		if !canTransition(effective, target) {
			return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, effective, target)
		}
		if target == StatusOpen {
			// Only the venue admin's Approve moves a pending session to
			// open; the direct path is for no-approval venues.
			if current.Status == StatusPendingApproval {
				return fmt.Errorf("%w: venue requires approval before opening", ErrInvalidState)
			}
			court, err := txdb.Queries.GetCourtWithVenue(ctx, current.CourtID)
			if err != nil {
				return fmt.Errorf("load court %s: %w", current.CourtID, err)
			}
			if court.RequiresApproval {
				return fmt.Errorf("%w: venue requires approval before opening", ErrInvalidState)
			}
		}

		session, err = txdb.Queries.UpdateQueueSessionStatus(ctx, dbgen.UpdateQueueSessionStatusParams{
			Status: target,
			ID:     sessionID,
		})
		if err != nil {
			return fmt.Errorf("update session %s status: %w", sessionID, err)
		}
		return auditTransition(ctx, txdb.Queries, sessionID, action, actor.UserID, effective, target, "")
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("status", session.Status).
		Msg("Queue session transitioned")
	return session, nil
}

// Close terminates the session and settles the remaining roster: every
// waiting or playing participant is marked left at their current accrued
// balance, and an in-flight game is abandoned without accrual.
func (e *Engine) Close(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueSession, error) {
	var session dbgen.QueueSession
	var events []Event
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		events = events[:0]
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(current, actor); err != nil {
			return err
		}
		effective := EffectiveStatus(current, e.now())
		if !canTransition(effective, StatusClosed) {
			return fmt.Errorf("%w: cannot close from %s", ErrInvalidState, effective)
		}

		now := e.now()

		// Abandon any in-flight game before settling the roster. Its fee is
		// never accrued; close settles at current games played (no partial
		// game charges).
		activeGame, err := txdb.Queries.GetSessionActiveGame(ctx, sessionID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load active game for %s: %w", sessionID, err)
		}
		if err == nil {
			if _, err := txdb.Queries.SetGameStatus(ctx, dbgen.SetGameStatusParams{
				Status:  GameAbandoned,
				EndedAt: sql.NullTime{Time: now, Valid: true},
				ID:      activeGame.ID,
			}); err != nil {
				return fmt.Errorf("abandon game %s: %w", activeGame.ID, err)
			}
		}

		remaining, err := txdb.Queries.ListActiveParticipants(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("list remaining participants for %s: %w", sessionID, err)
		}
		for _, participant := range remaining {
			settled, err := txdb.Queries.MarkParticipantLeft(ctx, dbgen.MarkParticipantLeftParams{
				LeftAt: sql.NullTime{Time: now, Valid: true},
				ID:     participant.ID,
			})
			if err != nil {
				return fmt.Errorf("settle participant %s: %w", participant.ID, err)
			}
			if due := outstanding(settled); due > 0 {
				events = append(events, Event{
					Type:      EventPaymentDue,
					UserID:    settled.UserID,
					SessionID: sessionID,
					Message:   fmt.Sprintf("Session closed with an outstanding balance of %s", FormatCentavos(due)),
				})
			}
		}

		session, err = txdb.Queries.CloseQueueSession(ctx, dbgen.CloseQueueSessionParams{
			ClosedBy: sql.NullString{String: actor.UserID, Valid: true},
			ClosedAt: sql.NullTime{Time: now, Valid: true},
			ID:       sessionID,
		})
		if err != nil {
			return fmt.Errorf("close session %s: %w", sessionID, err)
		}
		events = append(events, Event{
			Type:      EventSessionClosed,
			UserID:    session.OrganizerID,
			SessionID: sessionID,
			Message:   "Queue session closed",
		})
		return auditTransition(ctx, txdb.Queries, sessionID, "closed", actor.UserID, effective, StatusClosed, "")
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	e.emit(ctx, events)

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Msg("Closed queue session")
	return session, nil
}

// Cancel aborts the session from any non-terminal state. Unlike Close it does
// not settle the roster; ledger state is recorded as-is.
func (e *Engine) Cancel(ctx context.Context, actor Actor, sessionID, reason string) (dbgen.QueueSession, error) {
	var session dbgen.QueueSession
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		current, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(current, actor); err != nil {
			return err
		}
		effective := EffectiveStatus(current, e.now())
		if IsTerminal(effective) {
			return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidState, effective)
		}

		session, err = txdb.Queries.CancelQueueSession(ctx, dbgen.CancelQueueSessionParams{
			CancelReason: nullString(reason),
			ID:           sessionID,
		})
		if err != nil {
			return fmt.Errorf("cancel session %s: %w", sessionID, err)
		}
		return auditTransition(ctx, txdb.Queries, sessionID, "cancelled", actor.UserID, effective, StatusCancelled, reason)
	})
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	return session, nil
}

// GetSession returns the session with its effective (lazily expired) status.
func (e *Engine) GetSession(ctx context.Context, sessionID string) (dbgen.QueueSession, error) {
	session, err := loadSession(ctx, e.db.Queries, sessionID)
	if err != nil {
		return dbgen.QueueSession{}, err
	}
	session.Status = EffectiveStatus(session, e.now())
	return session, nil
}

// ListCourtSessions returns a court's sessions, newest first, with effective
// statuses applied.
func (e *Engine) ListCourtSessions(ctx context.Context, courtID string) ([]dbgen.QueueSession, error) {
	sessions, err := e.db.Queries.ListCourtSessions(ctx, courtID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for court %s: %w", courtID, err)
	}
	now := e.now()
	for i := range sessions {
		sessions[i].Status = EffectiveStatus(sessions[i], now)
	}
	return sessions, nil
}

// ListOrganizerSessions returns a queue master's sessions, newest first.
func (e *Engine) ListOrganizerSessions(ctx context.Context, organizerID string) ([]dbgen.QueueSession, error) {
	sessions, err := e.db.Queries.ListOrganizerSessions(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list sessions for organizer %s: %w", organizerID, err)
	}
	now := e.now()
	for i := range sessions {
		sessions[i].Status = EffectiveStatus(sessions[i], now)
	}
	return sessions, nil
}

// AuditLog returns a session's audit trail in chronological order.
func (e *Engine) AuditLog(ctx context.Context, sessionID string) ([]dbgen.QueueAuditLog, error) {
	entries, err := e.db.Queries.ListSessionAuditLog(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list audit log for %s: %w", sessionID, err)
	}
	return entries, nil
}

func loadSession(ctx context.Context, queries *dbgen.Queries, sessionID string) (dbgen.QueueSession, error) {
	session, err := queries.GetQueueSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.QueueSession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return dbgen.QueueSession{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return session, nil
}

func requireOrganizer(session dbgen.QueueSession, actor Actor) error {
	if session.OrganizerID != actor.UserID {
		return fmt.Errorf("%w: only the queue master may do this", ErrUnauthorized)
	}
	return nil
}

func requireVenueAdmin(ctx context.Context, queries *dbgen.Queries, session dbgen.QueueSession, actor Actor) error {
	if actor.Role != RoleCourtAdmin {
		return fmt.Errorf("%w: court admin role required", ErrUnauthorized)
	}
	court, err := queries.GetCourtWithVenue(ctx, session.CourtID)
	if err != nil {
		return fmt.Errorf("load court %s: %w", session.CourtID, err)
	}
	if court.VenueAdminID != actor.UserID {
		return fmt.Errorf("%w: not an admin of this venue", ErrUnauthorized)
	}
	return nil
}

func auditTransition(ctx context.Context, queries *dbgen.Queries, sessionID, action, actorID, before, after, reason string) error {
	beforeState, err := marshalAuditState(map[string]any{"status": before})
	if err != nil {
		return err
	}
	afterState, err := marshalAuditState(map[string]any{"status": after})
	if err != nil {
		return err
	}
	if _, err := queries.CreateQueueAuditLog(ctx, dbgen.CreateQueueAuditLogParams{
		SessionID:   sessionID,
		Action:      action,
		ActorID:     actorID,
		BeforeState: beforeState,
		AfterState:  afterState,
		Reason:      nullString(reason),
	}); err != nil {
		return fmt.Errorf("create audit log for session %s: %w", sessionID, err)
	}
	return nil
}

func marshalAuditState(state map[string]any) (sql.NullString, error) {
	if len(state) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal audit state: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
