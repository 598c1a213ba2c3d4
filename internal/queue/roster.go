package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

// Join appends the caller to the end of the waiting order. Capacity, duplicate
// and joinability checks all run against the transaction's own reads, so two
// racing joins for the last slot cannot both pass.
func (e *Engine) Join(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueParticipant, error) {
	var participant dbgen.QueueParticipant
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		session, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if !isJoinable(EffectiveStatus(session, e.now())) {
			return fmt.Errorf("%w: session is %s", ErrNotJoinable, EffectiveStatus(session, e.now()))
		}

		if _, err := txdb.Queries.GetSessionParticipantByUser(ctx, dbgen.GetSessionParticipantByUserParams{
			SessionID: sessionID,
			UserID:    actor.UserID,
		}); err == nil {
			return fmt.Errorf("%w: user %s", ErrAlreadyJoined, actor.UserID)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check existing participant: %w", err)
		}

		active, err := txdb.Queries.CountActiveParticipants(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("count active participants: %w", err)
		}
		if active >= session.MaxPlayers {
			return fmt.Errorf("%w: %d of %d slots taken", ErrRosterFull, active, session.MaxPlayers)
		}

		maxPosition, err := txdb.Queries.MaxWaitingPosition(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("max waiting position: %w", err)
		}

		participant, err = txdb.Queries.CreateParticipant(ctx, dbgen.CreateParticipantParams{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			UserID:    actor.UserID,
			Position:  sql.NullInt64{Int64: maxPosition + 1, Valid: true},
			JoinedAt:  e.now(),
		})
		if err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return dbgen.QueueParticipant{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("user_id", actor.UserID).
		Int64("position", participant.Position.Int64).
		Msg("Participant joined queue")
	return participant, nil
}

// Leave marks the caller's participant row as left and recompacts the waiting
// order in the same transaction. Outstanding balances survive on the ledger.
func (e *Engine) Leave(ctx context.Context, actor Actor, sessionID string) (dbgen.QueueParticipant, error) {
	return e.depart(ctx, sessionID, actor.UserID)
}

// RemoveParticipant lets the queue master eject a participant from the queue.
func (e *Engine) RemoveParticipant(ctx context.Context, actor Actor, sessionID, participantID string) (dbgen.QueueParticipant, error) {
	var removed dbgen.QueueParticipant
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
		if target.SessionID != sessionID || target.Status == ParticipantLeft {
			return fmt.Errorf("%w: %s", ErrParticipantNotFound, participantID)
		}

		removed, err = e.markLeft(ctx, txdb.Queries, target)
		return err
	})
	if err != nil {
		return dbgen.QueueParticipant{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("participant_id", participantID).
		Str("removed_by", actor.UserID).
		Msg("Participant removed from queue")
	return removed, nil
}

func (e *Engine) depart(ctx context.Context, sessionID, userID string) (dbgen.QueueParticipant, error) {
	var departed dbgen.QueueParticipant
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		participant, err := txdb.Queries.GetSessionParticipantByUser(ctx, dbgen.GetSessionParticipantByUserParams{
			SessionID: sessionID,
			UserID:    userID,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: user %s is not in the queue", ErrParticipantNotFound, userID)
			}
			return fmt.Errorf("load participant: %w", err)
		}

		departed, err = e.markLeft(ctx, txdb.Queries, participant)
		return err
	})
	if err != nil {
		return dbgen.QueueParticipant{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("user_id", userID).
		Int64("amount_owed", departed.AmountOwed).
		Msg("Participant left queue")
	return departed, nil
}

// markLeft transitions a participant to left and recompacts the waiting
// positions. Must run inside the caller's transaction.
func (e *Engine) markLeft(ctx context.Context, queries *dbgen.Queries, participant dbgen.QueueParticipant) (dbgen.QueueParticipant, error) {
	left, err := queries.MarkParticipantLeft(ctx, dbgen.MarkParticipantLeftParams{
		LeftAt: sql.NullTime{Time: e.now(), Valid: true},
		ID:     participant.ID,
	})
	if err != nil {
		return dbgen.QueueParticipant{}, fmt.Errorf("mark participant %s left: %w", participant.ID, err)
	}
	if err := recompactPositions(ctx, queries, participant.SessionID); err != nil {
		return dbgen.QueueParticipant{}, err
	}
	return left, nil
}

// recompactPositions rewrites the waiting order as 1..k with no gaps,
// preserving the existing relative order. Always computed from the current
// transaction's read, never from a stale snapshot.
func recompactPositions(ctx context.Context, queries *dbgen.Queries, sessionID string) error {
	waiting, err := queries.ListWaitingParticipants(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("list waiting participants: %w", err)
	}
	for idx, participant := range waiting {
		want := int64(idx + 1)
		if participant.Position.Valid && participant.Position.Int64 == want {
			continue
		}
		if err := queries.UpdateParticipantPosition(ctx, dbgen.UpdateParticipantPositionParams{
			Position: sql.NullInt64{Int64: want, Valid: true},
			ID:       participant.ID,
		}); err != nil {
			return fmt.Errorf("recompact position for %s: %w", participant.ID, err)
		}
	}
	return nil
}

// Position returns the caller's current rank among waiting participants, or
// false if the user is not waiting.
func (e *Engine) Position(ctx context.Context, sessionID, userID string) (int64, bool, error) {
	participant, err := e.db.Queries.GetSessionParticipantByUser(ctx, dbgen.GetSessionParticipantByUserParams{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load participant: %w", err)
	}
	if participant.Status != ParticipantWaiting || !participant.Position.Valid {
		return 0, false, nil
	}
	return participant.Position.Int64, true, nil
}

// Participants lists every participant row of a session in join order.
func (e *Engine) Participants(ctx context.Context, sessionID string) ([]dbgen.QueueParticipant, error) {
	participants, err := e.db.Queries.ListSessionParticipants(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list participants for %s: %w", sessionID, err)
	}
	return participants, nil
}
