package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

const (
	sessionStatusExpired = "expired"
	sweepActorID         = "system"
)

// ExpireStaleSessions persists the expired state for sessions whose window
// has lapsed: pending_approval past the approval deadline and open sessions
// past their end time. Readers already see these as expired through the
// lazy effective-status check; the sweep makes the rows match.
func ExpireStaleSessions(ctx context.Context, database *db.DB, now time.Time) error {
	if database == nil {
		return fmt.Errorf("session expiry sweep requires database")
	}

	lapsedApprovals, err := database.Queries.ListExpiredApprovalSessions(ctx, sql.NullTime{Time: now, Valid: true})
	if err != nil {
		return fmt.Errorf("list expired approval sessions: %w", err)
	}
	lapsedOpen, err := database.Queries.ListLapsedOpenSessions(ctx, now)
	if err != nil {
		return fmt.Errorf("list lapsed open sessions: %w", err)
	}

	logger := log.Ctx(ctx)
	expired := 0
	for _, session := range append(lapsedApprovals, lapsedOpen...) {
		session := session
		err := database.RunInTx(ctx, func(txdb *db.DB) error {
			if _, err := txdb.Queries.UpdateQueueSessionStatus(ctx, dbgen.UpdateQueueSessionStatusParams{
				Status: sessionStatusExpired,
				ID:     session.ID,
			}); err != nil {
				return fmt.Errorf("mark session expired: %w", err)
			}
			before, _ := json.Marshal(map[string]string{"status": session.Status})
			after, _ := json.Marshal(map[string]string{"status": sessionStatusExpired})
			if _, err := txdb.Queries.CreateQueueAuditLog(ctx, dbgen.CreateQueueAuditLogParams{
				SessionID:   session.ID,
				Action:      "expired",
				ActorID:     sweepActorID,
				BeforeState: sql.NullString{String: string(before), Valid: true},
				AfterState:  sql.NullString{String: string(after), Valid: true},
			}); err != nil {
				return fmt.Errorf("create audit log: %w", err)
			}
			return nil
		})
		if err != nil {
			logger.Error().Err(err).
				Str("session_id", session.ID).
				Str("previous_status", session.Status).
				Msg("Failed to expire session")
			continue
		}
		expired++
		logger.Info().
			Str("session_id", session.ID).
			Str("previous_status", session.Status).
			Msg("Expired session")
	}

	if expired > 0 || len(lapsedApprovals)+len(lapsedOpen) > 0 {
		logger.Debug().
			Int("expired", expired).
			Int("candidates", len(lapsedApprovals)+len(lapsedOpen)).
			Msg("Session expiry sweep completed")
	}
	return nil
}
