package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/testutil"
)

func seedCourt(t *testing.T, database *db.DB) string {
	t.Helper()
	ctx := context.Background()
	venue, err := database.Queries.CreateVenue(ctx, dbgen.CreateVenueParams{
		ID:      "venue-" + t.Name(),
		Name:    "Test Venue",
		Status:  "active",
		AdminID: "admin-1",
	})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}
	court, err := database.Queries.CreateCourt(ctx, dbgen.CreateCourtParams{
		ID:      "court-" + t.Name(),
		VenueID: venue.ID,
		Name:    "Court 1",
		Status:  "active",
	})
	if err != nil {
		t.Fatalf("create court: %v", err)
	}
	return court.ID
}

func seedSession(t *testing.T, database *db.DB, courtID, id, status string, approvalExpiresAt sql.NullTime, endTime time.Time) dbgen.QueueSession {
	t.Helper()
	session, err := database.Queries.CreateQueueSession(context.Background(), dbgen.CreateQueueSessionParams{
		ID:                id,
		CourtID:           courtID,
		OrganizerID:       "qm-1",
		Mode:              "open",
		GameFormat:        "doubles",
		MaxPlayers:        10,
		CostPerGame:       5000,
		Status:            status,
		ApprovalExpiresAt: approvalExpiresAt,
		StartTime:         endTime.Add(-4 * time.Hour),
		EndTime:           endTime,
	})
	if err != nil {
		t.Fatalf("seed session %s: %v", id, err)
	}
	return session
}

func TestExpireStaleSessions(t *testing.T) {
	database := testutil.NewTestDB(t)
	courtID := seedCourt(t, database)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Past its approval deadline.
	stalePending := seedSession(t, database, courtID, "s-stale-pending", "pending_approval",
		sql.NullTime{Time: now.Add(-time.Hour), Valid: true}, now.Add(8*time.Hour))
	// Deadline still ahead.
	freshPending := seedSession(t, database, courtID, "s-fresh-pending", "pending_approval",
		sql.NullTime{Time: now.Add(time.Hour), Valid: true}, now.Add(8*time.Hour))
	// Open session past its end time.
	lapsedOpen := seedSession(t, database, courtID, "s-lapsed-open", "open",
		sql.NullTime{}, now.Add(-time.Minute))
	// Open session still running.
	freshOpen := seedSession(t, database, courtID, "s-fresh-open", "open",
		sql.NullTime{}, now.Add(time.Hour))
	// Active sessions run until the organizer closes them.
	activePastEnd := seedSession(t, database, courtID, "s-active", "active",
		sql.NullTime{}, now.Add(-time.Minute))

	if err := ExpireStaleSessions(ctx, database, now); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	want := map[string]string{
		stalePending.ID:  "expired",
		freshPending.ID:  "pending_approval",
		lapsedOpen.ID:    "expired",
		freshOpen.ID:     "open",
		activePastEnd.ID: "active",
	}
	for id, status := range want {
		session, err := database.Queries.GetQueueSession(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if session.Status != status {
			t.Errorf("%s status = %q, want %q", id, session.Status, status)
		}
	}

	// The sweep leaves an audit trail attributed to the system.
	entries, err := database.Queries.ListSessionAuditLog(ctx, stalePending.ID)
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != "expired" || entries[0].ActorID != "system" {
		t.Errorf("audit entries = %+v, want one system expired entry", entries)
	}

	// A second sweep finds nothing left to do.
	if err := ExpireStaleSessions(ctx, database, now); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	entries, err = database.Queries.ListSessionAuditLog(ctx, stalePending.ID)
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("audit entries after rerun = %d, want 1", len(entries))
	}
}
