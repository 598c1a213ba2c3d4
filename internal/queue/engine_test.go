package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/testutil"
)

var (
	organizer  = Actor{UserID: "qm-1", Role: RoleQueueMaster}
	venueAdmin = Actor{UserID: "admin-1", Role: RoleCourtAdmin}
)

// testClock is a hand-advanced clock so ordering by timestamp is
// deterministic in tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *captureNotifier) Notify(_ context.Context, events ...Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, events...)
	return nil
}

func (n *captureNotifier) byType(eventType string) []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []Event
	for _, event := range n.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type testEnv struct {
	engine   *Engine
	clock    *testClock
	notifier *captureNotifier
}

func newTestEnv(t *testing.T, opts ...Option) testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	clock := newTestClock()
	notifier := &captureNotifier{}
	opts = append([]Option{WithClock(clock.Now), WithNotifier(notifier)}, opts...)
	engine, err := NewEngine(database, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return testEnv{engine: engine, clock: clock, notifier: notifier}
}

// seedCourt creates an active venue (admin "admin-1") with one active court
// and returns the court ID.
func seedCourt(t *testing.T, e *Engine, requiresApproval bool) string {
	t.Helper()
	ctx := context.Background()
	venue, err := e.db.Queries.CreateVenue(ctx, dbgen.CreateVenueParams{
		ID:               "venue-" + t.Name(),
		Name:             "Test Venue",
		Status:           "active",
		AdminID:          venueAdmin.UserID,
		RequiresApproval: requiresApproval,
	})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}
	court, err := e.db.Queries.CreateCourt(ctx, dbgen.CreateCourtParams{
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

func sessionParams(courtID string, clock *testClock) CreateSessionParams {
	start := clock.Now().Add(time.Hour)
	return CreateSessionParams{
		CourtID:     courtID,
		Mode:        ModeOpen,
		GameFormat:  FormatDoubles,
		MaxPlayers:  10,
		CostPerGame: 5000, // PHP 50.00
		StartTime:   start,
		EndTime:     start.Add(4 * time.Hour),
	}
}

// openSession creates a session on a no-approval court and opens it.
func openSession(t *testing.T, env testEnv, params CreateSessionParams) dbgen.QueueSession {
	t.Helper()
	ctx := context.Background()
	session, err := env.engine.CreateSession(ctx, organizer, params)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	session, err = env.engine.OpenSession(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return session
}

func TestCreateSession_DraftWithoutApproval(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)

	session, err := env.engine.CreateSession(context.Background(), organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.Status != StatusDraft {
		t.Errorf("status = %q, want draft", session.Status)
	}
	if session.ApprovalExpiresAt.Valid {
		t.Error("no approval TTL should be set without approval requirement")
	}
}

func TestCreateSession_PendingWhenVenueRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, true)

	session, err := env.engine.CreateSession(context.Background(), organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.Status != StatusPendingApproval {
		t.Errorf("status = %q, want pending_approval", session.Status)
	}
	if !session.ApprovalExpiresAt.Valid {
		t.Error("approval TTL should be set")
	}
}

func TestCreateSession_Validation(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateSessionParams)
	}{
		{"zero max players", func(p *CreateSessionParams) { p.MaxPlayers = 0 }},
		{"negative cost", func(p *CreateSessionParams) { p.CostPerGame = -1 }},
		{"end before start", func(p *CreateSessionParams) { p.EndTime = p.StartTime.Add(-time.Hour) }},
		{"unknown mode", func(p *CreateSessionParams) { p.Mode = "tournament" }},
		{"unknown format", func(p *CreateSessionParams) { p.GameFormat = "triples" }},
		{"missing court", func(p *CreateSessionParams) { p.CourtID = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := sessionParams(courtID, env.clock)
			tc.mutate(&params)
			if _, err := env.engine.CreateSession(ctx, organizer, params); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := env.engine.CreateSession(ctx, Actor{UserID: "p-1", Role: RolePlayer}, sessionParams(courtID, env.clock)); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("player create err = %v, want ErrUnauthorized", err)
	}
}

func TestApprovalFlow(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, true)
	ctx := context.Background()

	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Organizer cannot approve their own session.
	if _, err := env.engine.Approve(ctx, organizer, session.ID, ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("organizer approve err = %v, want ErrUnauthorized", err)
	}

	approved, err := env.engine.Approve(ctx, venueAdmin, session.ID, "looks good")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != StatusOpen {
		t.Errorf("status = %q, want open", approved.Status)
	}
	if approved.ApprovalNotes.String != "looks good" {
		t.Errorf("notes = %q", approved.ApprovalNotes.String)
	}

	// Re-approval is an idempotent no-op.
	again, err := env.engine.Approve(ctx, venueAdmin, session.ID, "")
	if err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	if again.Status != StatusOpen {
		t.Errorf("re-approve status = %q, want open", again.Status)
	}

	if got := env.notifier.byType(EventSessionApproved); len(got) != 1 {
		t.Errorf("approved events = %d, want 1", len(got))
	}
}

func TestReject(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, true)
	ctx := context.Background()

	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	if _, err := env.engine.Reject(ctx, venueAdmin, session.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("empty reason err = %v, want ErrInvalidInput", err)
	}

	rejected, err := env.engine.Reject(ctx, venueAdmin, session.ID, "court double-booked")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}
	if rejected.RejectionReason.String != "court double-booked" {
		t.Errorf("reason = %q", rejected.RejectionReason.String)
	}
	if got := env.notifier.byType(EventSessionRejected); len(got) != 1 {
		t.Errorf("rejected events = %d, want 1", len(got))
	}
}

func TestApprove_AfterTTLExpires(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, true)
	ctx := context.Background()

	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	env.clock.Advance(25 * time.Hour)

	if _, err := env.engine.Approve(ctx, venueAdmin, session.ID, ""); !errors.Is(err, ErrApprovalExpired) {
		t.Errorf("approve err = %v, want ErrApprovalExpired", err)
	}

	// Reads observe expiry even before the sweep persists it.
	got, err := env.engine.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.Status != StatusExpired {
		t.Errorf("effective status = %q, want expired", got.Status)
	}
}

func TestLifecycleTransitions(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	active, err := env.engine.Activate(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if active.Status != StatusActive {
		t.Errorf("status = %q, want active", active.Status)
	}

	paused, err := env.engine.Pause(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if paused.Status != StatusPaused {
		t.Errorf("status = %q, want paused", paused.Status)
	}

	resumed, err := env.engine.Resume(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Status != StatusActive {
		t.Errorf("status = %q, want active", resumed.Status)
	}

	closed, err := env.engine.Close(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != StatusClosed {
		t.Errorf("status = %q, want closed", closed.Status)
	}

	// Terminal states accept nothing further.
	if _, err := env.engine.Activate(ctx, organizer, session.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("activate closed err = %v, want ErrInvalidState", err)
	}
	if _, err := env.engine.Cancel(ctx, organizer, session.ID, "too late"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("cancel closed err = %v, want ErrInvalidState", err)
	}
}

func TestOpen_RefusedWhenVenueRequiresApproval(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, true)
	ctx := context.Background()

	// Build a draft on an approval-required court via submit-less creation:
	// pending_approval sessions cannot use the direct open path either.
	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := env.engine.OpenSession(ctx, organizer, session.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("open err = %v, want ErrInvalidState", err)
	}
}

func TestSubmitForApproval(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()

	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	submitted, err := env.engine.SubmitForApproval(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if submitted.Status != StatusPendingApproval {
		t.Errorf("status = %q, want pending_approval", submitted.Status)
	}
	if !submitted.ApprovalExpiresAt.Valid {
		t.Error("submit should start the approval TTL")
	}

	if _, err := env.engine.SubmitForApproval(ctx, organizer, session.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double submit err = %v, want ErrInvalidState", err)
	}
}

func TestCancel_FromAnyNonTerminalState(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	cancelled, err := env.engine.Cancel(ctx, organizer, session.ID, "rained out")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason.String != "rained out" {
		t.Errorf("reason = %q", cancelled.CancelReason.String)
	}
}

func TestGetSession_NotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.GetSession(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestAuditLog_RecordsTransitions(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	if _, err := env.engine.Activate(ctx, organizer, session.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	entries, err := env.engine.AuditLog(ctx, session.ID)
	if err != nil {
		t.Fatalf("audit log: %v", err)
	}
	var actions []string
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	want := []string{"created", "opened", "activated"}
	if len(actions) != len(want) {
		t.Fatalf("actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("action[%d] = %q, want %q", i, actions[i], want[i])
		}
	}
}
