package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"

	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

func player(n int) Actor {
	return Actor{UserID: fmt.Sprintf("player-%d", n), Role: RolePlayer}
}

func joinN(t *testing.T, env testEnv, sessionID string, n int) []dbgen.QueueParticipant {
	t.Helper()
	participants := make([]dbgen.QueueParticipant, 0, n)
	for i := 1; i <= n; i++ {
		p, err := env.engine.Join(context.Background(), player(i), sessionID)
		if err != nil {
			t.Fatalf("join player-%d: %v", i, err)
		}
		participants = append(participants, p)
	}
	return participants
}

func TestJoin_AssignsFIFOPositions(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	session := openSession(t, env, sessionParams(courtID, env.clock))

	participants := joinN(t, env, session.ID, 3)
	for i, p := range participants {
		want := int64(i + 1)
		if !p.Position.Valid || p.Position.Int64 != want {
			t.Errorf("player-%d position = %v, want %d", i+1, p.Position, want)
		}
		if p.Status != ParticipantWaiting {
			t.Errorf("player-%d status = %q, want waiting", i+1, p.Status)
		}
	}
}

func TestJoin_Rejections(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()

	params := sessionParams(courtID, env.clock)
	params.MaxPlayers = 2
	session := openSession(t, env, params)

	joinN(t, env, session.ID, 2)

	if _, err := env.engine.Join(ctx, player(1), session.ID); !errors.Is(err, ErrAlreadyJoined) {
		t.Errorf("duplicate join err = %v, want ErrAlreadyJoined", err)
	}
	if _, err := env.engine.Join(ctx, player(3), session.ID); !errors.Is(err, ErrRosterFull) {
		t.Errorf("full roster err = %v, want ErrRosterFull", err)
	}
}

func TestJoin_OnlyOpenOrActive(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()

	session, err := env.engine.CreateSession(ctx, organizer, sessionParams(courtID, env.clock))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := env.engine.Join(ctx, player(1), session.ID); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("draft join err = %v, want ErrNotJoinable", err)
	}

	if _, err := env.engine.OpenSession(ctx, organizer, session.ID); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := env.engine.Activate(ctx, organizer, session.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if _, err := env.engine.Pause(ctx, organizer, session.ID); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := env.engine.Join(ctx, player(1), session.ID); !errors.Is(err, ErrNotJoinable) {
		t.Errorf("paused join err = %v, want ErrNotJoinable", err)
	}
}

func TestLeave_RecompactsPositions(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	joinN(t, env, session.ID, 4)

	// Player 2 leaves; 3 and 4 shift up with no gap.
	left, err := env.engine.Leave(ctx, player(2), session.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if left.Status != ParticipantLeft {
		t.Errorf("status = %q, want left", left.Status)
	}
	if !left.LeftAt.Valid {
		t.Error("left_at should be set")
	}

	wantOrder := map[string]int64{"player-1": 1, "player-3": 2, "player-4": 3}
	participants, err := env.engine.Participants(ctx, session.ID)
	if err != nil {
		t.Fatalf("participants: %v", err)
	}
	for _, p := range participants {
		want, ok := wantOrder[p.UserID]
		if !ok {
			continue
		}
		if !p.Position.Valid || p.Position.Int64 != want {
			t.Errorf("%s position = %v, want %d", p.UserID, p.Position, want)
		}
	}
}

func TestLeave_NotInQueue(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	session := openSession(t, env, sessionParams(courtID, env.clock))

	if _, err := env.engine.Leave(context.Background(), player(9), session.ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("err = %v, want ErrParticipantNotFound", err)
	}
}

func TestRemoveParticipant(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	participants := joinN(t, env, session.ID, 2)

	// Only the queue master may remove.
	if _, err := env.engine.RemoveParticipant(ctx, player(2), session.ID, participants[0].ID); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("player remove err = %v, want ErrUnauthorized", err)
	}

	removed, err := env.engine.RemoveParticipant(ctx, organizer, session.ID, participants[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Status != ParticipantLeft {
		t.Errorf("status = %q, want left", removed.Status)
	}

	// Removing an already-left participant fails.
	if _, err := env.engine.RemoveParticipant(ctx, organizer, session.ID, participants[0].ID); !errors.Is(err, ErrParticipantNotFound) {
		t.Errorf("re-remove err = %v, want ErrParticipantNotFound", err)
	}
}

func TestPosition(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()
	session := openSession(t, env, sessionParams(courtID, env.clock))

	joinN(t, env, session.ID, 2)

	position, waiting, err := env.engine.Position(ctx, session.ID, "player-2")
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	if !waiting || position != 2 {
		t.Errorf("position = %d waiting = %v, want 2 true", position, waiting)
	}

	if _, waiting, err := env.engine.Position(ctx, session.ID, "stranger"); err != nil || waiting {
		t.Errorf("stranger position: waiting = %v err = %v, want false nil", waiting, err)
	}
}

func TestLeave_KeepsOutstandingBalance(t *testing.T) {
	env := newTestEnv(t)
	courtID := seedCourt(t, env.engine, false)
	ctx := context.Background()

	params := sessionParams(courtID, env.clock)
	params.GameFormat = FormatSingles
	session := openSession(t, env, params)
	participants := joinN(t, env, session.ID, 2)

	started, err := env.engine.StartNextGame(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := env.engine.CompleteGame(ctx, organizer, session.ID, started.Game.ID, []string{participants[0].ID}); err != nil {
		t.Fatalf("complete game: %v", err)
	}

	left, err := env.engine.Leave(ctx, player(2), session.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if left.AmountOwed != session.CostPerGame {
		t.Errorf("amount owed after leave = %d, want %d", left.AmountOwed, session.CostPerGame)
	}

	balance, err := env.engine.OutstandingBalance(ctx, session.ID, "player-2")
	if err != nil {
		t.Fatalf("outstanding balance: %v", err)
	}
	if balance != session.CostPerGame {
		t.Errorf("balance = %d, want %d", balance, session.CostPerGame)
	}
}
