package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ymadz/rallio-sub004/internal/api"
	"github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/ratelimit"
	"github.com/ymadz/rallio-sub004/internal/testutil"
)

// Handlers are package-level singletons, so the whole HTTP flow runs as one
// test against one server.
func TestSessionAPI(t *testing.T) {
	database := testutil.NewTestDB(t)
	engine, err := queue.NewEngine(database)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	limiter := ratelimit.New(&ratelimit.Config{Cooldown: time.Nanosecond, MaxPerMinute: 1000})
	defer limiter.Close()
	InitHandlers(engine, limiter)

	seedCourt(t, database, "court-1")

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions", HandleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions", HandleListSessions)
	mux.HandleFunc("GET /api/v1/sessions/{id}", HandleGetSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/open", HandleOpenSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/close", HandleCloseSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/join", HandleJoin)
	mux.HandleFunc("POST /api/v1/sessions/{id}/leave", HandleLeave)
	mux.HandleFunc("GET /api/v1/sessions/{id}/participants", HandleListParticipants)
	mux.HandleFunc("GET /api/v1/sessions/{id}/position", HandlePosition)
	mux.HandleFunc("POST /api/v1/sessions/{id}/games", HandleStartGame)
	mux.HandleFunc("POST /api/v1/sessions/{id}/games/{gameID}/complete", HandleCompleteGame)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary", HandleSummary)
	mux.HandleFunc("POST /api/v1/sessions/{id}/payments", HandleRecordPayment)
	mux.HandleFunc("GET /api/v1/sessions/{id}/balance", HandleBalance)
	mux.HandleFunc("GET /api/v1/sessions/{id}/audit", HandleAuditLog)

	server := httptest.NewServer(api.ChainMiddleware(mux, api.WithRecovery, api.WithRequestID, api.WithIdentity))
	defer server.Close()

	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(5 * time.Hour).UTC().Format(time.RFC3339)
	createBody := fmt.Sprintf(`{
		"court_id": "court-1",
		"mode": "open",
		"game_format": "singles",
		"max_players": 10,
		"cost_per_game": "50.00",
		"start_time": %q,
		"end_time": %q
	}`, start, end)

	// Identity is required for mutations.
	if status, _ := call(t, server, http.MethodPost, "/api/v1/sessions", createBody, "", ""); status != http.StatusUnauthorized {
		t.Errorf("no identity status = %d, want 401", status)
	}
	// Players cannot create sessions.
	if status, _ := call(t, server, http.MethodPost, "/api/v1/sessions", createBody, "player-1", "player"); status != http.StatusForbidden {
		t.Errorf("player create status = %d, want 403", status)
	}
	// Unknown roles are rejected at the middleware.
	if status, _ := call(t, server, http.MethodPost, "/api/v1/sessions", createBody, "x", "superuser"); status != http.StatusForbidden {
		t.Errorf("unknown role status = %d, want 403", status)
	}

	var session struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		CostPerGame string `json:"cost_per_game"`
	}
	status, body := call(t, server, http.MethodPost, "/api/v1/sessions", createBody, "qm-1", "queue_master")
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", status, body)
	}
	mustDecode(t, body, &session)
	if session.Status != "draft" || session.CostPerGame != "50.00" {
		t.Errorf("session = %+v", session)
	}

	if status, _ := call(t, server, http.MethodGet, "/api/v1/sessions/not-a-uuid", "", "qm-1", "queue_master"); status != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", status)
	}

	sessionPath := "/api/v1/sessions/" + session.ID
	if status, body := call(t, server, http.MethodPost, sessionPath+"/open", "", "qm-1", "queue_master"); status != http.StatusOK {
		t.Fatalf("open status = %d, body %s", status, body)
	}

	// Two players join; positions are FIFO.
	var joined struct {
		ID       string `json:"id"`
		Position *int64 `json:"position"`
	}
	status, body = call(t, server, http.MethodPost, sessionPath+"/join", "", "player-1", "player")
	if status != http.StatusCreated {
		t.Fatalf("join status = %d, body %s", status, body)
	}
	mustDecode(t, body, &joined)
	winnerID := joined.ID
	if joined.Position == nil || *joined.Position != 1 {
		t.Errorf("player-1 position = %v, want 1", joined.Position)
	}
	if status, _ := call(t, server, http.MethodPost, sessionPath+"/join", "", "player-2", "player"); status != http.StatusCreated {
		t.Fatalf("second join status = %d", status)
	}
	if status, _ := call(t, server, http.MethodPost, sessionPath+"/join", "", "player-1", "player"); status != http.StatusConflict {
		t.Errorf("duplicate join status = %d, want 409", status)
	}

	status, body = call(t, server, http.MethodGet, sessionPath+"/position", "", "player-2", "player")
	if status != http.StatusOK {
		t.Fatalf("position status = %d", status)
	}
	var position struct {
		Waiting  bool  `json:"waiting"`
		Position int64 `json:"position"`
	}
	mustDecode(t, body, &position)
	if !position.Waiting || position.Position != 2 {
		t.Errorf("position = %+v, want waiting at 2", position)
	}

	// Only the queue master starts games.
	if status, _ := call(t, server, http.MethodPost, sessionPath+"/games", "", "player-1", "player"); status != http.StatusForbidden {
		t.Errorf("player start game status = %d, want 403", status)
	}
	var started struct {
		Game struct {
			ID string `json:"id"`
		} `json:"game"`
		Players []struct {
			UserID string `json:"user_id"`
		} `json:"players"`
	}
	status, body = call(t, server, http.MethodPost, sessionPath+"/games", "", "qm-1", "queue_master")
	if status != http.StatusCreated {
		t.Fatalf("start game status = %d, body %s", status, body)
	}
	mustDecode(t, body, &started)
	if len(started.Players) != 2 {
		t.Errorf("game players = %d, want 2", len(started.Players))
	}

	completeBody := fmt.Sprintf(`{"winners": [%q]}`, winnerID)
	status, body = call(t, server, http.MethodPost, sessionPath+"/games/"+started.Game.ID+"/complete", completeBody, "qm-1", "queue_master")
	if status != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", status, body)
	}
	// Completing twice conflicts.
	if status, _ := call(t, server, http.MethodPost, sessionPath+"/games/"+started.Game.ID+"/complete", completeBody, "qm-1", "queue_master"); status != http.StatusConflict {
		t.Errorf("double complete status = %d, want 409", status)
	}

	status, body = call(t, server, http.MethodGet, sessionPath+"/summary", "", "qm-1", "queue_master")
	if status != http.StatusOK {
		t.Fatalf("summary status = %d", status)
	}
	var summary struct {
		GamesCompleted   int    `json:"games_completed"`
		TotalOutstanding string `json:"total_outstanding"`
	}
	mustDecode(t, body, &summary)
	if summary.GamesCompleted != 1 {
		t.Errorf("games completed = %d, want 1", summary.GamesCompleted)
	}

	payBody := `{"user_id": "player-1", "amount": "50.00"}`
	status, body = call(t, server, http.MethodPost, sessionPath+"/payments", payBody, "qm-1", "queue_master")
	if status != http.StatusOK {
		t.Fatalf("payment status = %d, body %s", status, body)
	}
	var paid struct {
		PaymentStatus string `json:"payment_status"`
		AmountPaid    string `json:"amount_paid"`
	}
	mustDecode(t, body, &paid)
	if paid.PaymentStatus != "paid" || paid.AmountPaid != "50.00" {
		t.Errorf("payment = %+v", paid)
	}

	status, body = call(t, server, http.MethodGet, sessionPath+"/balance", "", "player-1", "player")
	if status != http.StatusOK {
		t.Fatalf("balance status = %d", status)
	}
	var balance struct {
		Outstanding string `json:"outstanding"`
	}
	mustDecode(t, body, &balance)
	if balance.Outstanding != "0.00" {
		t.Errorf("outstanding = %q, want 0.00", balance.Outstanding)
	}

	if status, _ := call(t, server, http.MethodPost, sessionPath+"/close", "", "qm-1", "queue_master"); status != http.StatusOK {
		t.Errorf("close status = %d, want 200", status)
	}

	// Audit trail is organizer-only.
	if status, _ := call(t, server, http.MethodGet, sessionPath+"/audit", "", "player-1", "player"); status != http.StatusForbidden {
		t.Errorf("player audit status = %d, want 403", status)
	}
	if status, _ := call(t, server, http.MethodGet, sessionPath+"/audit", "", "qm-1", "queue_master"); status != http.StatusOK {
		t.Errorf("organizer audit status = %d, want 200", status)
	}

	status, body = call(t, server, http.MethodGet, "/api/v1/sessions?organizer_id=qm-1", "", "qm-1", "queue_master")
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var sessions []json.RawMessage
	mustDecode(t, body, &sessions)
	if len(sessions) != 1 {
		t.Errorf("organizer sessions = %d, want 1", len(sessions))
	}
}

func call(t *testing.T, server *httptest.Server, method, path, body, userID, role string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
		req.Header.Set("X-User-Role", role)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, data
}

func mustDecode(t *testing.T, data []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(data, dst); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
}

func seedCourt(t *testing.T, database *db.DB, courtID string) {
	t.Helper()
	ctx := context.Background()
	venue, err := database.Queries.CreateVenue(ctx, dbgen.CreateVenueParams{
		ID:      "venue-1",
		Name:    "Test Venue",
		Status:  "active",
		AdminID: "admin-1",
	})
	if err != nil {
		t.Fatalf("create venue: %v", err)
	}
	if _, err := database.Queries.CreateCourt(ctx, dbgen.CreateCourtParams{
		ID:      courtID,
		VenueID: venue.ID,
		Name:    "Court 1",
		Status:  "active",
	}); err != nil {
		t.Fatalf("create court: %v", err)
	}
}
