package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ymadz/rallio-sub004/internal/api"
	"github.com/ymadz/rallio-sub004/internal/config"
	"github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/payments/paymongo"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/testutil"
)

const webhookSecret = "whsec_test_handler"

type stubGateway struct {
	calls int
}

func (g *stubGateway) CreateCheckout(ctx context.Context, req queue.CheckoutRequest) (queue.CheckoutSession, error) {
	g.calls++
	return queue.CheckoutSession{
		SourceID:    fmt.Sprintf("src_%d", g.calls),
		CheckoutURL: "https://checkout.test/pay",
	}, nil
}

// Handlers are package-level singletons, so checkout creation and webhook
// delivery run as one flow against one server.
func TestCheckoutWebhookFlow(t *testing.T) {
	database := testutil.NewTestDB(t)
	gateway := &stubGateway{}
	engine, err := queue.NewEngine(database, queue.WithGateway(gateway))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	verifier := paymongo.NewClient(config.PayMongoConfig{WebhookSecret: webhookSecret})
	InitHandlers(engine, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions/{id}/checkout", HandleCreateCheckout)
	mux.HandleFunc("POST /api/v1/webhooks/paymongo", HandleWebhook)
	server := httptest.NewServer(api.ChainMiddleware(mux, api.WithRequestID, api.WithIdentity))
	defer server.Close()

	organizer := queue.Actor{UserID: "qm-1", Role: queue.RoleQueueMaster}
	debtor := queue.Actor{UserID: "player-1", Role: queue.RolePlayer}
	sessionID := seedDebt(t, database, engine, organizer, debtor)

	// Player opens a hosted checkout for the full balance.
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/sessions/"+sessionID+"/checkout", nil)
	req.Header.Set("X-User-ID", debtor.UserID)
	req.Header.Set("X-User-Role", "player")
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("create checkout: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d, body %s", resp.StatusCode, body)
	}
	var checkout struct {
		SourceID    string `json:"source_id"`
		Amount      string `json:"amount"`
		Status      string `json:"status"`
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.Unmarshal(body, &checkout); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if checkout.SourceID != "src_1" || checkout.Amount != "50.00" || checkout.Status != queue.CheckoutPending {
		t.Errorf("checkout = %+v", checkout)
	}
	if checkout.CheckoutURL != "https://checkout.test/pay" {
		t.Errorf("checkout url = %q", checkout.CheckoutURL)
	}

	chargeable := webhookPayload("source.chargeable", checkout.SourceID, "chargeable")

	// Unsigned and tampered deliveries never reach the engine.
	if status := postWebhook(t, server, chargeable, ""); status != http.StatusUnauthorized {
		t.Errorf("unsigned webhook status = %d, want 401", status)
	}
	if status := postWebhook(t, server, chargeable, sign([]byte("other payload"))); status != http.StatusUnauthorized {
		t.Errorf("tampered webhook status = %d, want 401", status)
	}
	if balance := outstanding(t, engine, sessionID, debtor.UserID); balance != 5000 {
		t.Fatalf("balance after rejected webhooks = %d, want 5000", balance)
	}

	// A signed chargeable event settles the ledger.
	if status := postWebhook(t, server, chargeable, sign(chargeable)); status != http.StatusOK {
		t.Fatalf("chargeable webhook status = %d, want 200", status)
	}
	if balance := outstanding(t, engine, sessionID, debtor.UserID); balance != 0 {
		t.Errorf("balance after chargeable = %d, want 0", balance)
	}

	// PayMongo retries deliveries; a replay is acknowledged without double
	// crediting.
	if status := postWebhook(t, server, chargeable, sign(chargeable)); status != http.StatusOK {
		t.Errorf("replayed webhook status = %d, want 200", status)
	}
	participant := findParticipant(t, database, sessionID, debtor.UserID)
	if participant.AmountPaid != 5000 {
		t.Errorf("amount paid after replay = %d, want 5000", participant.AmountPaid)
	}

	// Event types outside the checkout lifecycle are acknowledged and dropped.
	other := webhookPayload("link.payment.paid", checkout.SourceID, "paid")
	if status := postWebhook(t, server, other, sign(other)); status != http.StatusOK {
		t.Errorf("ignored event status = %d, want 200", status)
	}

	// Signed garbage is a client error, not a retry.
	garbage := []byte(`{"data": "nope"`)
	if status := postWebhook(t, server, garbage, sign(garbage)); status != http.StatusBadRequest {
		t.Errorf("malformed payload status = %d, want 400", status)
	}

	// An unknown source asks PayMongo to retry later.
	unknown := webhookPayload("source.chargeable", "src_missing", "chargeable")
	if status := postWebhook(t, server, unknown, sign(unknown)); status != http.StatusInternalServerError {
		t.Errorf("unknown source status = %d, want 500", status)
	}
}

// seedDebt runs a singles session to the point where the debtor owes one
// game fee of 50.00.
func seedDebt(t *testing.T, database *db.DB, engine *queue.Engine, organizer, debtor queue.Actor) string {
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
		ID:      "court-1",
		VenueID: venue.ID,
		Name:    "Court 1",
		Status:  "active",
	}); err != nil {
		t.Fatalf("create court: %v", err)
	}

	session, err := engine.CreateSession(ctx, organizer, queue.CreateSessionParams{
		CourtID:     "court-1",
		Mode:        queue.ModeOpen,
		GameFormat:  queue.FormatSingles,
		MaxPlayers:  10,
		CostPerGame: 5000,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(5 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := engine.OpenSession(ctx, organizer, session.ID); err != nil {
		t.Fatalf("open session: %v", err)
	}
	opponent := queue.Actor{UserID: "player-2", Role: queue.RolePlayer}
	joined, err := engine.Join(ctx, debtor, session.ID)
	if err != nil {
		t.Fatalf("debtor join: %v", err)
	}
	if _, err := engine.Join(ctx, opponent, session.ID); err != nil {
		t.Fatalf("opponent join: %v", err)
	}
	started, err := engine.StartNextGame(ctx, organizer, session.ID)
	if err != nil {
		t.Fatalf("start game: %v", err)
	}
	if _, err := engine.CompleteGame(ctx, organizer, session.ID, started.Game.ID, []string{joined.ID}); err != nil {
		t.Fatalf("complete game: %v", err)
	}
	return session.ID
}

func webhookPayload(eventType, sourceID, status string) []byte {
	var sourceField string
	if eventType == "source.chargeable" {
		sourceField = fmt.Sprintf(`"id": %q, "attributes": {"status": %q}`, sourceID, status)
	} else {
		sourceField = fmt.Sprintf(`"id": "pay_1", "attributes": {"status": %q, "source": {"id": %q}}`, status, sourceID)
	}
	return []byte(fmt.Sprintf(`{"data": {"attributes": {"type": %q, "data": {%s}}}}`, eventType, sourceField))
}

func sign(payload []byte) string {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,li=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func postWebhook(t *testing.T, server *httptest.Server, payload []byte, signature string) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/webhooks/paymongo", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("build webhook request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Paymongo-Signature", signature)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("post webhook: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode
}

func outstanding(t *testing.T, engine *queue.Engine, sessionID, userID string) int64 {
	t.Helper()
	balance, err := engine.OutstandingBalance(context.Background(), sessionID, userID)
	if err != nil {
		t.Fatalf("outstanding balance: %v", err)
	}
	return balance
}

func findParticipant(t *testing.T, database *db.DB, sessionID, userID string) dbgen.QueueParticipant {
	t.Helper()
	participant, err := database.Queries.GetSessionParticipantByUser(context.Background(), dbgen.GetSessionParticipantByUserParams{
		SessionID: sessionID,
		UserID:    userID,
	})
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	return participant
}
