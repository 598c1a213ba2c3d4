// internal/api/payments/handlers.go
package payments

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ymadz/rallio-sub004/internal/api/apiutil"
	"github.com/ymadz/rallio-sub004/internal/api/authz"
	"github.com/ymadz/rallio-sub004/internal/metrics"
	"github.com/ymadz/rallio-sub004/internal/payments/paymongo"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/request"
)

const maxWebhookBody = 1 << 20

var (
	engine   *queue.Engine
	verifier *paymongo.Client
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// verifier may be nil when the payment gateway is disabled; the webhook route
// then rejects everything.
func InitHandlers(e *queue.Engine, v *paymongo.Client) {
	if e == nil {
		return
	}
	initOnce.Do(func() {
		engine = e
		verifier = v
	})
}

type checkoutResponse struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	SessionID   string    `json:"session_id"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	CheckoutURL string    `json:"checkout_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// POST /api/v1/sessions/{id}/checkout
func HandleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.RequireActor(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	sessionID, err := request.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	checkout, err := engine.CreateCheckout(r.Context(), actor, sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	_ = apiutil.WriteJSON(w, http.StatusCreated, checkoutResponse{
		ID:          checkout.ID,
		SourceID:    checkout.SourceID,
		SessionID:   checkout.SessionID,
		Amount:      queue.FormatCentavos(checkout.Amount),
		Status:      checkout.Status,
		CheckoutURL: checkout.CheckoutUrl,
		CreatedAt:   checkout.CreatedAt,
	})
}

// POST /api/v1/webhooks/paymongo
//
// PayMongo retries undelivered events, so every accepted payload must be safe
// to replay.
func HandleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if verifier == nil {
		logger.Warn().Msg("Webhook received but payment gateway is disabled")
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		metrics.WebhookEvent("unknown", "read_error")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := verifier.VerifySignature(payload, r.Header.Get("Paymongo-Signature")); err != nil {
		metrics.WebhookEvent("unknown", "bad_signature")
		logger.Warn().Err(err).Msg("Rejected webhook with invalid signature")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	event, err := paymongo.ParseWebhook(payload)
	if err != nil {
		metrics.WebhookEvent("unknown", "parse_error")
		logger.Warn().Err(err).Msg("Rejected malformed webhook payload")
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "source.chargeable", "payment.paid", "payment.failed":
	default:
		// Unhandled event types are acknowledged so PayMongo stops retrying.
		metrics.WebhookEvent(event.Type, "ignored")
		_ = apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	status := event.Status
	if event.Type == "payment.failed" {
		status = "failed"
	}

	checkout, err := engine.ConfirmCheckout(r.Context(), event.SourceID, status)
	if err != nil {
		metrics.WebhookEvent(event.Type, "error")
		logger.Error().Err(err).
			Str("source_id", event.SourceID).
			Str("event_type", event.Type).
			Msg("Failed to confirm checkout from webhook")
		// 500 asks PayMongo to retry later.
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.WebhookEvent(event.Type, "ok")
	logger.Info().
		Str("source_id", event.SourceID).
		Str("event_type", event.Type).
		Str("checkout_status", checkout.Status).
		Msg("Processed payment webhook")
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
