// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ymadz/rallio-sub004/internal/api"
	"github.com/ymadz/rallio-sub004/internal/api/payments"
	"github.com/ymadz/rallio-sub004/internal/api/sessions"
	"github.com/ymadz/rallio-sub004/internal/config"
	"github.com/ymadz/rallio-sub004/internal/payments/paymongo"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/ratelimit"
)

func newServer(cfg *config.Config, engine *queue.Engine, limiter *ratelimit.Limiter, gateway *paymongo.Client) *http.Server {
	router := http.NewServeMux()

	sessions.InitHandlers(engine, limiter)
	payments.InitHandlers(engine, gateway)

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithIdentity,
	)

	registerRoutes(router, cfg)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	// Session lifecycle
	mux.HandleFunc("POST /api/v1/sessions", sessions.HandleCreateSession)
	mux.HandleFunc("GET /api/v1/sessions", sessions.HandleListSessions)
	mux.HandleFunc("GET /api/v1/sessions/{id}", sessions.HandleGetSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/submit", sessions.HandleSubmitSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/approve", sessions.HandleApproveSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/reject", sessions.HandleRejectSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/open", sessions.HandleOpenSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/activate", sessions.HandleActivateSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/pause", sessions.HandlePauseSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/resume", sessions.HandleResumeSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/close", sessions.HandleCloseSession)
	mux.HandleFunc("POST /api/v1/sessions/{id}/cancel", sessions.HandleCancelSession)
	mux.HandleFunc("GET /api/v1/sessions/{id}/audit", sessions.HandleAuditLog)

	// Roster
	mux.HandleFunc("POST /api/v1/sessions/{id}/join", sessions.HandleJoin)
	mux.HandleFunc("POST /api/v1/sessions/{id}/leave", sessions.HandleLeave)
	mux.HandleFunc("GET /api/v1/sessions/{id}/participants", sessions.HandleListParticipants)
	mux.HandleFunc("DELETE /api/v1/sessions/{id}/participants/{participantID}", sessions.HandleRemoveParticipant)
	mux.HandleFunc("GET /api/v1/sessions/{id}/position", sessions.HandlePosition)

	// Game rotation
	mux.HandleFunc("POST /api/v1/sessions/{id}/games", sessions.HandleStartGame)
	mux.HandleFunc("GET /api/v1/sessions/{id}/games", sessions.HandleListGames)
	mux.HandleFunc("POST /api/v1/sessions/{id}/games/{gameID}/complete", sessions.HandleCompleteGame)
	mux.HandleFunc("POST /api/v1/sessions/{id}/games/{gameID}/abandon", sessions.HandleAbandonGame)

	// Fees and payments
	mux.HandleFunc("POST /api/v1/sessions/{id}/payments", sessions.HandleRecordPayment)
	mux.HandleFunc("GET /api/v1/sessions/{id}/balance", sessions.HandleBalance)
	mux.HandleFunc("POST /api/v1/sessions/{id}/participants/{participantID}/waive", sessions.HandleWaiveFee)
	mux.HandleFunc("GET /api/v1/sessions/{id}/summary", sessions.HandleSummary)
	mux.HandleFunc("POST /api/v1/sessions/{id}/checkout", payments.HandleCreateCheckout)

	// PayMongo delivers events here; signature verification gates access.
	mux.HandleFunc("POST /api/v1/webhooks/paymongo", payments.HandleWebhook)
}
