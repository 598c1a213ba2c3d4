// Package metrics exposes Prometheus instrumentation for the queue engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_session_transitions_total",
			Help: "Session state transitions by target status",
		},
		[]string{"status"},
	)

	rosterOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_roster_operations_total",
			Help: "Roster operations by type and outcome",
		},
		[]string{"operation", "outcome"},
	)

	gamesStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_games_started_total",
			Help: "Games pulled off the queue",
		},
	)

	gamesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_games_resolved_total",
			Help: "Games resolved by final status",
		},
		[]string{"status"},
	)

	paymentsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_payments_recorded_total",
			Help: "Ledger payments by method",
		},
		[]string{"method"},
	)

	paymentAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_payment_centavos_total",
			Help: "Total centavos settled by method",
		},
		[]string{"method"},
	)

	waitingPlayers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_waiting_players",
			Help: "Current waiting players per session",
		},
		[]string{"session_id"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_webhook_events_total",
			Help: "Payment provider webhook events by type and outcome",
		},
		[]string{"event_type", "outcome"},
	)
)

func SessionTransition(status string) {
	sessionTransitions.WithLabelValues(status).Inc()
}

func RosterOperation(operation, outcome string) {
	rosterOperations.WithLabelValues(operation, outcome).Inc()
}

func GameStarted() {
	gamesStarted.Inc()
}

func GameResolved(status string) {
	gamesResolved.WithLabelValues(status).Inc()
}

func PaymentRecorded(method string, centavos int64) {
	paymentsRecorded.WithLabelValues(method).Inc()
	paymentAmount.WithLabelValues(method).Add(float64(centavos))
}

func SetWaitingPlayers(sessionID string, count int) {
	waitingPlayers.WithLabelValues(sessionID).Set(float64(count))
}

func WebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(eventType, outcome).Inc()
}
