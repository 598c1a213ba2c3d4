package queue

import (
	"time"

	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

// Session lifecycle states.
const (
	StatusDraft           = "draft"
	StatusPendingApproval = "pending_approval"
	StatusOpen            = "open"
	StatusActive          = "active"
	StatusPaused          = "paused"
	StatusClosed          = "closed"
	StatusCancelled       = "cancelled"
	StatusRejected        = "rejected"
	StatusExpired         = "expired"
)

// Participant states.
const (
	ParticipantWaiting = "waiting"
	ParticipantPlaying = "playing"
	ParticipantLeft    = "left"
)

// Game states.
const (
	GameInProgress = "in_progress"
	GameCompleted  = "completed"
	GameAbandoned  = "abandoned"
)

// Payment states and methods.
const (
	PaymentUnpaid        = "unpaid"
	PaymentPartiallyPaid = "partially_paid"
	PaymentPaid          = "paid"

	MethodCash    = "cash"
	MethodEWallet = "e_wallet"
)

// Game formats.
const (
	FormatSingles = "singles"
	FormatDoubles = "doubles"
)

// Session modes.
const (
	ModeOpen    = "open"
	ModePrivate = "private"
)

// transitions is the session state graph. Cancellation is legal from any
// non-terminal state and is checked separately.
var transitions = map[string][]string{
	StatusDraft:           {StatusPendingApproval, StatusOpen},
	StatusPendingApproval: {StatusOpen, StatusRejected, StatusExpired},
	StatusOpen:            {StatusActive, StatusClosed, StatusExpired},
	StatusActive:          {StatusPaused, StatusClosed},
	StatusPaused:          {StatusActive, StatusClosed},
}

// IsTerminal reports whether a session in the given state accepts no further
// mutations.
func IsTerminal(status string) bool {
	switch status {
	case StatusClosed, StatusCancelled, StatusRejected, StatusExpired:
		return true
	}
	return false
}

func canTransition(from, to string) bool {
	if to == StatusCancelled {
		return !IsTerminal(from)
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// EffectiveStatus derives the status a reader should observe at the given
// instant. A pending approval past its TTL and an open session past its end
// time both read as expired even before the sweep persists it, so every read
// path sees the same view of the state machine.
func EffectiveStatus(session dbgen.QueueSession, now time.Time) string {
	switch session.Status {
	case StatusPendingApproval:
		if session.ApprovalExpiresAt.Valid && !now.Before(session.ApprovalExpiresAt.Time) {
			return StatusExpired
		}
	case StatusOpen:
		if !now.Before(session.EndTime) {
			return StatusExpired
		}
	}
	return session.Status
}

// PlayersPerGame returns the number of waiting participants consumed by one
// game of the given format.
func PlayersPerGame(gameFormat string) int {
	if gameFormat == FormatSingles {
		return 2
	}
	return 4
}

func isJoinable(status string) bool {
	return status == StatusOpen || status == StatusActive
}
