package queue

import "errors"

// Expected, recoverable-by-caller conditions. Handlers map these onto HTTP
// statuses; anything else that escapes the engine is an infrastructure fault.
var (
	ErrSessionNotFound     = errors.New("queue session not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrCheckoutNotFound    = errors.New("checkout not found")

	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("not allowed")
	ErrInvalidState        = errors.New("operation not allowed in current state")
	ErrRosterFull          = errors.New("queue is full")
	ErrAlreadyJoined       = errors.New("already in queue")
	ErrNotJoinable         = errors.New("queue is not accepting new players")
	ErrInsufficientPlayers = errors.New("not enough waiting players")
	ErrGameResolved        = errors.New("game already resolved")
	ErrGameMismatch        = errors.New("players do not match game roster")
	ErrApprovalExpired     = errors.New("approval window has lapsed")
	ErrOverpayment         = errors.New("payment exceeds outstanding balance")

	// ErrContended marks a write that lost the lock on every retry. The
	// request is safe to repeat.
	ErrContended = errors.New("database is busy")
)
