// internal/api/sessions/handlers.go
package sessions

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/ymadz/rallio-sub004/internal/api/apiutil"
	"github.com/ymadz/rallio-sub004/internal/api/authz"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
	"github.com/ymadz/rallio-sub004/internal/metrics"
	"github.com/ymadz/rallio-sub004/internal/queue"
	"github.com/ymadz/rallio-sub004/internal/ratelimit"
	"github.com/ymadz/rallio-sub004/internal/request"
)

var (
	engine   *queue.Engine
	limiter  *ratelimit.Limiter
	initOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *queue.Engine, l *ratelimit.Limiter) {
	if e == nil {
		return
	}
	initOnce.Do(func() {
		engine = e
		limiter = l
	})
}

type sessionResponse struct {
	ID              string     `json:"id"`
	CourtID         string     `json:"court_id"`
	OrganizerID     string     `json:"organizer_id"`
	Mode            string     `json:"mode"`
	GameFormat      string     `json:"game_format"`
	MaxPlayers      int64      `json:"max_players"`
	CostPerGame     string     `json:"cost_per_game"`
	Status          string     `json:"status"`
	ApprovalStatus  string     `json:"approval_status,omitempty"`
	ApprovalNotes   string     `json:"approval_notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         time.Time  `json:"end_time"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toSessionResponse(s dbgen.QueueSession) sessionResponse {
	resp := sessionResponse{
		ID:          s.ID,
		CourtID:     s.CourtID,
		OrganizerID: s.OrganizerID,
		Mode:        s.Mode,
		GameFormat:  s.GameFormat,
		MaxPlayers:  s.MaxPlayers,
		CostPerGame: queue.FormatCentavos(s.CostPerGame),
		Status:      s.Status,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		CreatedAt:   s.CreatedAt,
	}
	if s.ApprovalStatus.Valid {
		resp.ApprovalStatus = s.ApprovalStatus.String
	}
	if s.ApprovalNotes.Valid {
		resp.ApprovalNotes = s.ApprovalNotes.String
	}
	if s.RejectionReason.Valid {
		resp.RejectionReason = s.RejectionReason.String
	}
	if s.ClosedAt.Valid {
		closedAt := s.ClosedAt.Time
		resp.ClosedAt = &closedAt
	}
	if s.CancelReason.Valid {
		resp.CancelReason = s.CancelReason.String
	}
	return resp
}

type participantResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	Status        string `json:"status"`
	Position      *int64 `json:"position,omitempty"`
	GamesPlayed   int64  `json:"games_played"`
	GamesWon      int64  `json:"games_won"`
	AmountOwed    string `json:"amount_owed"`
	AmountPaid    string `json:"amount_paid"`
	PaymentStatus string `json:"payment_status"`
	FeeWaived     bool   `json:"fee_waived"`
}

func toParticipantResponse(p dbgen.QueueParticipant) participantResponse {
	resp := participantResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Status:        p.Status,
		GamesPlayed:   p.GamesPlayed,
		GamesWon:      p.GamesWon,
		AmountOwed:    queue.FormatCentavos(p.AmountOwed),
		AmountPaid:    queue.FormatCentavos(p.AmountPaid),
		PaymentStatus: p.PaymentStatus,
		FeeWaived:     p.FeeWaived,
	}
	if p.Position.Valid {
		position := p.Position.Int64
		resp.Position = &position
	}
	return resp
}

type gameResponse struct {
	ID             string     `json:"id"`
	SequenceNumber int64      `json:"sequence_number"`
	GameFormat     string     `json:"game_format"`
	Status         string     `json:"status"`
	StartedAt      time.Time  `json:"started_at"`
	EndedAt        *time.Time `json:"ended_at,omitempty"`
}

func toGameResponse(g dbgen.Game) gameResponse {
	resp := gameResponse{
		ID:             g.ID,
		SequenceNumber: g.SequenceNumber,
		GameFormat:     g.GameFormat,
		Status:         g.Status,
		StartedAt:      g.StartedAt,
	}
	if g.EndedAt.Valid {
		endedAt := g.EndedAt.Time
		resp.EndedAt = &endedAt
	}
	return resp
}

// POST /api/v1/sessions
func HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	actor, err := authz.RequireActor(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var body struct {
		CourtID     string `json:"court_id"`
		Mode        string `json:"mode"`
		GameFormat  string `json:"game_format"`
		MaxPlayers  int64  `json:"max_players"`
		CostPerGame string `json:"cost_per_game"`
		StartTime   string `json:"start_time"`
		EndTime     string `json:"end_time"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
		return
	}

	cost, err := queue.ParseAmount(body.CostPerGame)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	startTime, err := apiutil.ParseTimeField(body.StartTime, "start_time")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: err.Error(), Err: err})
		return
	}
	endTime, err := apiutil.ParseTimeField(body.EndTime, "end_time")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusUnprocessableEntity, Message: err.Error(), Err: err})
		return
	}

	session, err := engine.CreateSession(r.Context(), actor, queue.CreateSessionParams{
		CourtID:     body.CourtID,
		Mode:        body.Mode,
		GameFormat:  body.GameFormat,
		MaxPlayers:  body.MaxPlayers,
		CostPerGame: cost,
		StartTime:   startTime,
		EndTime:     endTime,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.SessionTransition(session.Status)
	_ = apiutil.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

// GET /api/v1/sessions?court_id=...|organizer_id=...
func HandleListSessions(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireActor(r.Context()); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var (
		sessions []dbgen.QueueSession
		err      error
	)
	if courtID, ok := request.QueryValue(r, "court_id"); ok {
		sessions, err = engine.ListCourtSessions(r.Context(), courtID)
	} else if organizerID, ok := request.QueryValue(r, "organizer_id"); ok {
		sessions, err = engine.ListOrganizerSessions(r.Context(), organizerID)
	} else {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "court_id or organizer_id is required"})
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	responses := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, toSessionResponse(session))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, responses)
}

// GET /api/v1/sessions/{id}
func HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := request.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	session, err := engine.GetSession(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// transitionHandler wraps the lifecycle operations that differ only in the
// engine call.
func transitionHandler(op func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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
		session, err := op(r, actor, sessionID)
		if err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
		metrics.SessionTransition(session.Status)
		_ = apiutil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
	}
}

var (
	HandleSubmitSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.SubmitForApproval(r.Context(), actor, sessionID)
	})
	HandleOpenSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.OpenSession(r.Context(), actor, sessionID)
	})
	HandleActivateSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.Activate(r.Context(), actor, sessionID)
	})
	HandlePauseSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.Pause(r.Context(), actor, sessionID)
	})
	HandleResumeSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.Resume(r.Context(), actor, sessionID)
	})
	HandleCloseSession = transitionHandler(func(r *http.Request, actor queue.Actor, sessionID string) (dbgen.QueueSession, error) {
		return engine.Close(r.Context(), actor, sessionID)
	})
)

// POST /api/v1/sessions/{id}/approve
func HandleApproveSession(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Notes string `json:"notes"`
	}
	if r.ContentLength > 0 {
		if err := apiutil.DecodeJSON(r, &body); err != nil {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
			return
		}
	}

	session, err := engine.Approve(r.Context(), actor, sessionID, body.Notes)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.SessionTransition(session.Status)
	_ = apiutil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// POST /api/v1/sessions/{id}/reject
func HandleRejectSession(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Reason string `json:"reason"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
		return
	}

	session, err := engine.Reject(r.Context(), actor, sessionID, body.Reason)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.SessionTransition(session.Status)
	_ = apiutil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

// POST /api/v1/sessions/{id}/cancel
func HandleCancelSession(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := apiutil.DecodeJSON(r, &body); err != nil {
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
			return
		}
	}

	session, err := engine.Cancel(r.Context(), actor, sessionID, body.Reason)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.SessionTransition(session.Status)
	_ = apiutil.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func allowAction(w http.ResponseWriter, r *http.Request, action, userID string) bool {
	if limiter == nil {
		return true
	}
	result := limiter.Allow(action, userID)
	if result.Allowed {
		return true
	}
	ratelimit.LogRateLimitExceeded(action, userID, result.Reason)
	w.Header().Set("Retry-After", result.RetryAfter.Round(time.Second).String())
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	return false
}

// POST /api/v1/sessions/{id}/join
func HandleJoin(w http.ResponseWriter, r *http.Request) {
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
	if !allowAction(w, r, ratelimit.ActionJoin, actor.UserID) {
		return
	}

	participant, err := engine.Join(r.Context(), actor, sessionID)
	if err != nil {
		metrics.RosterOperation("join", "rejected")
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.RosterOperation("join", "ok")
	_ = apiutil.WriteJSON(w, http.StatusCreated, toParticipantResponse(participant))
}

// POST /api/v1/sessions/{id}/leave
func HandleLeave(w http.ResponseWriter, r *http.Request) {
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
	if !allowAction(w, r, ratelimit.ActionLeave, actor.UserID) {
		return
	}

	participant, err := engine.Leave(r.Context(), actor, sessionID)
	if err != nil {
		metrics.RosterOperation("leave", "rejected")
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.RosterOperation("leave", "ok")
	_ = apiutil.WriteJSON(w, http.StatusOK, toParticipantResponse(participant))
}

// DELETE /api/v1/sessions/{id}/participants/{participantID}
func HandleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
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
	participantID, err := request.PathID(r, "participantID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	participant, err := engine.RemoveParticipant(r.Context(), actor, sessionID, participantID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.RosterOperation("remove", "ok")
	_ = apiutil.WriteJSON(w, http.StatusOK, toParticipantResponse(participant))
}

// GET /api/v1/sessions/{id}/participants
func HandleListParticipants(w http.ResponseWriter, r *http.Request) {
	sessionID, err := request.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	participants, err := engine.Participants(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	responses := make([]participantResponse, 0, len(participants))
	waiting := 0
	for _, participant := range participants {
		if participant.Status == queue.ParticipantWaiting {
			waiting++
		}
		responses = append(responses, toParticipantResponse(participant))
	}
	metrics.SetWaitingPlayers(sessionID, waiting)
	_ = apiutil.WriteJSON(w, http.StatusOK, responses)
}

// GET /api/v1/sessions/{id}/position
func HandlePosition(w http.ResponseWriter, r *http.Request) {
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

	position, waiting, err := engine.Position(r.Context(), sessionID, actor.UserID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]any{
		"waiting":  waiting,
		"position": position,
	})
}

// POST /api/v1/sessions/{id}/games
func HandleStartGame(w http.ResponseWriter, r *http.Request) {
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

	started, err := engine.StartNextGame(r.Context(), actor, sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.GameStarted()

	players := make([]participantResponse, 0, len(started.Players))
	for _, player := range started.Players {
		players = append(players, toParticipantResponse(player))
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, map[string]any{
		"game":    toGameResponse(started.Game),
		"players": players,
	})
}

// GET /api/v1/sessions/{id}/games
func HandleListGames(w http.ResponseWriter, r *http.Request) {
	sessionID, err := request.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	games, err := engine.Games(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	responses := make([]gameResponse, 0, len(games))
	for _, game := range games {
		responses = append(responses, toGameResponse(game))
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, responses)
}

// POST /api/v1/sessions/{id}/games/{gameID}/complete
func HandleCompleteGame(w http.ResponseWriter, r *http.Request) {
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
	gameID, err := request.PathID(r, "gameID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	if !allowAction(w, r, ratelimit.ActionScore, actor.UserID) {
		return
	}

	var body struct {
		Winners []string `json:"winners"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
		return
	}

	game, err := engine.CompleteGame(r.Context(), actor, sessionID, gameID, body.Winners)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.GameResolved(game.Status)
	_ = apiutil.WriteJSON(w, http.StatusOK, toGameResponse(game))
}

// POST /api/v1/sessions/{id}/games/{gameID}/abandon
func HandleAbandonGame(w http.ResponseWriter, r *http.Request) {
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
	gameID, err := request.PathID(r, "gameID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	game, err := engine.AbandonGame(r.Context(), actor, sessionID, gameID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.GameResolved(game.Status)
	_ = apiutil.WriteJSON(w, http.StatusOK, toGameResponse(game))
}

// POST /api/v1/sessions/{id}/payments
func HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
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

	var body struct {
		UserID    string `json:"user_id"`
		Amount    string `json:"amount"`
		Reference string `json:"reference"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
		return
	}
	amount, err := queue.ParseAmount(body.Amount)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	participant, err := engine.RecordPayment(r.Context(), actor, queue.RecordPaymentParams{
		SessionID: sessionID,
		UserID:    body.UserID,
		Amount:    amount,
		Method:    queue.MethodCash,
		Reference: body.Reference,
	})
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	metrics.PaymentRecorded(queue.MethodCash, amount)
	_ = apiutil.WriteJSON(w, http.StatusOK, toParticipantResponse(participant))
}

// GET /api/v1/sessions/{id}/balance
func HandleBalance(w http.ResponseWriter, r *http.Request) {
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

	balance, err := engine.OutstandingBalance(r.Context(), sessionID, actor.UserID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, map[string]string{
		"outstanding": decimal.New(balance, -2).StringFixed(2),
	})
}

// POST /api/v1/sessions/{id}/participants/{participantID}/waive
func HandleWaiveFee(w http.ResponseWriter, r *http.Request) {
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
	participantID, err := request.PathID(r, "participantID")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := apiutil.DecodeJSON(r, &body); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "invalid request body", Err: err})
		return
	}

	participant, err := engine.WaiveFee(r.Context(), actor, sessionID, participantID, body.Reason)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, toParticipantResponse(participant))
}

// GET /api/v1/sessions/{id}/summary
func HandleSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, err := request.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: err.Error()})
		return
	}
	summary, err := engine.Summary(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, summary)
}

// GET /api/v1/sessions/{id}/audit
func HandleAuditLog(w http.ResponseWriter, r *http.Request) {
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

	session, err := engine.GetSession(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if session.OrganizerID != actor.UserID && actor.Role != queue.RoleCourtAdmin {
		apiutil.WriteError(w, r, authz.ErrForbidden)
		return
	}

	entries, err := engine.AuditLog(r.Context(), sessionID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	type auditResponse struct {
		Action    string    `json:"action"`
		ActorID   string    `json:"actor_id"`
		Reason    string    `json:"reason,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
	responses := make([]auditResponse, 0, len(entries))
	for _, entry := range entries {
		resp := auditResponse{
			Action:    entry.Action,
			ActorID:   entry.ActorID,
			CreatedAt: entry.CreatedAt,
		}
		if entry.Reason.Valid {
			resp.Reason = entry.Reason.String
		}
		responses = append(responses, resp)
	}

	log.Ctx(r.Context()).Debug().
		Str("session_id", sessionID).
		Int("entries", len(responses)).
		Msg("Served audit log")
	_ = apiutil.WriteJSON(w, http.StatusOK, responses)
}
