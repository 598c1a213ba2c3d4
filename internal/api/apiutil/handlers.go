package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ymadz/rallio-sub004/internal/api/authz"
	"github.com/ymadz/rallio-sub004/internal/queue"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorBody struct {
	Error string `json:"error"`
}

// WriteError maps engine and authorization errors onto HTTP statuses.
// Anything unrecognized is an infrastructure fault: logged with the full
// error, surfaced as a bare 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, queue.ErrSessionNotFound),
		errors.Is(err, queue.ErrParticipantNotFound),
		errors.Is(err, queue.ErrGameNotFound),
		errors.Is(err, queue.ErrCheckoutNotFound):
		status = http.StatusNotFound
	case errors.Is(err, queue.ErrInvalidInput),
		errors.Is(err, queue.ErrOverpayment):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, queue.ErrUnauthorized),
		errors.Is(err, authz.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, authz.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, queue.ErrInvalidState),
		errors.Is(err, queue.ErrRosterFull),
		errors.Is(err, queue.ErrAlreadyJoined),
		errors.Is(err, queue.ErrNotJoinable),
		errors.Is(err, queue.ErrInsufficientPlayers),
		errors.Is(err, queue.ErrGameResolved),
		errors.Is(err, queue.ErrGameMismatch):
		status = http.StatusConflict
	case errors.Is(err, queue.ErrApprovalExpired):
		status = http.StatusGone
	case errors.Is(err, queue.ErrContended):
		status = http.StatusServiceUnavailable
	}

	var handlerErr HandlerError
	if errors.As(err, &handlerErr) {
		status = handlerErr.Status
	}

	if status == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		_ = WriteJSON(w, status, errorBody{Error: "Internal Server Error"})
		return
	}
	if status == http.StatusServiceUnavailable {
		log.Ctx(r.Context()).Warn().Err(err).Msg("Request lost lock contention")
		w.Header().Set("Retry-After", "1")
		_ = WriteJSON(w, status, errorBody{Error: queue.ErrContended.Error()})
		return
	}
	_ = WriteJSON(w, status, errorBody{Error: err.Error()})
}
