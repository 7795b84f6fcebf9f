package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/CourtReserve/internal/api/authz"
	"github.com/codr1/CourtReserve/internal/availability"
	"github.com/codr1/CourtReserve/internal/booking"
	"github.com/codr1/CourtReserve/internal/slots"
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

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
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

func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteServiceError maps a service error onto its HTTP status and writes it.
// Unclassified errors are logged and reported as 500 without detail.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	var verr *slots.ValidationError
	var ferr FieldError
	switch {
	case errors.As(err, &herr):
		if herr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Msg(herr.Message)
		}
		WriteError(w, herr.Status, herr.Message)
	case errors.As(err, &verr):
		_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Message, Field: verr.Field})
	case errors.As(err, &ferr):
		_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: ferr.Error(), Field: ferr.Field})
	case errors.Is(err, booking.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, authz.ErrForbidden):
		user := authz.UserFromContext(r.Context())
		logEvent := logger.Warn().Str("path", r.URL.Path)
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Msg("Access denied")
		WriteError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, availability.ErrCourtNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		WriteError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
