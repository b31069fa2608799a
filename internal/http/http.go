// Package http holds the JSON response helpers shared by the API handlers.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"findash/internal/services/chat"
	"findash/internal/services/session"
	"findash/internal/services/simulate"
	"findash/internal/services/storage"
)

// MaxBodyBytes bounds JSON request bodies
const MaxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteJSON encodes v with the given status
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to encode response")
	}
}

// ErrorResponse sends a JSON error response
func ErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	if statusCode >= 500 {
		logrus.WithField("status", statusCode).Error(message)
	}
	WriteJSON(w, statusCode, ErrorBody{Error: message, Status: statusCode})
}

// Error maps a service error to its HTTP status and writes it
func Error(w http.ResponseWriter, err error) {
	ErrorResponse(w, err.Error(), StatusFor(err))
}

// StatusFor returns the HTTP status for a service error
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSuggestionNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, simulate.ErrInvalidSection),
		errors.Is(err, simulate.ErrInvalidFormat),
		errors.Is(err, simulate.ErrNoSections),
		errors.Is(err, simulate.ErrEmptySource),
		errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrLocked):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a bounded JSON body into v
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// SessionFrom resolves the {id} URL parameter against the store
func SessionFrom(store *session.Store, r *http.Request) (*session.Session, error) {
	return store.Get(chi.URLParam(r, "id"))
}
