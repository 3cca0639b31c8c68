package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/desertthunder/moodlist/internal/shared"
)

// errorEnvelope is the uniform JSON error body for every failed request.
type errorEnvelope struct {
	Error string `json:"error"`
}

// writeJSON serializes data to the response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError maps err to a status code via [statusForError] and writes the
// error envelope.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorEnvelope{Error: err.Error()})
}

// statusForError maps the error taxonomy in [shared] to HTTP status codes.
//
// A failed refresh is a 500, not a 401: the session still holds a grant and
// the client should not be forced back through authorization for what may be
// a transient provider failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, shared.ErrStateMismatch),
		errors.Is(err, shared.ErrEmptyPrompt),
		errors.Is(err, shared.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
