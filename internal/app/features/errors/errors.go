// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/counselhub/internal/app/policy/notepolicy"
	"go.uber.org/zap"
)

// errorBody is the JSON structure for all error responses.
type errorBody struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

// JSON writes an error response with the given status and message.
func JSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}

// Forbidden writes a 403 with the denial reason.
func Forbidden(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(errorBody{Error: "forbidden", Reason: reason})
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusNotFound, msg)
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, msg)
}

// Internal logs the error and writes a generic 500. The underlying error is
// never sent to the client.
func Internal(w http.ResponseWriter, log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	JSON(w, http.StatusInternalServerError, "internal server error")
}

// FromPolicy maps a policy error to the matching HTTP response and reports
// whether it handled the error. Unknown errors are left for the caller.
func FromPolicy(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, notepolicy.ErrSessionNotFound):
		NotFound(w, "session not found")
		return true
	case errors.Is(err, notepolicy.ErrNoteNotFound):
		NotFound(w, "note not found")
		return true
	}
	if reason, ok := notepolicy.IsDenied(err); ok {
		Forbidden(w, reason)
		return true
	}
	return false
}
