package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkl-health/chatbot-backend/internal/apperr"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeAppError maps a taxonomy error to its status code. Unrecognized
// errors become an opaque 500 so internals never leak to API clients.
func writeAppError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	if status == http.StatusInternalServerError {
		writeError(w, status, "internal server error")
		return
	}

	msg := err.Error()
	switch {
	case errors.Is(err, apperr.ErrAuth):
		msg = "Unauthorized"
	}
	writeError(w, status, msg)
}
