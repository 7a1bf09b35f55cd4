// Package httpx contains small JSON response helpers shared by all handlers.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the uniform failure body: {"error": "...", "details": {...}}.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with the given status. Marshalling happens before the
// header is written so a failure never produces partial JSON.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	body := []byte("null")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes a plain {"error": msg} failure.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorResponse{Error: msg})
}

// FieldErrors writes a validation failure carrying per-field violations.
func FieldErrors(w http.ResponseWriter, msg string, details any) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Details: details})
}
