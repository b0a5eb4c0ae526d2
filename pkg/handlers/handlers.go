// Package handlers provides JSON response helpers shared by domain HTTP handlers.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as a JSON error body.
// Server errors are reported to the client with the generic status text
// so storage and driver messages stay in the logs.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	msg := err.Error()

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
		msg = http.StatusText(status)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}

	RespondJSON(w, status, ErrorResponse{Error: msg})
}
