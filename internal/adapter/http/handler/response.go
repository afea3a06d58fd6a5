// Package handler serves the form endpoints and the admin API as JSON.
package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// GenericErrorMessage is the only detail a client sees for server-side failures
const GenericErrorMessage = "Something went wrong. Please try again later."

type errorResponse struct {
	OK     bool              `json:"ok"`
	Error  string            `json:"error,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, log *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("Failed to encode response", zap.Int("status", status), zap.Error(err))
	}
}

func respondWithError(w http.ResponseWriter, log *zap.Logger, status int, message string) {
	respondWithJSON(w, log, status, errorResponse{Error: message})
}

func respondWithErrors(w http.ResponseWriter, log *zap.Logger, status int, errs map[string]string) {
	respondWithJSON(w, log, status, errorResponse{Errors: errs})
}

// NotFound and MethodNotAllowed keep unmatched routes in the JSON envelope
func NotFound(w http.ResponseWriter, _ *http.Request) {
	respondWithError(w, zap.NewNop(), http.StatusNotFound, "Not found")
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondWithError(w, zap.NewNop(), http.StatusMethodNotAllowed, "Method not allowed")
}

// Health reports liveness only
func Health(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, zap.NewNop(), http.StatusOK, map[string]string{"status": "ok"})
}
