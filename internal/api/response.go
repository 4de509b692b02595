// Package api serves the recipe analysis operations over HTTP.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/raphaelgruber/recipescape-go/internal/service"
)

// APIResponse is the response wrapper for all API endpoints.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`
	// Message is a human-readable error message
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error codes.
const (
	CodeNotFound   = "NOT_FOUND"
	CodeBadRequest = "BAD_REQUEST"
	CodeInternal   = "INTERNAL_ERROR"
)

// respondJSON writes data wrapped in a successful APIResponse.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeResponse(w, r, status, &APIResponse{Success: true, Data: data})
}

// respondError writes an error response. Internal errors are logged with
// the request's logger and their message is not exposed.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		LoggerFrom(r.Context()).Error("request failed", "code", code, "status", status, "error", err)
	}
	writeResponse(w, r, status, &APIResponse{Error: &APIError{Code: code, Message: message}})
}

// respondServiceError maps a service error onto an HTTP status.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, err.Error(), nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, CodeInternal, "internal server error", err)
}

func writeResponse(w http.ResponseWriter, r *http.Request, status int, resp *APIResponse) {
	resp.Meta = &APIMeta{RequestID: RequestIDFrom(r.Context()), Timestamp: time.Now().UTC()}

	data, err := json.Marshal(resp)
	if err != nil {
		LoggerFrom(r.Context()).Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		LoggerFrom(r.Context()).Debug("failed to write JSON response", "error", err)
	}
}

// decodeJSON decodes a request body, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
