package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the standard error body. Fields is only populated for
// validation failures and maps field name to a human-readable message.
type ErrorResponse struct {
	Error            string            `json:"error"`
	ErrorDescription string            `json:"error_description,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes a standard error body.
func WriteError(w http.ResponseWriter, code int, err, desc string) {
	WriteJSON(w, code, ErrorResponse{Error: err, ErrorDescription: desc})
}

// WriteFieldErrors writes a 422 validation failure with per-field messages.
func WriteFieldErrors(w http.ResponseWriter, fields map[string]string) {
	WriteJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:            "validation_failed",
		ErrorDescription: "One or more fields are invalid",
		Fields:           fields,
	})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// Required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
