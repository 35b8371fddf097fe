// Governing: SPEC-0005 REQ "Standard Error Response Format", ADR-0008
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/linkdeck/linkdeck/internal/authz"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError writes a JSON error response with the given HTTP status code.
// Governing: SPEC-0005 REQ "Standard Error Response Format"
func writeError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}

// writeJSON writes a JSON response with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeGuardError translates an authorization failure into the standard
// error response. Typed denials carry their own status and message;
// anything else is an infrastructure failure and maps to 500.
// Governing: SPEC-0004 REQ "Guard Error Surface", SPEC-0005 REQ "Standard Error Response Format"
func writeGuardError(w http.ResponseWriter, err error) {
	var ae *authz.Error
	if errors.As(err, &ae) {
		writeError(w, ae.HTTPStatus(), ae.Message, string(ae.Code))
		return
	}
	log.Printf("api: authorization check: %v", err)
	writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
}
