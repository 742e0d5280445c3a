package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Status comes from core.StatusFor, text from core.MapError
//  4. Technical error + context is logged with request ID for correlation
//  5. Client receives ErrorResponse JSON

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/contactbook/internal/core"
	"github.com/JonMunkholm/contactbook/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadBody marks request bodies that are not valid JSON for the endpoint.
var errBadBody = errors.New("invalid json body")

// respondError logs err with request context and writes the mapped message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := core.StatusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	if owner, ok := core.OwnerFromContext(r.Context()); ok {
		logger = logger.With("owner_id", owner)
	}
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	respondErrorJSON(w, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondOwnerMissing rejects API requests that carry no owner id.
func respondOwnerMissing(w http.ResponseWriter, r *http.Request) {
	respondErrorJSON(w, core.UserMessage{
		Message: "Missing owner",
		Action:  "Sign in again",
		Code:    "AUTH003",
	}, http.StatusUnauthorized)
}

// decodeJSON reads r's body into v, capped at maxBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &core.ValidationError{Field: "body", Message: "request body too large"}
		}
		return errBadBody
	}
	return nil
}
