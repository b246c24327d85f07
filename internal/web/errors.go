package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as coded user messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err), or respondErrorStatus for a fixed status
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message and any field errors are written as JSON

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/leopold/internal/adminauth"
	"github.com/JonMunkholm/leopold/internal/assistant"
	"github.com/JonMunkholm/leopold/internal/core"
	"github.com/JonMunkholm/leopold/internal/csvimport"
	"github.com/JonMunkholm/leopold/internal/logging"
	"github.com/JonMunkholm/leopold/internal/sheets"
	"github.com/JonMunkholm/leopold/internal/shop"
	"github.com/JonMunkholm/leopold/internal/store"
	"github.com/JonMunkholm/leopold/internal/telegram"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Action  string       `json:"action,omitempty"`
	Code    string       `json:"code"`
	Fields  []FieldError `json:"fields,omitempty"`
}

// FieldError is one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("validation failed: malformed request body")

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var verrs shop.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrProtectedCategory):
		return http.StatusBadRequest
	case errors.Is(err, shop.ErrDuplicateCategory):
		return http.StatusConflict
	case errors.Is(err, shop.ErrUnknownToy),
		errors.Is(err, shop.ErrUnknownCategory),
		errors.Is(err, shop.ErrUnknownOrder),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, adminauth.ErrInvalidCredentials),
		errors.Is(err, adminauth.ErrInvalidToken),
		errors.Is(err, core.ErrSessionEnded):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrTooManySyncs):
		return http.StatusConflict
	case errors.Is(err, telegram.ErrNotConfigured),
		errors.Is(err, sheets.ErrNoURL),
		errors.Is(err, assistant.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, csvimport.ErrTooFewRows),
		errors.Is(err, csvimport.ErrMissingColumns),
		errors.Is(err, csvimport.ErrSourceTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, telegram.ErrAPI),
		errors.Is(err, assistant.ErrAPI),
		errors.Is(err, assistant.ErrNoAudio),
		errors.Is(err, sheets.ErrBadStatus):
		return http.StatusBadGateway
	}

	if code := core.MapError(err).Code; code == "NET005" {
		return http.StatusGatewayTimeout
	} else if code == "NET006" {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and picks the status from err.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondErrorStatus(w, r, err, statusFor(err))
}

// respondErrorStatus is respondError with an explicit status code.
func respondErrorStatus(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	log := logging.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var verrs shop.ValidationErrors
	if errors.As(err, &verrs) {
		for _, v := range verrs {
			resp.Fields = append(resp.Fields, FieldError{Field: v.Field, Message: v.Message})
		}
	}

	if statusCode == http.StatusConflict && errors.Is(err, core.ErrTooManySyncs) {
		w.Header().Set("Retry-After", "10")
	}
	writeJSONStatus(w, statusCode, resp)
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON.
// Logs encoding errors since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
