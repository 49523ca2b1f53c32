package web

// errors.go provides unified error responses for the web layer.
//
// Every error is logged with the request ID and its technical detail, then
// mapped by core.MapError to a message, suggested action and support code.
// JSON is returned to API clients and an error page to browsers.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sidhushesank/ethical-dowry-analyser/internal/auth"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/core"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/logging"
	"github.com/sidhushesank/ethical-dowry-analyser/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error.
func statusFor(err error) int {
	switch {
	case core.IsNotFound(err):
		return http.StatusNotFound
	case core.IsSchema(err):
		return http.StatusUnprocessableEntity
	case core.IsInvalidParameter(err):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNotCSV), errors.Is(err, core.ErrEmptyFilename), errors.Is(err, core.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-friendly response. A zero
// statusCode is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	reqLogger(r).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, r, userMsg, statusCode)
		return
	}
	respondErrorHTML(w, r, userMsg, statusCode)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	writeJSON(w, r, statusCode, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error page. It does not read the session so it
// is safe before the session middleware has run.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	page := templates.Page{Title: http.StatusText(statusCode)}
	if err := templates.ErrorPage(page, statusCode, msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		reqLogger(r).Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func reqLogger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}
