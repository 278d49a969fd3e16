// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dalemusser/chapterhub/internal/app/documents/docerr"
)

// Body is the JSON error envelope: {"error":{"code":...,"message":...}}.
type Body struct {
	Error Detail `json:"error"`
}

// Detail carries the error kind and a human-readable message.
type Detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorLogger writes API errors and logs the ones that are the server's fault.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Write maps err to its status and writes the JSON envelope. Internal
// details of 5xx errors are logged, not returned.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, err error) {
	status := docerr.Status(err)
	code := docerr.Kind(err)
	msg := err.Error()
	if status >= 500 {
		e.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", code),
			zap.Error(err))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	} else {
		e.log.Debug("request rejected", zap.String("path", r.URL.Path), zap.String("kind", code), zap.Error(err))
	}
	WriteError(w, status, code, msg)
}

// WriteError writes a JSON error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, Body{Error: Detail{Code: code, Message: message}})
}

// JSON writes v as a JSON response.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Handler serves the auth error endpoints redirects land on.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusForbidden, "forbidden", "you don't have permission for this resource")
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", "sign in required")
}

// NotFound is the router's fallback.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "no such endpoint")
}
