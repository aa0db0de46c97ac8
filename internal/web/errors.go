package web

// errors.go provides unified error responses for the API.
//
// Technical errors are logged with the request id; clients receive the
// user-facing message from core.MapError plus a support code.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/sgq/internal/core"
	"github.com/JonMunkholm/sgq/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// Request errors raised before the service is called. Their text matches
// the core.MapError patterns.
var (
	errNoFile  = errors.New("no file provided")
	errBadBody = errors.New("invalid request body")
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var (
		formatErr  *core.FormatError
		emptyErr   *core.EmptyBatchError
		resolveErr *core.ResolutionError
		missingErr *core.FieldMissingError
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.Is(err, core.ErrUnknownEntity), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrInvalidField), errors.Is(err, errNoFile), errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case errors.As(err, &formatErr), errors.As(err, &emptyErr),
		errors.As(err, &resolveErr), errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)
	status := statusFor(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}
