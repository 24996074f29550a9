package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse is the JSON body every failed request carries
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
}

// ErrorHandler translates command and query failures into HTTP responses.
// Domain errors carry their own status code and machine-readable code,
// entity validation failures surface with the status their AppError maps
// to, and anything unrecognized becomes a 500 carrying only the caller's
// fallback message so internals never leak to clients.
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode responses
// include stack traces and raw error text.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Handle writes the HTTP response for err. The fallback message is used
// for errors that carry no client-safe message of their own.
func (h *ErrorHandler) Handle(w http.ResponseWriter, err error, fallback string) {
	if err == nil {
		return
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		h.logAt(domainErr.StatusCode, domainErr.Message,
			zap.String("error_code", domainErr.Code),
			zap.String("error_type", string(domainErr.Type)),
			zap.Error(err),
		)
		h.sendJSON(w, domainErr.StatusCode, ErrorResponse{
			Error:     true,
			Message:   domainErr.Message,
			Code:      domainErr.Code,
			Details:   domainErr.Details,
			Retryable: domainErr.Retryable,
		})
		return
	}

	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}

		response := ErrorResponse{
			Error:   true,
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		if h.debug && appErr.StackTrace != "" {
			if response.Details == nil {
				response.Details = make(map[string]interface{})
			}
			response.Details["stack_trace"] = appErr.StackTrace
		}

		h.logAt(status, appErr.Message,
			zap.String("error_type", string(appErr.Type)),
			zap.Error(err),
		)
		h.sendJSON(w, status, response)
		return
	}

	h.logger.Error(fallback, zap.Error(err))
	message := fallback
	if h.debug {
		message = err.Error()
	}
	h.sendJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   true,
		Message: message,
	})
}

// logAt picks the log level from the response status: server faults are
// errors, client faults are warnings
func (h *ErrorHandler) logAt(status int, msg string, fields ...zap.Field) {
	fields = append(fields, zap.Int("status", status))
	switch {
	case status >= http.StatusInternalServerError:
		h.logger.Error(msg, fields...)
	case status >= http.StatusBadRequest:
		h.logger.Warn(msg, fields...)
	default:
		h.logger.Info(msg, fields...)
	}
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, response ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
