package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	pkgerrors "retroboard-backend/pkg/errors"
)

func respondJSON(logger *zap.Logger, w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

func respondError(logger *zap.Logger, w http.ResponseWriter, status int, message string) {
	respondJSON(logger, w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondCommandError maps a failed command or query to an HTTP response
// via the shared error handler. The fallback message is what a client
// sees when the error carries no client-safe message of its own.
func respondCommandError(logger *zap.Logger, w http.ResponseWriter, err error, fallback string) {
	pkgerrors.NewErrorHandler(logger, false).Handle(w, err, fallback)
}
