package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decodeErrorResponse(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestErrorHandler_Handle_DomainError(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	err := ErrReactionLimitReached.WithDetail("board_id", "board-1")

	// Act
	handler.Handle(rec, err, "failed to add reaction")

	// Assert
	assert.Equal(t, err.StatusCode, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decodeErrorResponse(t, rec)
	assert.True(t, resp.Error)
	assert.Equal(t, "REACTION_LIMIT_REACHED", resp.Code)
	assert.Equal(t, ErrReactionLimitReached.Message, resp.Message)
	assert.Equal(t, "board-1", resp.Details["board_id"])
	assert.False(t, resp.Retryable)
}

func TestErrorHandler_Handle_WrappedDomainError(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	err := fmt.Errorf("handling command: %w", ErrCardNotFound)

	// Act
	handler.Handle(rec, err, "failed to load card")

	// Assert
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "CARD_NOT_FOUND", resp.Code)
}

func TestErrorHandler_Handle_ValidationError(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	err := NewValidationError("card text cannot be empty")

	// Act
	handler.Handle(rec, err, "failed to create card")

	// Assert
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.True(t, resp.Error)
	assert.Equal(t, "card text cannot be empty", resp.Message)
	// Stack traces stay internal outside debug mode
	_, hasStack := resp.Details["stack_trace"]
	assert.False(t, hasStack)
}

func TestErrorHandler_Handle_UnknownError(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()
	err := fmt.Errorf("dynamodb: connection reset")

	// Act
	handler.Handle(rec, err, "failed to save card")

	// Assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.True(t, resp.Error)
	// Clients see the fallback, never the raw error
	assert.Equal(t, "failed to save card", resp.Message)
}

func TestErrorHandler_Handle_DebugExposesDetail(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), true)
	rec := httptest.NewRecorder()
	err := fmt.Errorf("dynamodb: connection reset")

	// Act
	handler.Handle(rec, err, "failed to save card")

	// Assert
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeErrorResponse(t, rec)
	assert.Equal(t, "dynamodb: connection reset", resp.Message)
}

func TestErrorHandler_Handle_NilError(t *testing.T) {
	// Arrange
	handler := NewErrorHandler(zap.NewNop(), false)
	rec := httptest.NewRecorder()

	// Act
	handler.Handle(rec, nil, "unused")

	// Assert: nothing written
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
