package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyUserHash  ContextKey = "user_hash"
	ContextKeyUserAlias ContextKey = "user_alias"
	ContextKeyAdmin     ContextKey = "admin"
	ContextKeyRequestID ContextKey = "request_id"
	ContextKeyTraceID   ContextKey = "trace_id"
	ContextKeyStartTime ContextKey = "start_time"
	ContextKeyBoardID   ContextKey = "board_id"
)

// Actor identifies the caller of an engine operation. The user hash is an
// opaque token minted by the identity collaborator; the engine never decodes
// it. Admin is an explicit capability, not something inferred from context.
type Actor struct {
	UserHash string
	Alias    string
	Admin    bool
}

// WithActor adds the calling actor to context
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ContextKeyUserHash, actor.UserHash)
	ctx = context.WithValue(ctx, ContextKeyUserAlias, actor.Alias)
	return context.WithValue(ctx, ContextKeyAdmin, actor.Admin)
}

// IsAdmin reports whether the calling actor carries the admin capability
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(ContextKeyAdmin).(bool)
	return ok && admin
}

// GetUserHash extracts the caller's hashed identity from context
func GetUserHash(ctx context.Context) (string, bool) {
	userHash, ok := ctx.Value(ContextKeyUserHash).(string)
	return userHash, ok
}

// GetUserAlias extracts the caller's display alias from context
func GetUserAlias(ctx context.Context) (string, bool) {
	alias, ok := ctx.Value(ContextKeyUserAlias).(string)
	return alias, ok
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithTraceID adds trace ID to context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ContextKeyTraceID, traceID)
}

// GetTraceID extracts trace ID from context
func GetTraceID(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(ContextKeyTraceID).(string)
	return traceID, ok
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time)
	return startTime, ok
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := GetStartTime(ctx); ok {
		return time.Since(startTime)
	}
	return 0
}

// WithBoardID adds the board scope to context
func WithBoardID(ctx context.Context, boardID string) context.Context {
	return context.WithValue(ctx, ContextKeyBoardID, boardID)
}

// GetBoardID extracts the board scope from context
func GetBoardID(ctx context.Context) (string, bool) {
	boardID, ok := ctx.Value(ContextKeyBoardID).(string)
	return boardID, ok
}

// EnrichContext adds common metadata to context
func EnrichContext(ctx context.Context, actor Actor, requestID string) context.Context {
	ctx = WithActor(ctx, actor)
	ctx = WithRequestID(ctx, requestID)
	ctx = WithStartTime(ctx, time.Now())
	return ctx
}

// ContextMetadata contains all context metadata
type ContextMetadata struct {
	UserHash  string        `json:"user_hash,omitempty"`
	RequestID string        `json:"request_id,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
	BoardID   string        `json:"board_id,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// ExtractMetadata extracts all metadata from context
func ExtractMetadata(ctx context.Context) ContextMetadata {
	meta := ContextMetadata{}

	if userHash, ok := GetUserHash(ctx); ok {
		meta.UserHash = userHash
	}
	if requestID, ok := GetRequestID(ctx); ok {
		meta.RequestID = requestID
	}
	if traceID, ok := GetTraceID(ctx); ok {
		meta.TraceID = traceID
	}
	if boardID, ok := GetBoardID(ctx); ok {
		meta.BoardID = boardID
	}
	meta.Duration = GetElapsedTime(ctx)

	return meta
}
