package ctxutil

import (
	"context"
)

type ctxKey string

const (
	userIDKey     ctxKey = "user_id"
	requestIDKey  ctxKey = "request_id"
	authSourceKey ctxKey = "auth_source"
)

// WithUserID stores the user ID in the context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx extracts the user ID from the context.
// Returns 0 and false if the value is missing, non-positive, or wrong type.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

// WithAuthSource records how the actor was resolved ("token" or "session").
func WithAuthSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, authSourceKey, source)
}

// AuthSourceFromCtx returns the recorded auth source, or "" if anonymous.
func AuthSourceFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(authSourceKey).(string)
	return s
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
