package core

import "context"

type walkIDKey struct{}
type sessionIDKey struct{}

func WithWalkID(ctx context.Context, walkID string) context.Context {
	if ctx == nil || walkID == "" {
		return ctx
	}
	return context.WithValue(ctx, walkIDKey{}, walkID)
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	if ctx == nil || sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func WalkIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(walkIDKey{}).(string); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionIDKey{}).(string); ok {
		return v
	}
	return ""
}
