package common

import (
	"context"
)

// Identity sources recorded on a Caller
const (
	SourceToken  = "token"
	SourceHeader = "header"
)

// Caller is the identity a request was made under
type Caller struct {
	UserID string
	Roles  []string
	Source string
}

type callerKey struct{}

// WithCaller attaches c to ctx
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom returns the caller attached to ctx. Anonymous requests have none.
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok && c.UserID != ""
}

// GetUserID extracts the caller's user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	c, ok := CallerFrom(ctx)
	return c.UserID, ok
}
