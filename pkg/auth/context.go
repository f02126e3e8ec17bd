package auth

import (
	"context"

	"github.com/carbonquest/carbonquest/pkg/user"
)

// Context keys for authentication data
type contextKey string

const (
	// ContextKeyUser is the context key for the authenticated account
	ContextKeyUser contextKey = "user"
	// ContextKeySessionToken is the context key for the active session token
	ContextKeySessionToken contextKey = "session_token"
)

// WithUser adds the authenticated account to the context
func WithUser(ctx context.Context, usr *user.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, usr)
}

// UserFromContext retrieves the authenticated account from the context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	usr, ok := ctx.Value(ContextKeyUser).(*user.User)
	return usr, ok
}

// WithSessionToken adds the session token to the context
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ContextKeySessionToken, token)
}

// SessionTokenFromContext retrieves the session token from the context
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(ContextKeySessionToken).(string)
	return token, ok
}
