package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/carbonquest/carbonquest/pkg/app/errors"
	apphttp "github.com/carbonquest/carbonquest/pkg/app/http"
	"github.com/carbonquest/carbonquest/pkg/user"
)

// SessionResolver turns a session token into the account it belongs to.
// Implemented by the identity service.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionToken string) (*user.User, error)
}

// Middleware validates bearer tokens and injects the account into the
// request context.
type Middleware struct {
	resolver SessionResolver
	secret   []byte
	now      func() time.Time
}

// NewMiddleware creates an auth middleware using the given session resolver
// and JWT signing secret.
func NewMiddleware(resolver SessionResolver, secret []byte) *Middleware {
	return &Middleware{
		resolver: resolver,
		secret:   secret,
		now:      time.Now,
	}
}

// RequireAuth rejects requests without a valid session with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, token, err := m.authenticate(r)
		if err != nil {
			apphttp.DefaultErrorHandler(w, err)
			return
		}

		ctx := WithUser(r.Context(), usr)
		ctx = WithSessionToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects requests without a valid session with 401 and
// non-admin sessions with 403.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		usr, _ := UserFromContext(r.Context())
		if !usr.IsAdmin() {
			apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (m *Middleware) authenticate(r *http.Request) (*user.User, string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, "", apperrors.UnauthorizedError(nil, "authorization required")
	}

	bearer, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, "", apperrors.UnauthorizedError(nil, "invalid authorization header")
	}

	sessionToken, err := SessionTokenFromJWT(bearer, m.secret)
	if err != nil {
		return nil, "", apperrors.UnauthorizedError(err, "invalid or expired token")
	}

	usr, err := m.resolver.ResolveSession(r.Context(), sessionToken)
	if err != nil {
		return nil, "", apperrors.UnauthorizedError(err, "session not active")
	}

	return usr, sessionToken, nil
}
