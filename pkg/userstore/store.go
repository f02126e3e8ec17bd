// Package userstore persists accounts, credentials and the active session.
package userstore

import (
	"context"
	"errors"

	"github.com/carbonquest/carbonquest/pkg/user"
)

// ErrUserNotFound is returned when a user lookup finds no matching record.
var ErrUserNotFound = errors.New("user not found")

// ErrSessionNotFound is returned when no matching session is stored.
var ErrSessionNotFound = errors.New("session not found")

// ErrDuplicateEmail is returned when creating a user whose email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Store defines the interface for identity data persistence
type Store interface {
	SessionStore
	CreateUser(ctx context.Context, usr *user.User) error
	CreateCredential(ctx context.Context, cred *user.Credential) error
	// CreateAccount writes the user and its credential atomically. A
	// failed credential write must not leave a user record occupying
	// the email.
	CreateAccount(ctx context.Context, usr *user.User, cred *user.Credential) error
	GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error)
	GetCredential(ctx context.Context, userID string) (*user.Credential, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// SetWalletAddress overwrites the wallet address on the user record
	// (last write wins) and returns the updated user.
	SetWalletAddress(ctx context.Context, userID, walletAddress string) (*user.User, error)
	ListUsers(ctx context.Context) ([]*user.User, error)
}

// SessionStore defines the interface for session persistence. The system
// keeps at most one active session; replacing installs a new session and
// discards any prior one.
type SessionStore interface {
	ReplaceSession(ctx context.Context, sess *user.Session) error
	GetSession(ctx context.Context, token string) (*user.Session, error)
	// CurrentSession returns the single active session, if any.
	CurrentSession(ctx context.Context) (*user.Session, error)
	ClearSessions(ctx context.Context) error
}

// QueryOptions defines options for querying users
type QueryOptions struct {
	ID            *string
	Email         *string
	WalletAddress *string
}

// QueryOption is a functional option for querying users
type QueryOption func(*QueryOptions)

// WithID sets the user ID filter
func WithID(id string) QueryOption {
	return func(opts *QueryOptions) {
		opts.ID = &id
	}
}

// WithEmail sets the email filter. Matching is case-insensitive.
func WithEmail(email string) QueryOption {
	return func(opts *QueryOptions) {
		opts.Email = &email
	}
}

// WithWalletAddress sets the wallet address filter
func WithWalletAddress(addr string) QueryOption {
	return func(opts *QueryOptions) {
		opts.WalletAddress = &addr
	}
}
