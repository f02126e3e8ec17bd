// Package service implements the identity workflow: registration, login,
// session tracking and wallet linking.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/carbonquest/carbonquest/pkg/app/errors"
	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/metrics"
	"github.com/carbonquest/carbonquest/pkg/user"
	"github.com/carbonquest/carbonquest/pkg/userstore"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials deliberately covers both unknown email and wrong
	// password so a caller cannot probe which field was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidWallet      = errors.New("invalid wallet address")
)

// Service defines the interface for the identity business logic
type Service interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*user.User, error)
	LinkWallet(ctx context.Context, req *user.LinkWalletRequest) (*user.User, error)
	ResolveSession(ctx context.Context, sessionToken string) (*user.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type identityService struct {
	store      userstore.Store
	validate   *validator.Validate
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new identity service
func NewService(store userstore.Store, jwtSecret []byte, sessionTTL time.Duration, logger *zap.Logger) Service {
	return &identityService{
		store:      store,
		validate:   validator.New(),
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a new account with role user. The email is stored
// lowercased and must be unique case-insensitively; the password is kept
// only as a bcrypt hash in a separate credential record.
func (s *identityService) Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "email and password are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	wallet := req.WalletAddress
	if wallet != "" {
		if !auth.ValidateEVMAddress(wallet) {
			return nil, apperrors.ValidationError(ErrInvalidWallet, "invalid wallet address")
		}
		wallet = auth.NormalizeAddress(wallet)
	}

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.ConflictError(ErrDuplicateEmail, "email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usr := user.New(email, wallet, user.RoleUser)
	cred := &user.Credential{
		UserID:       usr.ID,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, usr, cred); err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil, apperrors.ConflictError(ErrDuplicateEmail, "email already registered")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.Info("account registered",
		zap.String("user_id", usr.ID),
		zap.String("email", usr.Email),
	)
	return usr, nil
}

// Login verifies the credential and establishes the active session,
// replacing any prior one. Returns a signed bearer token.
func (s *identityService) Login(ctx context.Context, req *user.LoginRequest) (*user.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "email and password are required")
	}

	usr, err := s.store.GetUser(ctx, userstore.WithEmail(req.Email))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, apperrors.UnauthorizedError(ErrInvalidCredentials, "invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	cred, err := s.store.GetCredential(ctx, usr.ID)
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, apperrors.UnauthorizedError(ErrInvalidCredentials, "invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up credential: %w", err)
	}

	if !auth.CheckPassword(cred.PasswordHash, req.Password) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperrors.UnauthorizedError(ErrInvalidCredentials, "invalid email or password")
	}

	now := s.now().UTC()
	sess := &user.Session{
		Token:     uuid.NewString(),
		UserID:    usr.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.store.ReplaceSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	bearer, err := auth.GenerateToken(sess.Token, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info("login succeeded", zap.String("user_id", usr.ID))
	return &user.LoginResponse{
		Token: bearer,
		User:  user.ToResponse(usr),
	}, nil
}

// Logout clears the active session unconditionally.
func (s *identityService) Logout(ctx context.Context) error {
	if err := s.store.ClearSessions(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CurrentUser returns the account behind the active session, or nil when
// no session is active. Never fails on a missing or expired session.
func (s *identityService) CurrentUser(ctx context.Context) (*user.User, error) {
	sess, err := s.store.CurrentSession(ctx)
	if err != nil {
		if errors.Is(err, userstore.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, nil
	}

	usr, err := s.store.GetUser(ctx, userstore.WithID(sess.UserID))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return usr, nil
}

// LinkWallet sets or replaces the wallet address on the account. A missing
// account yields (nil, nil) rather than an error. The session always reads
// the account record fresh, so an active session observes the new address
// without a re-login.
func (s *identityService) LinkWallet(ctx context.Context, req *user.LinkWalletRequest) (*user.User, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "user id and wallet address are required")
	}
	if !auth.ValidateEVMAddress(req.WalletAddress) {
		return nil, apperrors.ValidationError(ErrInvalidWallet, "invalid wallet address")
	}

	usr, err := s.store.SetWalletAddress(ctx, req.UserID, auth.NormalizeAddress(req.WalletAddress))
	if err != nil {
		if errors.Is(err, userstore.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to link wallet: %w", err)
	}

	s.logger.Info("wallet linked",
		zap.String("user_id", usr.ID),
		zap.String("wallet_address", usr.WalletAddress),
	)
	return usr, nil
}

// ResolveSession maps a session token to its account. Used by the HTTP
// auth middleware.
func (s *identityService) ResolveSession(ctx context.Context, sessionToken string) (*user.User, error) {
	sess, err := s.store.GetSession(ctx, sessionToken)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, userstore.ErrSessionNotFound
	}
	return s.store.GetUser(ctx, userstore.WithID(sess.UserID))
}

// EnsureAdmin creates the bootstrap admin account if it does not exist.
// Idempotent: repeated calls after the first are no-ops.
func (s *identityService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := user.New(email, "", user.RoleAdmin)
	cred := &user.Credential{
		UserID:       admin.ID,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, admin, cred); err != nil {
		// Lost a race with a concurrent bootstrap; the account exists.
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("bootstrap admin ensured", zap.String("email", email))
	return nil
}
