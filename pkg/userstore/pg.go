package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/carbonquest/carbonquest/pkg/user"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the identity store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

func (s *pgStore) CreateUser(ctx context.Context, usr *user.User) error {
	dao := toUserDao(usr)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *pgStore) CreateCredential(ctx context.Context, cred *user.Credential) error {
	_, err := s.db.NewInsert().
		Model(toCredentialDao(cred)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	return nil
}

// CreateAccount inserts the user and credential in one transaction, so a
// failed credential write rolls back the user row instead of leaving an
// account that can never log in.
func (s *pgStore) CreateAccount(ctx context.Context, usr *user.User, cred *user.Credential) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(toUserDao(usr)).
			Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		if _, err := tx.NewInsert().
			Model(toCredentialDao(cred)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create credential: %w", err)
		}
		return nil
	})
}

func (s *pgStore) GetUser(ctx context.Context, opts ...QueryOption) (*user.User, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dao := new(UserDao)
	query := s.db.NewSelect().Model(dao)

	if options.ID != nil {
		query = query.Where("id = ?", *options.ID)
	}
	if options.Email != nil {
		query = query.Where("LOWER(email) = ?", strings.ToLower(*options.Email))
	}
	if options.WalletAddress != nil {
		query = query.Where("LOWER(wallet_address) = ?", strings.ToLower(*options.WalletAddress))
	}

	err := query.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return toUser(dao), nil
}

func (s *pgStore) GetCredential(ctx context.Context, userID string) (*user.Credential, error) {
	dao := new(CredentialDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return toCredential(dao), nil
}

func (s *pgStore) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserDao)(nil)).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email exists: %w", err)
	}
	return exists, nil
}

func (s *pgStore) SetWalletAddress(ctx context.Context, userID, walletAddress string) (*user.User, error) {
	res, err := s.db.NewUpdate().
		Model((*UserDao)(nil)).
		Set("wallet_address = ?", walletAddress).
		Where("id = ?", userID).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to set wallet address: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUser(ctx, WithID(userID))
}

func (s *pgStore) ListUsers(ctx context.Context) ([]*user.User, error) {
	var daos []UserDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*user.User, len(daos))
	for i := range daos {
		users[i] = toUser(&daos[i])
	}
	return users, nil
}

// ReplaceSession installs sess as the only active session. The delete and
// insert run in one transaction so a failed login never clears the prior
// session without installing the new one.
func (s *pgStore) ReplaceSession(ctx context.Context, sess *user.Session) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*SessionDao)(nil)).
			Where("1=1").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear sessions: %w", err)
		}
		if _, err := tx.NewInsert().
			Model(toSessionDao(sess)).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
}

func (s *pgStore) GetSession(ctx context.Context, token string) (*user.Session, error) {
	dao := new(SessionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("token = ?", token).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return toSession(dao), nil
}

func (s *pgStore) CurrentSession(ctx context.Context) (*user.Session, error) {
	dao := new(SessionDao)
	err := s.db.NewSelect().
		Model(dao).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get current session: %w", err)
	}
	return toSession(dao), nil
}

func (s *pgStore) ClearSessions(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*SessionDao)(nil)).
		Where("1=1").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
