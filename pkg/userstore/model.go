package userstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/carbonquest/carbonquest/pkg/user"
)

// UserDao is a data access object that maps directly to the 'users' table in PostgreSQL.
type UserDao struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	Email         string    `bun:"email,unique,notnull,type:varchar(255)"`
	WalletAddress *string   `bun:"wallet_address,type:varchar(42)"`
	Role          string    `bun:"role,notnull,type:varchar(16)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// CredentialDao maps to the 'credentials' table. Kept separate from users
// so password hashes never ride along with account reads.
type CredentialDao struct {
	bun.BaseModel `bun:"table:credentials,alias:c"`
	UserID        string    `bun:"user_id,pk,type:varchar(36)"`
	PasswordHash  string    `bun:"password_hash,notnull,type:varchar(128)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

// SessionDao maps to the 'sessions' table.
type SessionDao struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`
	Token         string    `bun:"token,pk,type:varchar(36)"`
	UserID        string    `bun:"user_id,notnull,type:varchar(36)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
}

func toUserDao(usr *user.User) *UserDao {
	dao := &UserDao{
		ID:        usr.ID,
		Email:     usr.Email,
		Role:      string(usr.Role),
		CreatedAt: usr.CreatedAt,
	}
	if usr.WalletAddress != "" {
		dao.WalletAddress = &usr.WalletAddress
	}
	return dao
}

func toUser(dao *UserDao) *user.User {
	usr := &user.User{
		ID:        dao.ID,
		Email:     dao.Email,
		Role:      user.Role(dao.Role),
		CreatedAt: dao.CreatedAt,
	}
	if dao.WalletAddress != nil {
		usr.WalletAddress = *dao.WalletAddress
	}
	return usr
}

func toCredentialDao(cred *user.Credential) *CredentialDao {
	return &CredentialDao{
		UserID:       cred.UserID,
		PasswordHash: cred.PasswordHash,
		CreatedAt:    cred.CreatedAt,
	}
}

func toCredential(dao *CredentialDao) *user.Credential {
	return &user.Credential{
		UserID:       dao.UserID,
		PasswordHash: dao.PasswordHash,
		CreatedAt:    dao.CreatedAt,
	}
}

func toSessionDao(sess *user.Session) *SessionDao {
	return &SessionDao{
		Token:     sess.Token,
		UserID:    sess.UserID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	}
}

func toSession(dao *SessionDao) *user.Session {
	return &user.Session{
		Token:     dao.Token,
		UserID:    dao.UserID,
		CreatedAt: dao.CreatedAt,
		ExpiresAt: dao.ExpiresAt,
	}
}
