// Package user holds the domain model for CarbonQuest accounts.
package user

import (
	"time"

	"github.com/google/uuid"
)

// Role describes the authorization level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents the domain model for a registered account.
// Accounts are never deleted; the only permitted mutation after
// registration is setting or replacing WalletAddress.
type User struct {
	ID            string
	Email         string
	WalletAddress string
	Role          Role
	CreatedAt     time.Time
}

// New creates a User with a fresh ID. Email is expected lowercased;
// walletAddress may be empty and linked later.
func New(email, walletAddress string, role Role) *User {
	return &User{
		ID:            uuid.NewString(),
		Email:         email,
		WalletAddress: walletAddress,
		Role:          role,
		CreatedAt:     time.Now().UTC(),
	}
}

// IsAdmin reports whether the account holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Credential associates an account with its password hash. Kept separate
// from User so the hash never travels with the account record. Created at
// registration, never mutated.
type Credential struct {
	UserID       string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the single currently-authenticated identity. At most one
// session is active at a time; login replaces any prior session and
// logout clears it.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return s != nil && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// RegisterRequest is the payload for account registration.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	WalletAddress string `json:"wallet_address,omitzero"`
}

// LoginRequest is the payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LinkWalletRequest is the payload for attaching a wallet address to an account.
type LinkWalletRequest struct {
	UserID        string `json:"user_id" validate:"required"`
	WalletAddress string `json:"wallet_address" validate:"required"`
}

// Response is the public view of an account returned by the API.
type Response struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"wallet_address,omitzero"`
	Role          Role      `json:"role"`
	CreatedAt     time.Time `json:"created_at"`
}

// LoginResponse carries the session token alongside the account view.
type LoginResponse struct {
	Token string   `json:"token"`
	User  Response `json:"user"`
}

// ToResponse converts a User to its API representation.
func ToResponse(u *User) Response {
	return Response{
		ID:            u.ID,
		Email:         u.Email,
		WalletAddress: u.WalletAddress,
		Role:          u.Role,
		CreatedAt:     u.CreatedAt,
	}
}
