package userstore

import (
	"context"
	"strings"
	"sync"

	"github.com/carbonquest/carbonquest/pkg/user"
)

// memoryStore is an in-memory Store used by tests and demo mode.
// Records are copied on the way in and out so callers cannot mutate
// stored state.
type memoryStore struct {
	mu          sync.RWMutex
	users       []*user.User
	credentials map[string]*user.Credential
	session     *user.Session
}

// NewMemoryStore creates an in-memory identity store.
func NewMemoryStore() *memoryStore {
	return &memoryStore{
		credentials: make(map[string]*user.Credential),
	}
}

func copyUser(u *user.User) *user.User {
	cp := *u
	return &cp
}

func (s *memoryStore) CreateUser(_ context.Context, usr *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, usr.Email) {
			return ErrDuplicateEmail
		}
	}
	s.users = append(s.users, copyUser(usr))
	return nil
}

func (s *memoryStore) CreateCredential(_ context.Context, cred *user.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *cred
	s.credentials[cred.UserID] = &cp
	return nil
}

func (s *memoryStore) CreateAccount(_ context.Context, usr *user.User, cred *user.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, usr.Email) {
			return ErrDuplicateEmail
		}
	}
	s.users = append(s.users, copyUser(usr))
	cp := *cred
	s.credentials[cred.UserID] = &cp
	return nil
}

func (s *memoryStore) GetUser(_ context.Context, opts ...QueryOption) (*user.User, error) {
	options := &QueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if options.ID != nil && u.ID != *options.ID {
			continue
		}
		if options.Email != nil && !strings.EqualFold(u.Email, *options.Email) {
			continue
		}
		if options.WalletAddress != nil && !strings.EqualFold(u.WalletAddress, *options.WalletAddress) {
			continue
		}
		return copyUser(u), nil
	}
	return nil, ErrUserNotFound
}

func (s *memoryStore) GetCredential(_ context.Context, userID string) (*user.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cred, ok := s.credentials[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *cred
	return &cp, nil
}

func (s *memoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) SetWalletAddress(_ context.Context, userID, walletAddress string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == userID {
			u.WalletAddress = walletAddress
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *memoryStore) ListUsers(_ context.Context) ([]*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*user.User, len(s.users))
	for i, u := range s.users {
		users[i] = copyUser(u)
	}
	return users, nil
}

func (s *memoryStore) ReplaceSession(_ context.Context, sess *user.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sess
	s.session = &cp
	return nil
}

func (s *memoryStore) GetSession(_ context.Context, token string) (*user.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil || s.session.Token != token {
		return nil, ErrSessionNotFound
	}
	cp := *s.session
	return &cp, nil
}

func (s *memoryStore) CurrentSession(_ context.Context) (*user.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return nil, ErrSessionNotFound
	}
	cp := *s.session
	return &cp, nil
}

func (s *memoryStore) ClearSessions(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = nil
	return nil
}
