package submissionstore

import (
	"context"
	"strings"
	"sync"

	"github.com/carbonquest/carbonquest/pkg/submission"
)

// memoryStore is an in-memory Store used by tests and demo mode.
// Insertion order is preserved so listings come back oldest first.
type memoryStore struct {
	mu   sync.RWMutex
	subs []*submission.Submission
}

// NewMemoryStore creates an in-memory submission ledger.
func NewMemoryStore() *memoryStore {
	return &memoryStore{}
}

func copySubmission(sub *submission.Submission) *submission.Submission {
	cp := *sub
	return &cp
}

func (s *memoryStore) Create(_ context.Context, sub *submission.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = append(s.subs, copySubmission(sub))
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.subs {
		if sub.ID == id {
			return copySubmission(sub), nil
		}
	}
	return nil, ErrSubmissionNotFound
}

func matchesOwner(sub *submission.Submission, filter OwnerFilter) bool {
	if filter.UserID != "" && sub.UserID == filter.UserID {
		return true
	}
	return filter.WalletAddress != "" &&
		strings.EqualFold(sub.WalletAddress, filter.WalletAddress)
}

func (s *memoryStore) ListByOwner(_ context.Context, filter OwnerFilter) ([]*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*submission.Submission, 0)
	for _, sub := range s.subs {
		if matchesOwner(sub, filter) {
			out = append(out, copySubmission(sub))
		}
	}
	return out, nil
}

func (s *memoryStore) ListAll(_ context.Context) ([]*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*submission.Submission, len(s.subs))
	for i, sub := range s.subs {
		out[i] = copySubmission(sub)
	}
	return out, nil
}

func (s *memoryStore) ListByStatus(_ context.Context, status submission.Status) ([]*submission.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*submission.Submission, 0)
	for _, sub := range s.subs {
		if sub.Status == status {
			out = append(out, copySubmission(sub))
		}
	}
	return out, nil
}

func (s *memoryStore) Update(_ context.Context, sub *submission.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.subs {
		if existing.ID == sub.ID {
			s.subs[i] = copySubmission(sub)
			return nil
		}
	}
	return ErrSubmissionNotFound
}
