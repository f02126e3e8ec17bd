// Package submissionstore persists the submission ledger.
package submissionstore

import (
	"context"
	"errors"

	"github.com/carbonquest/carbonquest/pkg/submission"
)

// ErrSubmissionNotFound is returned when a lookup finds no matching record.
var ErrSubmissionNotFound = errors.New("submission not found")

// OwnerFilter selects the submissions belonging to a caller. When UserID
// is set, a submission matches if its user id equals it or its wallet
// address equals WalletAddress case-insensitively; otherwise only the
// wallet address comparison applies.
type OwnerFilter struct {
	WalletAddress string
	UserID        string
}

// Store defines the interface for submission ledger persistence.
// Submissions are append-and-transition only; nothing is ever deleted.
type Store interface {
	Create(ctx context.Context, sub *submission.Submission) error
	Get(ctx context.Context, id string) (*submission.Submission, error)
	// ListByOwner returns the caller's submissions in insertion order
	// (oldest first). Never fails on an empty result.
	ListByOwner(ctx context.Context, filter OwnerFilter) ([]*submission.Submission, error)
	// ListAll returns every submission in the ledger, oldest first.
	ListAll(ctx context.Context) ([]*submission.Submission, error)
	// Update persists the full record after a status transition.
	Update(ctx context.Context, sub *submission.Submission) error
	// ListByStatus returns submissions in the given status, oldest first.
	ListByStatus(ctx context.Context, status submission.Status) ([]*submission.Submission, error)
}
