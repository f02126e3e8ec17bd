package submissionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"github.com/carbonquest/carbonquest/pkg/submission"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the submission ledger
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) Create(ctx context.Context, sub *submission.Submission) error {
	_, err := s.db.NewInsert().
		Model(toDao(sub)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *pgStore) Get(ctx context.Context, id string) (*submission.Submission, error) {
	dao := new(SubmissionDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return toSubmission(dao), nil
}

func (s *pgStore) ListByOwner(ctx context.Context, filter OwnerFilter) ([]*submission.Submission, error) {
	var daos []SubmissionDao
	query := s.db.NewSelect().Model(&daos)

	wallet := strings.ToLower(filter.WalletAddress)
	switch {
	case filter.UserID != "" && wallet != "":
		query = query.Where("user_id = ? OR LOWER(wallet_address) = ?", filter.UserID, wallet)
	case filter.UserID != "":
		query = query.Where("user_id = ?", filter.UserID)
	default:
		query = query.Where("LOWER(wallet_address) = ?", wallet)
	}

	err := query.Order("created_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return toSubmissions(daos), nil
}

func (s *pgStore) ListAll(ctx context.Context) ([]*submission.Submission, error) {
	var daos []SubmissionDao
	err := s.db.NewSelect().
		Model(&daos).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	return toSubmissions(daos), nil
}

func (s *pgStore) ListByStatus(ctx context.Context, status submission.Status) ([]*submission.Submission, error) {
	var daos []SubmissionDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by status: %w", err)
	}
	return toSubmissions(daos), nil
}

func (s *pgStore) Update(ctx context.Context, sub *submission.Submission) error {
	res, err := s.db.NewUpdate().
		Model(toDao(sub)).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

func toSubmissions(daos []SubmissionDao) []*submission.Submission {
	subs := make([]*submission.Submission, len(daos))
	for i := range daos {
		subs[i] = toSubmission(&daos[i])
	}
	return subs
}
