// Package service implements the submission ledger workflow: activity
// submission, owner queries and the admin review transition with minting.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/carbonquest/carbonquest/pkg/app/errors"
	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/ethereum"
	"github.com/carbonquest/carbonquest/pkg/images"
	"github.com/carbonquest/carbonquest/pkg/metrics"
	"github.com/carbonquest/carbonquest/pkg/submission"
	"github.com/carbonquest/carbonquest/pkg/submissionstore"
)

var (
	ErrMissingOwner   = errors.New("submission requires a wallet address or an account")
	ErrWalletRequired = errors.New("wallet address required before mint")
)

// Minter is the narrow chain-collaborator interface the review workflow
// needs. Implemented by ethereum.Client.
type Minter interface {
	Mint(ctx context.Context, recipient, tokenURI string) (*ethereum.MintResult, error)
}

// Service defines the interface for the submission ledger business logic
type Service interface {
	SubmitActivity(ctx context.Context, req *submission.SubmitRequest, userID string) (*submission.Submission, error)
	GetUserSubmissions(ctx context.Context, walletAddress, userID string) ([]*submission.Submission, error)
	GetAllSubmissions(ctx context.Context) ([]*submission.Submission, error)
	GetSubmission(ctx context.Context, id string) (*submission.Submission, error)
	Review(ctx context.Context, id string, req *submission.ReviewRequest) (*submission.Submission, error)
}

type ledgerService struct {
	store        submissionstore.Store
	images       images.Store
	minter       Minter
	validate     *validator.Validate
	tokenURIBase string
	logger       *zap.Logger
}

// NewService creates a new submission ledger service. minter may be nil,
// in which case approvals require an explicit token URI and record no
// token id (demo mode without a chain connection).
func NewService(
	store submissionstore.Store,
	imageStore images.Store,
	minter Minter,
	tokenURIBase string,
	logger *zap.Logger,
) Service {
	return &ledgerService{
		store:        store,
		images:       imageStore,
		minter:       minter,
		validate:     validator.New(),
		tokenURIBase: tokenURIBase,
		logger:       logger,
	}
}

// SubmitActivity validates the claim, stores the proof image and appends
// a pending submission to the ledger. Either a wallet address or an
// authenticated account must identify the owner. The record is written in
// one step; a failed image upload leaves the ledger untouched.
func (s *ledgerService) SubmitActivity(
	ctx context.Context,
	req *submission.SubmitRequest,
	userID string,
) (*submission.Submission, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "activity type, title, description and image are required")
	}

	wallet := req.WalletAddress
	if wallet != "" {
		if !auth.ValidateEVMAddress(wallet) {
			return nil, apperrors.ValidationError(nil, "invalid wallet address")
		}
		wallet = auth.NormalizeAddress(wallet)
	}
	if wallet == "" && userID == "" {
		return nil, apperrors.ValidationError(ErrMissingOwner, "wallet address or account required")
	}

	payload, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		return nil, apperrors.ValidationError(err, "image must be base64 encoded")
	}
	if len(payload) == 0 {
		return nil, apperrors.ValidationError(images.ErrEmptyImage, "image is required")
	}

	imageKey, imageURL, err := s.images.Put(ctx, payload, detectContentType(payload))
	if err != nil {
		return nil, apperrors.DependencyError(err, "failed to store proof image")
	}

	sub := submission.New(
		submission.ActivityType(strings.TrimSpace(req.ActivityType)),
		strings.TrimSpace(req.Title),
		strings.TrimSpace(req.Description),
		imageKey,
		imageURL,
		wallet,
		userID,
	)

	if err := s.store.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to append submission: %w", err)
	}

	metrics.SubmissionsTotal.WithLabelValues(string(sub.ActivityType)).Inc()
	s.logger.Info("submission created",
		zap.String("submission_id", sub.ID),
		zap.String("activity_type", string(sub.ActivityType)),
		zap.String("wallet_address", sub.WalletAddress),
		zap.String("user_id", sub.UserID),
	)
	return sub, nil
}

// GetUserSubmissions returns the caller's submissions in insertion order.
// With a user id, submissions match by account or by wallet address
// (case-insensitive); without one, only the wallet address applies.
func (s *ledgerService) GetUserSubmissions(
	ctx context.Context,
	walletAddress, userID string,
) ([]*submission.Submission, error) {
	if walletAddress == "" && userID == "" {
		return []*submission.Submission{}, nil
	}
	return s.store.ListByOwner(ctx, submissionstore.OwnerFilter{
		WalletAddress: walletAddress,
		UserID:        userID,
	})
}

// GetAllSubmissions returns every submission for the admin reviewer.
func (s *ledgerService) GetAllSubmissions(ctx context.Context) ([]*submission.Submission, error) {
	return s.store.ListAll(ctx)
}

// GetSubmission returns a single submission by id.
func (s *ledgerService) GetSubmission(ctx context.Context, id string) (*submission.Submission, error) {
	sub, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, submissionstore.ErrSubmissionNotFound) {
			return nil, apperrors.NotFoundError(err, "submission not found")
		}
		return nil, err
	}
	return sub, nil
}

// Review resolves a pending submission. Approval mints an NFT to the
// submission's wallet before the transition is recorded, so a failed mint
// leaves the submission pending and retryable. Transitions away from a
// terminal status are rejected.
func (s *ledgerService) Review(
	ctx context.Context,
	id string,
	req *submission.ReviewRequest,
) (*submission.Submission, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.ValidationError(err, "status must be approved or rejected")
	}
	next := submission.Status(req.Status)

	sub, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, submissionstore.ErrSubmissionNotFound) {
			return nil, apperrors.NotFoundError(err, "submission not found")
		}
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}

	if !sub.Status.CanTransitionTo(next) {
		return nil, apperrors.ConflictError(
			submission.ErrInvalidTransition,
			fmt.Sprintf("submission already %s", sub.Status),
		)
	}

	var tokenID, tokenURI string
	if next == submission.StatusApproved {
		tokenID, tokenURI, err = s.mint(ctx, sub, req)
		if err != nil {
			return nil, err
		}
	}

	if err := sub.Transition(next, tokenID, tokenURI); err != nil {
		return nil, apperrors.ConflictError(err, "invalid status transition")
	}
	if err := s.store.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to record review: %w", err)
	}

	metrics.ReviewsTotal.WithLabelValues(string(next)).Inc()
	s.logger.Info("submission reviewed",
		zap.String("submission_id", sub.ID),
		zap.String("status", string(sub.Status)),
		zap.String("token_id", sub.TokenID),
	)
	return sub, nil
}

// mint derives the token URI and mints to the submission's wallet.
func (s *ledgerService) mint(
	ctx context.Context,
	sub *submission.Submission,
	req *submission.ReviewRequest,
) (string, string, error) {
	tokenURI := req.TokenURI
	if tokenURI == "" {
		tokenURI = strings.TrimSuffix(s.tokenURIBase, "/") + "/" + sub.ID
	}

	if s.minter == nil {
		// Demo mode: record the reviewer-supplied token id, if any,
		// along with the URI.
		return req.TokenID, tokenURI, nil
	}

	if sub.WalletAddress == "" {
		return "", "", apperrors.ValidationError(ErrWalletRequired, "wallet address required before mint")
	}

	start := time.Now()
	result, err := s.minter.Mint(ctx, sub.WalletAddress, tokenURI)
	if err != nil {
		metrics.MintsTotal.WithLabelValues("error").Inc()
		return "", "", apperrors.DependencyError(err, "failed to mint NFT")
	}
	metrics.MintsTotal.WithLabelValues("ok").Inc()
	metrics.MintDuration.Observe(time.Since(start).Seconds())

	s.logger.Info("NFT minted",
		zap.String("submission_id", sub.ID),
		zap.String("token_id", result.TokenID),
		zap.String("tx_hash", result.TxHash),
	)
	return result.TokenID, tokenURI, nil
}

func detectContentType(payload []byte) string {
	return http.DetectContentType(payload)
}
