// Package submission holds the domain model for eco-activity submissions
// and their review state machine.
package submission

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityType categorizes an eco-activity claim. Free-form strings are
// accepted; the canonical values below carry leaderboard weights.
type ActivityType string

const (
	ActivityTreePlanting         ActivityType = "tree-planting"
	ActivityCleanEnergy          ActivityType = "clean-energy"
	ActivityWasteReduction       ActivityType = "waste-reduction"
	ActivitySustainableTransport ActivityType = "sustainable-transport"
)

// Status is the review state of a submission.
type Status string

const (
	// StatusPending is the initial state of every submission.
	StatusPending Status = "pending"
	// StatusApproved is terminal; set by admin review, with token details.
	StatusApproved Status = "approved"
	// StatusRejected is terminal; set by admin review.
	StatusRejected Status = "rejected"
)

// ErrInvalidTransition is returned when a status change would leave a
// terminal state or target an unknown status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether the transition s -> next is permitted.
// The only defined transitions are pending -> approved and
// pending -> rejected.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && next.Terminal()
}

// Submission is a user-reported eco-activity claim awaiting or having
// received admin review. Created by submitActivity, mutated only by the
// review transition, never deleted.
type Submission struct {
	ID            string
	ActivityType  ActivityType
	Title         string
	Description   string
	ImageKey      string
	ImageURL      string
	WalletAddress string
	UserID        string
	Status        Status
	TokenID       string
	TokenURI      string
	CreatedAt     time.Time
}

// New creates a pending Submission with a fresh ID. At least one of
// walletAddress and userID must be non-empty so the owner can retrieve
// it later; callers validate that before construction.
func New(activityType ActivityType, title, description, imageKey, imageURL, walletAddress, userID string) *Submission {
	return &Submission{
		ID:            uuid.NewString(),
		ActivityType:  activityType,
		Title:         title,
		Description:   description,
		ImageKey:      imageKey,
		ImageURL:      imageURL,
		WalletAddress: walletAddress,
		UserID:        userID,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
}

// Transition applies a checked status change. Token details are recorded
// only on approval. Returns ErrInvalidTransition when the current status
// is terminal or next is not a terminal review outcome.
func (s *Submission) Transition(next Status, tokenID, tokenURI string) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	if next == StatusApproved {
		s.TokenID = tokenID
		s.TokenURI = tokenURI
	}
	return nil
}

// SubmitRequest is the payload for creating a submission. The proof image
// travels base64-encoded in the JSON body.
type SubmitRequest struct {
	ActivityType  string `json:"activity_type" validate:"required"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
	Image         string `json:"image" validate:"required"`
	WalletAddress string `json:"wallet_address,omitzero"`
}

// ReviewRequest is the admin payload for resolving a pending submission.
// TokenID and TokenURI apply to approvals; with a chain client connected
// the mint result takes precedence over a supplied token id.
type ReviewRequest struct {
	Status   string `json:"status" validate:"required,oneof=approved rejected"`
	TokenID  string `json:"token_id,omitzero"`
	TokenURI string `json:"token_uri,omitzero"`
}

// Response is the public view of a submission returned by the API.
type Response struct {
	ID            string    `json:"id"`
	ActivityType  string    `json:"activity_type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	WalletAddress string    `json:"wallet_address,omitzero"`
	UserID        string    `json:"user_id,omitzero"`
	Status        Status    `json:"status"`
	TokenID       string    `json:"token_id,omitzero"`
	TokenURI      string    `json:"token_uri,omitzero"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToResponse converts a Submission to its API representation.
func ToResponse(sub *Submission) Response {
	return Response{
		ID:            sub.ID,
		ActivityType:  string(sub.ActivityType),
		Title:         sub.Title,
		Description:   sub.Description,
		ImageURL:      sub.ImageURL,
		WalletAddress: sub.WalletAddress,
		UserID:        sub.UserID,
		Status:        sub.Status,
		TokenID:       sub.TokenID,
		TokenURI:      sub.TokenURI,
		CreatedAt:     sub.CreatedAt,
	}
}
