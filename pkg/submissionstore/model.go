package submissionstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/carbonquest/carbonquest/pkg/submission"
)

// SubmissionDao is a data access object that maps directly to the
// 'submissions' table in PostgreSQL.
type SubmissionDao struct {
	bun.BaseModel `bun:"table:submissions,alias:sub"`
	ID            string    `bun:"id,pk,type:varchar(36)"`
	ActivityType  string    `bun:"activity_type,notnull,type:varchar(64)"`
	Title         string    `bun:"title,notnull,type:varchar(255)"`
	Description   string    `bun:"description,notnull,type:text"`
	ImageKey      string    `bun:"image_key,notnull,type:varchar(255)"`
	ImageURL      string    `bun:"image_url,notnull,type:varchar(512)"`
	WalletAddress *string   `bun:"wallet_address,type:varchar(42)"`
	UserID        *string   `bun:"user_id,type:varchar(36)"`
	Status        string    `bun:"status,notnull,type:varchar(16)"`
	TokenID       *string   `bun:"token_id,type:varchar(78)"`
	TokenURI      *string   `bun:"token_uri,type:varchar(512)"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func toDao(sub *submission.Submission) *SubmissionDao {
	dao := &SubmissionDao{
		ID:           sub.ID,
		ActivityType: string(sub.ActivityType),
		Title:        sub.Title,
		Description:  sub.Description,
		ImageKey:     sub.ImageKey,
		ImageURL:     sub.ImageURL,
		Status:       string(sub.Status),
		CreatedAt:    sub.CreatedAt,
	}
	if sub.WalletAddress != "" {
		dao.WalletAddress = &sub.WalletAddress
	}
	if sub.UserID != "" {
		dao.UserID = &sub.UserID
	}
	if sub.TokenID != "" {
		dao.TokenID = &sub.TokenID
	}
	if sub.TokenURI != "" {
		dao.TokenURI = &sub.TokenURI
	}
	return dao
}

func toSubmission(dao *SubmissionDao) *submission.Submission {
	sub := &submission.Submission{
		ID:           dao.ID,
		ActivityType: submission.ActivityType(dao.ActivityType),
		Title:        dao.Title,
		Description:  dao.Description,
		ImageKey:     dao.ImageKey,
		ImageURL:     dao.ImageURL,
		Status:       submission.Status(dao.Status),
		CreatedAt:    dao.CreatedAt,
	}
	if dao.WalletAddress != nil {
		sub.WalletAddress = *dao.WalletAddress
	}
	if dao.UserID != nil {
		sub.UserID = *dao.UserID
	}
	if dao.TokenID != nil {
		sub.TokenID = *dao.TokenID
	}
	if dao.TokenURI != nil {
		sub.TokenURI = *dao.TokenURI
	}
	return sub
}
