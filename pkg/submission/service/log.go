package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/submission"
)

type logService struct {
	next   Service
	logger *zap.Logger
}

// NewLog wraps a Service with request/response logging.
func NewLog(next Service, logger *zap.Logger) Service {
	return &logService{next: next, logger: logger}
}

func (l *logService) logCall(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", "submission"),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		fields = append(fields, zap.Error(err))
		l.logger.Error("service call failed", fields...)
		return
	}
	l.logger.Debug("service call", fields...)
}

func (l *logService) SubmitActivity(ctx context.Context, req *submission.SubmitRequest, userID string) (*submission.Submission, error) {
	start := time.Now()
	sub, err := l.next.SubmitActivity(ctx, req, userID)
	l.logCall("SubmitActivity", start, err, zap.String("activity_type", req.ActivityType))
	return sub, err
}

func (l *logService) GetUserSubmissions(ctx context.Context, walletAddress, userID string) ([]*submission.Submission, error) {
	start := time.Now()
	subs, err := l.next.GetUserSubmissions(ctx, walletAddress, userID)
	l.logCall("GetUserSubmissions", start, err, zap.String("user_id", userID))
	return subs, err
}

func (l *logService) GetAllSubmissions(ctx context.Context) ([]*submission.Submission, error) {
	start := time.Now()
	subs, err := l.next.GetAllSubmissions(ctx)
	l.logCall("GetAllSubmissions", start, err)
	return subs, err
}

func (l *logService) GetSubmission(ctx context.Context, id string) (*submission.Submission, error) {
	start := time.Now()
	sub, err := l.next.GetSubmission(ctx, id)
	l.logCall("GetSubmission", start, err, zap.String("submission_id", id))
	return sub, err
}

func (l *logService) Review(ctx context.Context, id string, req *submission.ReviewRequest) (*submission.Submission, error) {
	start := time.Now()
	sub, err := l.next.Review(ctx, id, req)
	l.logCall("Review", start, err,
		zap.String("submission_id", id),
		zap.String("status", req.Status),
	)
	return sub, err
}
