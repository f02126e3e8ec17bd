package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/user"
)

const serviceName = "IdentityService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the identity Service.
// It logs method entry/exit, duration and errors; passwords and tokens
// never reach the log.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

func (ls *logService) logCall(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
		return
	}
	ls.logger.Info(method+" completed", fields...)
}

func (ls *logService) Register(ctx context.Context, req *user.RegisterRequest) (usr *user.User, err error) {
	start := time.Now()
	defer func() { ls.logCall("Register", start, err, zap.String("email", req.Email)) }()
	return ls.svc.Register(ctx, req)
}

func (ls *logService) Login(ctx context.Context, req *user.LoginRequest) (resp *user.LoginResponse, err error) {
	start := time.Now()
	defer func() { ls.logCall("Login", start, err, zap.String("email", req.Email)) }()
	return ls.svc.Login(ctx, req)
}

func (ls *logService) Logout(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { ls.logCall("Logout", start, err) }()
	return ls.svc.Logout(ctx)
}

func (ls *logService) CurrentUser(ctx context.Context) (usr *user.User, err error) {
	start := time.Now()
	defer func() { ls.logCall("CurrentUser", start, err) }()
	return ls.svc.CurrentUser(ctx)
}

func (ls *logService) LinkWallet(ctx context.Context, req *user.LinkWalletRequest) (usr *user.User, err error) {
	start := time.Now()
	defer func() {
		ls.logCall("LinkWallet", start, err,
			zap.String("user_id", req.UserID),
			zap.String("wallet_address", req.WalletAddress),
		)
	}()
	return ls.svc.LinkWallet(ctx, req)
}

func (ls *logService) ResolveSession(ctx context.Context, sessionToken string) (*user.User, error) {
	// Hot path on every authenticated request; not worth a log line.
	return ls.svc.ResolveSession(ctx, sessionToken)
}

func (ls *logService) EnsureAdmin(ctx context.Context, email, password string) (err error) {
	start := time.Now()
	defer func() { ls.logCall("EnsureAdmin", start, err, zap.String("email", email)) }()
	return ls.svc.EnsureAdmin(ctx, email, password)
}
