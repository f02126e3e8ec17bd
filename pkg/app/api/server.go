// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/carbonquest/carbonquest/pkg/app/http"
	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/config"
	"github.com/carbonquest/carbonquest/pkg/ethereum"
	"github.com/carbonquest/carbonquest/pkg/images"
	"github.com/carbonquest/carbonquest/pkg/leaderboard"
	"github.com/carbonquest/carbonquest/pkg/pgutil"
	subservice "github.com/carbonquest/carbonquest/pkg/submission/service"
	"github.com/carbonquest/carbonquest/pkg/submissionstore"
	userservice "github.com/carbonquest/carbonquest/pkg/user/service"
	"github.com/carbonquest/carbonquest/pkg/userstore"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting CarbonQuest API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("demo", cfg.Demo),
	)

	userStore, subStore, closeStores, err := s.openStores(logger)
	if err != nil {
		return err
	}
	defer closeStores()

	identity := userservice.NewService(
		userStore,
		[]byte(cfg.Auth.JWTSecret),
		cfg.Auth.SessionTTL,
		logger,
	)
	if err := identity.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	minter, closeChain, err := s.openChainClient(ctx, logger)
	if err != nil {
		return err
	}
	defer closeChain()

	imageStore, err := s.openImageStore(ctx)
	if err != nil {
		return err
	}

	ledger := subservice.NewService(
		subStore,
		imageStore,
		minter,
		cfg.Ethereum.TokenURIBase,
		logger,
	)

	board := leaderboard.New(subStore, cfg.Leaderboard.Interval, cfg.Leaderboard.RefreshTimeout, logger)
	board.Start(ctx)
	// Called again explicitly after ServeAndWait for deterministic shutdown
	// order; this defer is a safety net.
	defer board.Stop()

	mw := auth.NewMiddleware(identity, []byte(cfg.Auth.JWTSecret))
	router := s.setupRouter(
		userservice.NewLog(identity, logger),
		subservice.NewLog(ledger, logger),
		board,
		mw,
		logger,
	)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	board.Stop()

	return err
}

func (s *Server) openStores(logger *zap.Logger) (userstore.Store, submissionstore.Store, func(), error) {
	if s.cfg.Demo {
		logger.Info("Using in-memory stores (demo mode)")
		return userstore.NewMemoryStore(), submissionstore.NewMemoryStore(), func() {}, nil
	}

	db, err := pgutil.ConnectDB(&s.cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect db: %w", err)
	}
	logger.Info("Connected to database",
		zap.String("host", s.cfg.Database.Host),
		zap.String("database", s.cfg.Database.Database),
	)
	return userstore.NewStore(db), submissionstore.NewStore(db), func() { _ = db.Close() }, nil
}

func (s *Server) openChainClient(ctx context.Context, logger *zap.Logger) (subservice.Minter, func(), error) {
	if s.cfg.Demo {
		return nil, func() {}, nil
	}

	client, err := ethereum.NewClient(ctx, &s.cfg.Ethereum, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("create ethereum client: %w", err)
	}
	logger.Info("Connected to Ethereum",
		zap.String("rpc_url", s.cfg.Ethereum.RPCURL),
		zap.Int64("chain_id", s.cfg.Ethereum.ChainID),
	)
	return client, client.Close, nil
}

func (s *Server) openImageStore(ctx context.Context) (images.Store, error) {
	if s.cfg.Demo || s.cfg.Images.Backend == "memory" {
		return images.NewMemoryStore(s.cfg.Images.URLBase), nil
	}
	return images.NewS3Store(ctx, &s.cfg.Images)
}

func (s *Server) setupRouter(
	identity userservice.Service,
	ledger subservice.Service,
	board *leaderboard.Leaderboard,
	mw *auth.Middleware,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", promhttp.Handler())

	userservice.RegisterRoutes(r, identity, mw, logger)
	subservice.RegisterRoutes(r, ledger, mw, logger)
	leaderboard.RegisterRoutes(r, board, logger)

	return r
}
