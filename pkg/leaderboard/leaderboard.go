// Package leaderboard maintains a periodically refreshed ranking of
// wallets by carbon points earned from approved submissions.
package leaderboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/carbonquest/carbonquest/pkg/metrics"
	"github.com/carbonquest/carbonquest/pkg/submission"
)

// activityWeights maps activity types to the carbon points a single
// approved submission earns. Unrecognized activity types count as one.
var activityWeights = map[submission.ActivityType]decimal.Decimal{
	submission.ActivityTreePlanting:         decimal.NewFromInt(10),
	submission.ActivityCleanEnergy:          decimal.NewFromInt(8),
	submission.ActivityWasteReduction:       decimal.NewFromInt(5),
	submission.ActivitySustainableTransport: decimal.NewFromInt(3),
}

var defaultWeight = decimal.NewFromInt(1)

// Entry is one ranked wallet on the leaderboard.
type Entry struct {
	Rank          int    `json:"rank"`
	WalletAddress string `json:"wallet_address"`
	CarbonPoints  string `json:"carbon_points"`
	Approved      int    `json:"approved_submissions"`
}

// Snapshot is the leaderboard state at a point in time.
type Snapshot struct {
	Entries     []Entry   `json:"entries"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// SubmissionSource lists approved submissions for aggregation.
type SubmissionSource interface {
	ListByStatus(ctx context.Context, status submission.Status) ([]*submission.Submission, error)
}

// Leaderboard caches a ranking snapshot and refreshes it on an interval.
type Leaderboard struct {
	source         SubmissionSource
	interval       time.Duration
	refreshTimeout time.Duration
	logger         *zap.Logger

	mu       sync.RWMutex
	snapshot Snapshot

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a leaderboard over the given submission source. Each
// background refresh is bounded by refreshTimeout.
func New(source SubmissionSource, interval, refreshTimeout time.Duration, logger *zap.Logger) *Leaderboard {
	if interval <= 0 {
		interval = time.Minute
	}
	if refreshTimeout <= 0 {
		refreshTimeout = 30 * time.Second
	}
	return &Leaderboard{
		source:         source,
		interval:       interval,
		refreshTimeout: refreshTimeout,
		logger:         logger,
		stopCh:         make(chan struct{}),
	}
}

// Refresh recomputes the ranking from approved submissions. Submissions
// without a wallet address do not score on the public board.
func (l *Leaderboard) Refresh(ctx context.Context) error {
	start := time.Now()

	approved, err := l.source.ListByStatus(ctx, submission.StatusApproved)
	if err != nil {
		return err
	}

	points := make(map[string]decimal.Decimal)
	counts := make(map[string]int)
	for _, sub := range approved {
		if sub.WalletAddress == "" {
			continue
		}
		weight, ok := activityWeights[sub.ActivityType]
		if !ok {
			weight = defaultWeight
		}
		points[sub.WalletAddress] = points[sub.WalletAddress].Add(weight)
		counts[sub.WalletAddress]++
	}

	entries := make([]Entry, 0, len(points))
	for wallet, total := range points {
		entries = append(entries, Entry{
			WalletAddress: wallet,
			CarbonPoints:  total.String(),
			Approved:      counts[wallet],
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		pi, _ := decimal.NewFromString(entries[i].CarbonPoints)
		pj, _ := decimal.NewFromString(entries[j].CarbonPoints)
		if !pi.Equal(pj) {
			return pi.GreaterThan(pj)
		}
		return entries[i].WalletAddress < entries[j].WalletAddress
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	l.mu.Lock()
	l.snapshot = Snapshot{Entries: entries, RefreshedAt: time.Now()}
	l.mu.Unlock()

	metrics.LeaderboardRefreshes.Inc()
	l.logger.Debug("leaderboard refreshed",
		zap.Int("wallets", len(entries)),
		zap.Int("approved_submissions", len(approved)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Snapshot returns the most recent ranking. The entries slice is shared
// but never mutated after publication.
func (l *Leaderboard) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	snap := l.snapshot
	if snap.Entries == nil {
		snap.Entries = []Entry{}
	}
	return snap
}

// Start refreshes once immediately, then on the configured interval until
// Stop is called.
func (l *Leaderboard) Start(ctx context.Context) {
	if err := l.Refresh(ctx); err != nil {
		l.logger.Error("initial leaderboard refresh failed", zap.Error(err))
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		l.logger.Info("started leaderboard refresh loop", zap.Duration("interval", l.interval))

		for {
			select {
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(context.Background(), l.refreshTimeout)
				if err := l.Refresh(refreshCtx); err != nil {
					l.logger.Error("leaderboard refresh failed", zap.Error(err))
				}
				cancel()
			case <-l.stopCh:
				l.logger.Info("stopping leaderboard refresh loop")
				return
			}
		}
	}()
}

// Stop terminates the refresh loop and waits for it to exit. Safe to
// call more than once; the server stops the board explicitly and again
// through a deferred cleanup.
func (l *Leaderboard) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
	l.wg.Wait()
}
