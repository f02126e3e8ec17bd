// Package metrics exposes Prometheus instrumentation for the CarbonQuest API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SubmissionsTotal counts created submissions by activity type
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbonquest_submissions_total",
			Help: "Total number of activity submissions created",
		},
		[]string{"activity_type"},
	)

	// ReviewsTotal counts admin review decisions by outcome
	ReviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbonquest_reviews_total",
			Help: "Total number of admin review decisions",
		},
		[]string{"status"},
	)

	// MintsTotal counts mint attempts by result
	MintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbonquest_mints_total",
			Help: "Total number of NFT mint attempts",
		},
		[]string{"result"},
	)

	// MintDuration tracks end-to-end mint latency including receipt wait
	MintDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carbonquest_mint_duration_seconds",
			Help:    "NFT mint duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	// LoginsTotal counts login attempts by result
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carbonquest_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	// LeaderboardRefreshes counts leaderboard snapshot recomputations
	LeaderboardRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carbonquest_leaderboard_refreshes_total",
			Help: "Total number of leaderboard snapshot refreshes",
		},
	)
)
