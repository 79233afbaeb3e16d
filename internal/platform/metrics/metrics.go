package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "challenge_submissions_total",
		Help: "Total number of submissions processed, by result",
	}, []string{"result"})

	FirstSolversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "challenge_first_solvers_total",
		Help: "Total number of first-solver awards",
	})

	HintsUsedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "challenge_hints_used_total",
		Help: "Total number of hints charged",
	})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "challenge_ws_connections",
		Help: "Number of active websocket stream connections",
	})

	LeaderboardRecompute = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "challenge_leaderboard_recompute_seconds",
		Help:    "Time spent recomputing the leaderboard snapshot",
		Buckets: prometheus.DefBuckets,
	})
)

const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
)
