package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCreated   = "created"
	outcomeUnchanged = "unchanged"
	outcomeRejected  = "rejected"
	outcomeFailed    = "failed"
)

var (
	// scoresWrittenTotal counts score submissions by outcome.
	scoresWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scores_written_total",
			Help: "Total number of score submissions by outcome.",
		},
		[]string{"outcome"},
	)

	gamesCompletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "games_completed_total",
			Help: "Total number of games that became fully scored.",
		},
	)
)
