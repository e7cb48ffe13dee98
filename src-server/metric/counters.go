package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	VotesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stellarbot_votes_total",
		Help: "Votes accepted from bot listing sites",
	}, []string{"site"})

	VotesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stellarbot_votes_rejected_total",
		Help: "Vote webhook requests rejected before processing",
	}, []string{"site", "reason"})

	PremiumRolesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stellarbot_premium_roles_removed_total",
		Help: "Premium roles removed by the sweep",
	})

	PremiumCodesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stellarbot_premium_codes_deleted_total",
		Help: "Premium codes deleted, by what triggered it",
	}, []string{"reason"})
)
