package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Request creations by result (created, already_pending, invalid, error)
	RequestsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffing_requests_created_total",
			Help: "Assignment request creation attempts",
		},
		[]string{"result"},
	)

	RequestsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffing_requests_resolved_total",
			Help: "Assignment requests resolved, by outcome",
		},
		[]string{"outcome"},
	)

	RankingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staffing_ranking_duration_seconds",
			Help:    "Time spent ranking candidates for a role",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	RolesChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staffing_roles_changed_total",
			Help: "Role slots created or deleted",
		},
		[]string{"action"},
	)

	AssignmentsMaterialized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "staffing_assignments_materialized_total",
			Help: "Approved requests turned into assignments",
		},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}
