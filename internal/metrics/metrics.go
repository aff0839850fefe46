package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// AssignmentRuns counts assignment runs by strategy and outcome (valid, invalid, shortfall).
	AssignmentRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "assignment_runs_total", Help: "Assignment runs by strategy and outcome."},
		[]string{"strategy", "outcome"},
	)
	// AssignmentDuration tracks how long the assignment engines run.
	AssignmentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "assignment_duration_seconds", Help: "Assignment engine running time in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 4, 10)},
		[]string{"strategy"},
	)
	// LastScore holds the score of the most recent valid run per strategy.
	LastScore = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "assignment_last_score", Help: "Score of the most recent valid assignment."},
		[]string{"strategy"},
	)
	// MissingTeams counts teams that could not be formed, by team size.
	MissingTeams = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "assignment_missing_teams_total", Help: "Requested teams left unformed because the pizza pool ran out."},
		[]string{"team_size"},
	)
)

var regOnce sync.Once

// RegisterDefault registers the service collectors on Registry. It is safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(AssignmentRuns)
		Registry.MustRegister(AssignmentDuration)
		Registry.MustRegister(LastScore)
		Registry.MustRegister(MissingTeams)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
