package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronomate_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronomate_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronomate_messages_total",
			Help: "Chat messages processed, by channel and recognized intent.",
		},
		[]string{"channel", "intent"},
	)

	RepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronomate_replies_total",
			Help: "Assistant replies by how they were produced (generated, templated).",
		},
		[]string{"source"},
	)

	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chronomate_generation_duration_seconds",
			Help:    "Generative backend call latency.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"model", "outcome"},
	)

	ActionsExecutedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronomate_actions_executed_total",
			Help: "Assistant actions applied to the planner.",
		},
		[]string{"type", "outcome"},
	)

	BudgetDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chronomate_generation_budget_denied_total",
			Help: "Messages answered from templates because the user's generative budget was spent.",
		},
	)

	ActivityEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronomate_activity_events_total",
			Help: "Domain events published to and persisted from the event stream, by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		MessagesTotal,
		RepliesTotal,
		GenerationDuration,
		ActionsExecutedTotal,
		BudgetDeniedTotal,
		ActivityEventsTotal,
	)
}

// Outcome is the label value for a success flag.
func Outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
