package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Browse session outcomes.
const (
	OutcomeCompleted  = "completed"
	OutcomeFailed     = "failed"
	OutcomeSuperseded = "superseded"
)

// Delivery dispositions.
const (
	DeliveryForwarded = "forwarded"
	DeliveryDropped   = "dropped"
)

// Browse metrics
var (
	BrowseSessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbx_browse_sessions_started_total",
			Help: "Total number of browse sessions started",
		},
		[]string{"provider"},
	)

	BrowseSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbx_browse_sessions_total",
			Help: "Total number of browse sessions that ended, by outcome",
		},
		[]string{"provider", "outcome"},
	)

	BrowseSessionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mbx_browse_session_duration_seconds",
			Help:    "Time from session start to its terminal result",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	BrowseDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbx_browse_deliveries_total",
			Help: "Total number of browse results received, by disposition",
		},
		[]string{"disposition"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mbx_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mbx_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
