package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const namespace = "bloodlink"

// Workflow event labels
const (
	EventRequestCreated   = "request_created"
	EventRequestValidated = "request_validated"
	EventAlertCreated     = "alert_created"
	EventAlertClosed      = "alert_closed"
	EventPledgeAdded      = "pledge_added"
	EventPledgeRemoved    = "pledge_removed"
)

var (
	workflowEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_events_total",
			Help:      "Workflow state transitions by event",
		},
		[]string{"event"},
	)

	counterDriftFixed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_drift_fixed_total",
			Help:      "Alerts whose response_count was recomputed from pledge rows",
		},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordEvent bumps the workflow counter for event.
func RecordEvent(event string) {
	workflowEvents.WithLabelValues(event).Inc()
}

func RecordDriftFixed(n int64) {
	if n > 0 {
		counterDriftFixed.Add(float64(n))
	}
}

// EventCount reads back a workflow counter. Used by tests.
func EventCount(event string) float64 {
	return testutil.ToFloat64(workflowEvents.WithLabelValues(event))
}

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
