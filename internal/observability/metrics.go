// Package observability holds the Prometheus collectors and the gin
// middleware that feed them.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hostctl"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	execCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "exec",
			Name:      "commands_total",
			Help:      "External command invocations by outcome.",
		},
		[]string{"command", "outcome"},
	)
	execDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "exec",
			Name:      "duration_seconds",
			Help:      "External command wall-clock duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		},
		[]string{"command"},
	)
	metricAvailable = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "telemetry",
			Name:      "metric_available",
			Help:      "Whether the last snapshot produced a measured value for the metric.",
		},
		[]string{"metric"},
	)
	controlActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "control",
			Name:      "actions_total",
			Help:      "Control actions by outcome.",
		},
		[]string{"action", "outcome"},
	)
)

// Exec outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeTimeout     = "timeout"
	OutcomeSpawnFailed = "spawn_failed"
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, execCommands, execDuration, metricAvailable, controlActions)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// RecordExec counts one external invocation. command should be the base
// name of the executable, never its arguments.
func RecordExec(command, outcome string, duration time.Duration) {
	RegisterMetrics()
	execCommands.WithLabelValues(command, outcome).Inc()
	execDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func RecordMetricAvailability(metric string, available bool) {
	RegisterMetrics()
	value := 0.0
	if available {
		value = 1
	}
	metricAvailable.WithLabelValues(metric).Set(value)
}

func RecordControlAction(action string, ok bool) {
	RegisterMetrics()
	outcome := OutcomeOK
	if !ok {
		outcome = OutcomeFailed
	}
	controlActions.WithLabelValues(action, outcome).Inc()
}
