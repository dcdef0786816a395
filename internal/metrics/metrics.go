package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysisTotal counts script invocations by kind (predict|detect) and result.
	AnalysisTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectify",
		Subsystem: "analysis",
		Name:      "invocations_total",
		Help:      "Total number of external analysis script invocations, labeled by kind and result.",
	}, []string{"kind", "result"})

	// AnalysisDurationSeconds is wall-clock time per invocation, slot wait excluded.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "inspectify",
		Subsystem: "analysis",
		Name:      "duration_seconds",
		Help:      "Wall-clock time spent running an analysis script.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"kind"})

	// AnalysisInFlight is the number of scripts currently running.
	AnalysisInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "inspectify",
		Subsystem: "analysis",
		Name:      "in_flight",
		Help:      "Current number of analysis scripts running.",
	})

	// RealtimeConnections is the number of open websocket connections.
	RealtimeConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "inspectify",
		Subsystem: "realtime",
		Name:      "connections",
		Help:      "Current number of open realtime connections.",
	})

	// NotificationsTotal counts pushes by event and result (sent|dropped|absent).
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "inspectify",
		Subsystem: "realtime",
		Name:      "notifications_total",
		Help:      "Total number of realtime notifications attempted, labeled by event and result.",
	}, []string{"event", "result"})
)

// Register registers Inspectify metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysisTotal,
			AnalysisDurationSeconds,
			AnalysisInFlight,
			RealtimeConnections,
			NotificationsTotal,
		)
	})
}
