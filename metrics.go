package essayist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcome labels for Metrics.RunsTotal.
const (
	outcomeCompleted = "completed"
	outcomeHalted    = "halted"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
	outcomeNoop      = "noop"
)

// Metrics holds the Prometheus instruments for the workflow. Create one
// with NewMetrics and hand it to the driver via WithMetrics; stage
// durations additionally need MetricsStageMiddleware installed.
type Metrics struct {
	// RunsTotal counts invocations by mode and outcome (completed,
	// halted, failed, rejected, noop).
	RunsTotal *prometheus.CounterVec
	// CheckpointHalts counts halts per checkpoint.
	CheckpointHalts *prometheus.CounterVec
	// StageDuration observes stage body execution time by phase and
	// status (ok or error).
	StageDuration *prometheus.HistogramVec
	// CapabilityFallbacks counts soft failures where a stage continued
	// with degraded output, by phase.
	CapabilityFallbacks *prometheus.CounterVec
}

// NewMetrics registers the workflow instruments with reg and returns them.
// Pass prometheus.DefaultRegisterer for the usual global registry, or a
// fresh prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "essayist",
			Name:      "runs_total",
			Help:      "Workflow invocations by session mode and outcome.",
		}, []string{"mode", "outcome"}),
		CheckpointHalts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "essayist",
			Name:      "checkpoint_halts_total",
			Help:      "Times a session parked at a checkpoint waiting for human input.",
		}, []string{"checkpoint"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "essayist",
			Name:      "stage_duration_seconds",
			Help:      "Stage body execution time in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"phase", "status"}),
		CapabilityFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "essayist",
			Name:      "capability_fallbacks_total",
			Help:      "Stages that continued with degraded output after a capability failure.",
		}, []string{"phase"}),
	}
}
