package diagnostics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exports the same counters an Accumulator tracks in-process to
// Prometheus, keyed by clientId, in the teacher pack's promauto idiom.
// The collectors are fields of each Metrics value, registered against
// the caller's Registerer in NewMetrics rather than at package init; a
// second Metrics on the same Registerer fails registration (promauto
// panics), so each Processor instance needs its own Registerer.
type Metrics struct {
	clientID string

	framesProcessed *prometheus.CounterVec
	framesDropped   *prometheus.CounterVec
	tierChanges     *prometheus.CounterVec
	workerFallbacks *prometheus.CounterVec
	contextLost     *prometheus.CounterVec
	frameDuration   *prometheus.HistogramVec
	activeTier      *prometheus.GaugeVec
}

// NewMetrics registers a fresh set of collectors against reg, labeled
// with clientID. Pass prometheus.DefaultRegisterer for the global
// registry, or a dedicated *prometheus.Registry in tests to avoid
// collisions.
func NewMetrics(reg prometheus.Registerer, clientID string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		clientID: clientID,
		framesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segmo",
			Name:      "frames_processed_total",
			Help:      "Total number of frames processed.",
		}, []string{"client_id"}),
		framesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segmo",
			Name:      "frames_dropped_total",
			Help:      "Total number of frames dropped on upload failure.",
		}, []string{"client_id"}),
		tierChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segmo",
			Name:      "tier_changes_total",
			Help:      "Total number of adaptive quality tier transitions.",
		}, []string{"client_id"}),
		workerFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segmo",
			Name:      "worker_fallbacks_total",
			Help:      "Total number of worker-adapter init failures (timeout or producer error) falling back in-thread.",
		}, []string{"client_id"}),
		contextLost: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "segmo",
			Name:      "context_lost_total",
			Help:      "Total number of GPU context loss events.",
		}, []string{"client_id"}),
		frameDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "segmo",
			Name:      "frame_duration_seconds",
			Help:      "Per-frame processing duration.",
			Buckets:   prometheus.ExponentialBuckets(0.002, 1.6, 12),
		}, []string{"client_id"}),
		activeTier: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "segmo",
			Name:      "active_tier",
			Help:      "Current adaptive quality tier index (0=ultra .. 4=minimal).",
		}, []string{"client_id"}),
	}
}

func (m *Metrics) ObserveInit(backend, tier string) {
	m.activeTier.WithLabelValues(m.clientID).Set(tierIndexOf(tier))
}

func (m *Metrics) ObserveFrame(frameMs float64, dropped bool) {
	m.frameDuration.WithLabelValues(m.clientID).Observe(frameMs / 1000)
	m.framesProcessed.WithLabelValues(m.clientID).Inc()
	if dropped {
		m.framesDropped.WithLabelValues(m.clientID).Inc()
	}
}

func (m *Metrics) ObserveTierChange() {
	m.tierChanges.WithLabelValues(m.clientID).Inc()
}

func (m *Metrics) ObserveWorkerFallback() {
	m.workerFallbacks.WithLabelValues(m.clientID).Inc()
}

func (m *Metrics) ObserveContextLost() {
	m.contextLost.WithLabelValues(m.clientID).Inc()
}

func tierIndexOf(name string) float64 {
	switch name {
	case "ultra":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	case "minimal":
		return 4
	default:
		return 2
	}
}
