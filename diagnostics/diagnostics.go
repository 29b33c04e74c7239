// Package diagnostics implements the optional diagnostics surface (§4.H,
// §6): an init event describing the resolved backend and capabilities,
// and a periodic summary event accumulating per-session counters. Both
// are delivered to the host's OnDiagnostic callback and, when wired,
// published to Prometheus and NATS.
package diagnostics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/segmo/core"
)

// Kind tags which variant of Event this is (§9 sum-of-variants idiom).
type Kind int

const (
	// KindInit is emitted exactly once, synchronously, from Processor.Init.
	KindInit Kind = iota
	// KindSummary is emitted periodically (DiagnosticsIntervalMs apart)
	// for the lifetime of the session.
	KindSummary
)

// Event is delivered to Options.OnDiagnostic. Only the fields relevant to
// Kind are meaningful, mirroring BackgroundMode's tagged-union shape.
type Event struct {
	Kind Kind `json:"kind"`

	// Init fields.
	Backend      string             `json:"backend,omitempty"`
	Capabilities core.Capabilities  `json:"capabilities,omitempty"`
	Width        int                `json:"width,omitempty"`
	Height       int                `json:"height,omitempty"`
	Tier         string             `json:"tier,omitempty"`
	ClientID     string             `json:"clientId,omitempty"`

	// Summary fields.
	FramesProcessed  int64   `json:"framesProcessed,omitempty"`
	FramesDropped    int64   `json:"framesDropped,omitempty"`
	TierChanges      int64   `json:"tierChanges,omitempty"`
	WorkerFallbacks  int64   `json:"workerFallbacks,omitempty"`
	MeanFrameMs      float64 `json:"meanFrameMs,omitempty"`
	P95FrameMs       float64 `json:"p95FrameMs,omitempty"`
	ContextLostCount int64   `json:"contextLostCount,omitempty"`
	IncludeImage     bool    `json:"includeImage,omitempty"`
}

// Sink is a pluggable destination for events (the host callback, the
// NATS publisher, or both). Processor fans an event out to every
// registered sink.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// NewClientID generates a fresh client identifier when the host leaves
// Options.ClientID empty, per §6.
func NewClientID() string {
	return uuid.NewString()
}

// Accumulator collects per-session counters and emits periodic summary
// events. It mirrors the teacher's MemoryStats "accumulate counters,
// snapshot on demand" shape, generalized from byte/texture counts to
// frame-timing counts.
type Accumulator struct {
	mu sync.Mutex

	clientID     string
	includeImage bool
	intervalMs   int
	sinks        []Sink

	framesProcessed  int64
	framesDropped    int64
	tierChanges      int64
	workerFallbacks  int64
	contextLostCount int64

	frameTimes []float64 // ring of recent frame times, for mean/P95 in the summary

	lastEmitMs int64
	metrics    *Metrics
}

// NewAccumulator constructs an Accumulator. metrics may be nil to skip
// Prometheus export (e.g. in unit tests or a host without a registry).
func NewAccumulator(clientID string, intervalMs int, includeImage bool, metrics *Metrics) *Accumulator {
	if clientID == "" {
		clientID = NewClientID()
	}
	if intervalMs <= 0 {
		intervalMs = 5000
	}
	return &Accumulator{
		clientID:     clientID,
		includeImage: includeImage,
		intervalMs:   intervalMs,
		frameTimes:   make([]float64, 0, 120),
		metrics:      metrics,
	}
}

// AddSink registers an additional delivery target.
func (a *Accumulator) AddSink(s Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sinks = append(a.sinks, s)
}

// EmitInit builds and delivers the one-time init event.
func (a *Accumulator) EmitInit(backend string, caps core.Capabilities, width, height int, tier string) {
	a.mu.Lock()
	sinks := append([]Sink(nil), a.sinks...)
	a.mu.Unlock()

	ev := Event{
		Kind:         KindInit,
		Backend:      backend,
		Capabilities: caps,
		Width:        width,
		Height:       height,
		Tier:         tier,
		ClientID:     a.clientID,
	}
	for _, s := range sinks {
		s.Emit(ev)
	}
	if a.metrics != nil {
		a.metrics.ObserveInit(backend, tier)
	}
}

// ReportFrame records one processed frame's time and error-class flags.
func (a *Accumulator) ReportFrame(frameMs float64, dropped bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.framesProcessed++
	if dropped {
		a.framesDropped++
	}
	if len(a.frameTimes) == cap(a.frameTimes) {
		copy(a.frameTimes, a.frameTimes[1:])
		a.frameTimes = a.frameTimes[:len(a.frameTimes)-1]
	}
	a.frameTimes = append(a.frameTimes, frameMs)

	if a.metrics != nil {
		a.metrics.ObserveFrame(frameMs, dropped)
	}
}

// ReportTierChange increments the tier-change counter.
func (a *Accumulator) ReportTierChange() {
	a.mu.Lock()
	a.tierChanges++
	a.mu.Unlock()
	if a.metrics != nil {
		a.metrics.ObserveTierChange()
	}
}

// ReportWorkerFallback increments the worker-fallback counter (§5).
func (a *Accumulator) ReportWorkerFallback() {
	a.mu.Lock()
	a.workerFallbacks++
	a.mu.Unlock()
	if a.metrics != nil {
		a.metrics.ObserveWorkerFallback()
	}
}

// ReportContextLost increments the context-lost counter (§7).
func (a *Accumulator) ReportContextLost() {
	a.mu.Lock()
	a.contextLostCount++
	a.mu.Unlock()
	if a.metrics != nil {
		a.metrics.ObserveContextLost()
	}
}

// MaybeEmitSummary emits a summary event if at least intervalMs has
// elapsed since the last emission (or none has occurred yet), and
// resets nothing — counters are cumulative across a session.
func (a *Accumulator) MaybeEmitSummary(nowMs int64) {
	a.mu.Lock()
	if nowMs-a.lastEmitMs < int64(a.intervalMs) {
		a.mu.Unlock()
		return
	}
	a.lastEmitMs = nowMs
	mean, p95 := windowStats(a.frameTimes)
	ev := Event{
		Kind:             KindSummary,
		ClientID:         a.clientID,
		FramesProcessed:  a.framesProcessed,
		FramesDropped:    a.framesDropped,
		TierChanges:      a.tierChanges,
		WorkerFallbacks:  a.workerFallbacks,
		MeanFrameMs:      mean,
		P95FrameMs:       p95,
		ContextLostCount: a.contextLostCount,
		IncludeImage:     a.includeImage,
	}
	sinks := append([]Sink(nil), a.sinks...)
	a.mu.Unlock()

	for _, s := range sinks {
		s.Emit(ev)
	}
}

func windowStats(samples []float64) (mean, p95 float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	sum := 0.0
	sorted := append([]float64(nil), samples...)
	for _, s := range sorted {
		sum += s
	}
	mean = sum / float64(len(sorted))
	// simple insertion sort is fine: the ring is capped at 120 samples.
	for i := 1; i < len(sorted); i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > v {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
	idx := int(0.95 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	return mean, sorted[idx]
}

// NowMs is a small seam so callers can supply a monotonic millisecond
// clock without this package importing a host's clock abstraction.
func NowMs() int64 { return time.Now().UnixMilli() }
