package segmo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/diagnostics"
)

// BackgroundModeKind, BackgroundMode, BackgroundImage, ModelClassKind,
// and ModelClasses are defined in package core so the pipeline's
// compositor can dispatch on them without importing this root package.
type (
	BackgroundModeKind = core.BackgroundModeKind
	BackgroundMode     = core.BackgroundMode
	BackgroundImage    = core.BackgroundImage
	ModelClassKind     = core.ModelClassKind
)

const (
	BackgroundNone   = core.BackgroundNone
	BackgroundBlur   = core.BackgroundBlur
	BackgroundStill  = core.BackgroundStill
	BackgroundColor  = core.BackgroundColor
)

const (
	PersonChannel = core.PersonChannel
	Multiclass    = core.Multiclass
)

// ModelClasses resolves which extraction rule applies for a given output
// channel count, per §6.
func ModelClasses(channelCount int) ModelClassKind { return core.ModelClasses(channelCount) }

// QualityLabel names a seed quality preset (§6 quality option). The
// adaptive controller may move away from the seed tier at runtime.
type QualityLabel int

const (
	QualityLow QualityLabel = iota
	QualityMedium
	QualityHigh
	QualityUltra
)

// DiagnosticsLevel controls whether diagnostics are emitted at all (§6).
type DiagnosticsLevel int

const (
	DiagnosticsOff DiagnosticsLevel = iota
	DiagnosticsSummary
)

// AutoFrameOptions controls the auto-framer (§4.E, §6 autoFrame.*).
type AutoFrameOptions struct {
	Enabled bool
	// Continuous, when false, freezes updates after 30 frames.
	Continuous bool
	Headroom   float32 // unused by the core math directly; reserved for host framing presets
	Padding    float32
	Smoothing  float32 // EMA factor s, default 0.75
	MaxZoom    float32
	MinZoom    float32
	DeadZone   float32
}

// DefaultAutoFrameOptions returns the spec's documented defaults.
func DefaultAutoFrameOptions() AutoFrameOptions {
	return AutoFrameOptions{
		Enabled:   false,
		Smoothing: 0.75,
		MaxZoom:   1.5,
		MinZoom:   1.0,
		Padding:   0.08,
		DeadZone:  0.02,
	}
}

// AdaptiveConfig overrides the §4.F constants.
type AdaptiveConfig struct {
	TargetFrameMs    float64
	CriticalMs       float64
	WindowSize       int
	DowngradeThresh  int
	UpgradeThresh    int
	CooldownMs       int64
	CriticalInARow   int
}

// DefaultAdaptiveConfig returns the spec's documented defaults.
func DefaultAdaptiveConfig() AdaptiveConfig {
	return AdaptiveConfig{
		TargetFrameMs:   28,
		CriticalMs:      40,
		WindowSize:      30,
		DowngradeThresh: 2,
		UpgradeThresh:   5,
		CooldownMs:      1000,
		CriticalInARow:  3,
	}
}

// Options is the construction-time config for a Processor, in the
// teacher's plain-struct-config idiom (GPUSceneRendererConfig). Every
// field corresponds to a row of §6's config table.
type Options struct {
	Background BackgroundMode

	// Producer is the external segmentation model (§6 "Mask producer
	// interface"); segmo never runs inference itself. Required unless
	// Background.Kind is BackgroundNone.
	Producer MaskProducer

	// ProducerFactory constructs a fresh MaskProducer instance for the
	// worker goroutine when UseWorker is set (§4.D): the worker runs on
	// its own thread and needs its own model handle rather than sharing
	// Producer across goroutines. If nil, Processor.Init falls back to
	// wrapping Producer directly, which is only safe when the producer
	// implementation is itself goroutine-safe.
	ProducerFactory func() (MaskProducer, error)

	// ModelFps is the base model rate; 0 means "use tier default".
	ModelFps int
	// OutputFps is advisory only.
	OutputFps int

	Quality  QualityLabel
	Adaptive bool
	AdaptiveConfig AdaptiveConfig

	UseWorker bool
	AutoFrame AutoFrameOptions

	DiagnosticsLevel        DiagnosticsLevel
	DiagnosticsIntervalMs   int
	DiagnosticsIncludeImage bool
	ClientID                string
	OnDiagnostic            func(diagnostics.Event)

	// Probe overrides the capability probe; nil uses DefaultProbe.
	Probe ProbeFunc

	// MetricsRegisterer, if set, exports the same per-frame counters the
	// diagnostics Accumulator tracks in-process to Prometheus (§11
	// domain stack). Nil skips Prometheus export entirely.
	MetricsRegisterer prometheus.Registerer

	// WorkerInitTimeout bounds worker startup (§5), default 30s.
	WorkerInitTimeout time.Duration
}

// withDefaults fills zero-valued fields with spec-documented defaults.
func (o Options) withDefaults() Options {
	if o.AdaptiveConfig == (AdaptiveConfig{}) {
		o.AdaptiveConfig = DefaultAdaptiveConfig()
	}
	if o.AutoFrame == (AutoFrameOptions{}) {
		o.AutoFrame = DefaultAutoFrameOptions()
	}
	if o.Probe == nil {
		o.Probe = DefaultProbe
	}
	if o.WorkerInitTimeout == 0 {
		o.WorkerInitTimeout = 30 * time.Second
	}
	if o.DiagnosticsIntervalMs == 0 {
		o.DiagnosticsIntervalMs = 5000
	}
	return o
}
