package quality

import (
	"sort"
	"sync"
)

// Applier is invoked after any tier change so callers (the Processor)
// can propagate the new tier's parameters into the model interval and
// pipeline options (§4.G).
type Applier func(tierIndex int, tier Tier)

// Controller is the adaptive quality controller of §4.F: a ring buffer
// of recent frame times evaluated every WindowSize frames, with
// saturating tier transitions and a cooldown to prevent oscillation.
//
// Controller is safe for concurrent use; the hot path (ReportFrame) is
// called once per frame from the Processor's single-threaded loop, but
// SetTier/Lock/Unlock/Reset may be called from a host's control surface
// concurrently (e.g. the cmd/segmo-demo HTTP API).
type Controller struct {
	mu sync.Mutex

	tiers   []Tier
	current int

	cfg Config

	ring      []float64
	ringFrame int // total frames reported, used to trigger window eval every N

	goodWindows    int
	badWindows     int
	criticalInARow int

	lastAdjustmentMs int64
	locked           bool

	appliers []Applier
}

// Config mirrors segmo.AdaptiveConfig's fields the controller consumes
// directly; kept separate so this package has no dependency on the root
// package (avoiding an import cycle, since the root package constructs
// a Controller).
type Config struct {
	TargetFrameMs   float64
	CriticalMs      float64
	WindowSize      int
	DowngradeThresh int
	UpgradeThresh   int
	CooldownMs      int64
	CriticalInARow  int
}

// DefaultConfig returns the spec-documented defaults (§4.F).
func DefaultConfig() Config {
	return Config{
		TargetFrameMs:   28,
		CriticalMs:      40,
		WindowSize:      30,
		DowngradeThresh: 2,
		UpgradeThresh:   5,
		CooldownMs:      1000,
		CriticalInARow:  3,
	}
}

// New creates a Controller seeded at tier 0 (ultra) and unlocked, per
// §4.G's init sequence.
func New(tiers []Tier, cfg Config) *Controller {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	if cfg.WindowSize <= 0 {
		cfg = DefaultConfig()
	}
	return &Controller{
		tiers: tiers,
		cfg:   cfg,
		ring:  make([]float64, 0, cfg.WindowSize),
	}
}

// OnTierChange registers an applier invoked after every tier transition.
func (c *Controller) OnTierChange(a Applier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appliers = append(c.appliers, a)
}

// CurrentTier returns the active tier index and value.
func (c *Controller) CurrentTier() (int, Tier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.tiers[c.current]
}

// ReportFrame records one frame's total processing time in milliseconds
// at wall-clock nowMs (caller-supplied so tests can drive the cooldown
// deterministically; a real host passes time.Now().UnixMilli()).
func (c *Controller) ReportFrame(tMs float64, nowMs int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked {
		return
	}

	if len(c.ring) == cap(c.ring) && cap(c.ring) > 0 {
		copy(c.ring, c.ring[1:])
		c.ring = c.ring[:len(c.ring)-1]
	}
	c.ring = append(c.ring, tMs)
	c.ringFrame++

	if tMs > c.cfg.CriticalMs {
		c.criticalInARow++
		if c.criticalInARow >= c.cfg.CriticalInARow {
			c.downgradeLocked(nowMs, true)
			c.criticalInARow = 0
		}
	} else {
		c.criticalInARow = 0
	}

	if c.cfg.WindowSize > 0 && c.ringFrame%c.cfg.WindowSize == 0 {
		c.evaluateWindowLocked(nowMs)
	}
}

func (c *Controller) evaluateWindowLocked(nowMs int64) {
	if len(c.ring) == 0 {
		return
	}
	mean, p95 := windowStats(c.ring)

	switch {
	case mean > c.cfg.TargetFrameMs || p95 > c.cfg.CriticalMs:
		c.badWindows++
		c.goodWindows = 0
		if c.badWindows >= c.cfg.DowngradeThresh && c.cooldownElapsed(nowMs) {
			c.downgradeLocked(nowMs, false)
			c.badWindows = 0
		}
	case mean < 0.6*c.cfg.TargetFrameMs:
		c.goodWindows++
		c.badWindows = 0
		if c.goodWindows >= c.cfg.UpgradeThresh && c.cooldownElapsed(nowMs) {
			c.upgradeLocked(nowMs)
			c.goodWindows = 0
		}
	default:
		c.goodWindows = 0
		c.badWindows = 0
	}
}

func windowStats(samples []float64) (mean, p95 float64) {
	sum := 0.0
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)
	for _, s := range samples {
		sum += s
	}
	mean = sum / float64(len(samples))
	idx := int(0.95 * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	p95 = sorted[idx]
	return mean, p95
}

func (c *Controller) cooldownElapsed(nowMs int64) bool {
	return nowMs-c.lastAdjustmentMs >= c.cfg.CooldownMs
}

// downgradeLocked moves to a heavier-budget (higher-index, cheaper)
// tier by exactly one, saturating at the floor (last index). critical
// downgrades bypass the cooldown check per §4.F's critical path.
func (c *Controller) downgradeLocked(nowMs int64, bypassCooldown bool) {
	if !bypassCooldown && !c.cooldownElapsed(nowMs) {
		return
	}
	if c.current < len(c.tiers)-1 {
		c.current++
		c.lastAdjustmentMs = nowMs
		c.notifyLocked()
	}
}

// upgradeLocked moves to a lighter (lower-index, more expensive) tier by
// exactly one, saturating at 0.
func (c *Controller) upgradeLocked(nowMs int64) {
	if c.current > 0 {
		c.current--
		c.lastAdjustmentMs = nowMs
		c.notifyLocked()
	}
}

func (c *Controller) notifyLocked() {
	tier := c.tiers[c.current]
	idx := c.current
	for _, a := range c.appliers {
		a(idx, tier)
	}
}

// CalibrateFromBenchmark chooses a seed tier from a one-off benchmark
// sample, per §4.F: thresholds at target*{0.5,0.8,1.0,1.5} map to tiers
// 0..4 (faster sample -> more expensive tier, since there's headroom).
func (c *Controller) CalibrateFromBenchmark(sampleMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.cfg.TargetFrameMs
	var idx int
	switch {
	case sampleMs <= 0.5*t:
		idx = 0
	case sampleMs <= 0.8*t:
		idx = 1
	case sampleMs <= 1.0*t:
		idx = 2
	case sampleMs <= 1.5*t:
		idx = 3
	default:
		idx = 4
	}
	if idx >= len(c.tiers) {
		idx = len(c.tiers) - 1
	}
	c.current = idx
	c.notifyLocked()
}

// SetTier explicitly sets the current tier, ignoring hysteresis.
func (c *Controller) SetTier(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.tiers) {
		return
	}
	c.current = i
	c.notifyLocked()
}

// Lock prevents any further automatic tier transitions.
func (c *Controller) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = true
}

// Unlock re-enables automatic tier transitions.
func (c *Controller) Unlock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locked = false
}

// Reset clears all windowing state and returns to tier 0, without
// touching the locked flag.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ring = c.ring[:0]
	c.ringFrame = 0
	c.goodWindows = 0
	c.badWindows = 0
	c.criticalInARow = 0
	c.lastAdjustmentMs = 0
	c.current = 0
}
