package segmo

import (
	"math"
	"sync"
	"time"

	"github.com/gogpu/segmo/adapter"
	"github.com/gogpu/segmo/autoframe"
	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/diagnostics"
	"github.com/gogpu/segmo/pipeline"
	_ "github.com/gogpu/segmo/pipeline/software"
	_ "github.com/gogpu/segmo/pipeline/wgpu"
	"github.com/gogpu/segmo/quality"
	"github.com/gogpu/segmo/workeradapter"
)

// Processor is the orchestrator of §4.G: it wires the GPU pipeline, the
// mask producer adapter (in-thread or worker), the auto-framer, and the
// adaptive quality controller into one per-frame call. Grounded on
// GPUSceneRenderer's init/process/resize/close lifecycle and
// mutex-guarded state shape (backend/wgpu/renderer.go).
type Processor struct {
	mu sync.Mutex

	opts Options
	caps Capabilities

	width, height int

	backend    pipeline.Backend
	controller *quality.Controller
	framer     *autoframe.Framer

	inAdapter *adapter.Adapter
	worker    *workeradapter.Worker
	useWorker bool

	diag *diagnostics.Accumulator

	baseModelIntervalMs float64
	lastModelRunMs      int64
	interpCount         int

	roiCrop *core.CropRegion

	prevMask, curMask *core.Mask
	lastMotion        core.MotionVector
	lastMotionMap     *core.Mask

	closed bool
}

// NewProcessor constructs an un-initialized Processor; call Init before
// ProcessFrame.
func NewProcessor(opts Options) *Processor {
	return &Processor{opts: opts.withDefaults()}
}

// Init runs the capability probe, constructs the pipeline backend at
// the seed tier, and wires the adapter/worker/auto-framer/controller
// together (§4.G). Any failure here is fatal and raised to the caller
// per §7.
func (p *Processor) Init(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if width <= 0 || height <= 0 {
		return core.ErrInvalidDimensions
	}

	caps := p.opts.Probe()
	if !caps.HardRequirementsMet() {
		return core.ErrCapabilityMissing
	}

	backend := pipeline.Default()
	if backend == nil {
		return core.ErrCapabilityMissing
	}

	controller := quality.New(nil, quality.Config{
		TargetFrameMs:   p.opts.AdaptiveConfig.TargetFrameMs,
		CriticalMs:      p.opts.AdaptiveConfig.CriticalMs,
		WindowSize:      p.opts.AdaptiveConfig.WindowSize,
		DowngradeThresh: p.opts.AdaptiveConfig.DowngradeThresh,
		UpgradeThresh:   p.opts.AdaptiveConfig.UpgradeThresh,
		CooldownMs:      p.opts.AdaptiveConfig.CooldownMs,
		CriticalInARow:  p.opts.AdaptiveConfig.CriticalInARow,
	})
	controller.SetTier(qualityLabelTierIndex(p.opts.Quality))
	if !p.opts.Adaptive {
		controller.Lock()
	} else {
		controller.Unlock()
	}

	_, tier := controller.CurrentTier()
	fb := pipeline.FramebufferSet{
		MaskWidth: tier.MaskWidth, MaskHeight: tier.MaskHeight,
		OutWidth: width, OutHeight: height,
	}
	if err := backend.Init(fb, caps); err != nil {
		// pipeline.Default() returns by priority (wgpu first) without
		// trying Init; a wgpu device that genuinely cannot be acquired
		// (§7 ContextUnavailable) falls back to the software backend
		// here instead of surfacing as fatal.
		if backend.Name() == pipeline.BackendWgpu {
			if sw := pipeline.Get(pipeline.BackendSoftware); sw != nil {
				if swErr := sw.Init(fb, caps); swErr == nil {
					backend = sw
					err = nil
				}
			}
		}
		if err != nil {
			return err
		}
	}

	controller.OnTierChange(func(idx int, t quality.Tier) {
		p.onTierChanged(idx, t)
	})

	var inAdapter *adapter.Adapter
	if p.opts.Background.Kind != core.BackgroundNone {
		if p.opts.Producer == nil {
			backend.Destroy()
			return core.ErrCapabilityMissing
		}
		inAdapter = adapter.New(p.opts.Producer, tier.MaskWidth, tier.MaskHeight)
	}

	var worker *workeradapter.Worker
	useWorker := false
	if p.opts.UseWorker && inAdapter != nil {
		factory := p.opts.ProducerFactory
		if factory == nil {
			factory = func() (core.MaskProducer, error) { return p.opts.Producer, nil }
		}
		w, err := workeradapter.New(factory, tier.MaskWidth, tier.MaskHeight, p.opts.WorkerInitTimeout)
		if err != nil {
			// §7 WorkerInitFailure: transparent fallback to the in-thread adapter.
			useWorker = false
		} else {
			worker = w
			useWorker = true
		}
	}

	clientID := p.opts.ClientID
	if clientID == "" {
		clientID = diagnostics.NewClientID()
	}
	var metrics *diagnostics.Metrics
	if p.opts.MetricsRegisterer != nil {
		metrics = diagnostics.NewMetrics(p.opts.MetricsRegisterer, clientID)
	}
	diag := diagnostics.NewAccumulator(clientID, p.opts.DiagnosticsIntervalMs, p.opts.DiagnosticsIncludeImage, metrics)
	if p.opts.OnDiagnostic != nil && p.opts.DiagnosticsLevel == DiagnosticsSummary {
		diag.AddSink(diagnostics.SinkFunc(p.opts.OnDiagnostic))
	}
	diag.EmitInit(backend.Name(), caps, width, height, tier.Name)
	if p.opts.UseWorker && !useWorker {
		diag.ReportWorkerFallback()
	}

	p.backend = backend
	p.controller = controller
	p.framer = autoframe.New(autoframe.Options{
		Continuous: p.opts.AutoFrame.Continuous,
		Padding:    p.opts.AutoFrame.Padding,
		Smoothing:  p.opts.AutoFrame.Smoothing,
		MaxZoom:    p.opts.AutoFrame.MaxZoom,
		MinZoom:    p.opts.AutoFrame.MinZoom,
		DeadZone:   p.opts.AutoFrame.DeadZone,
	})
	p.inAdapter = inAdapter
	p.worker = worker
	p.useWorker = useWorker
	p.diag = diag
	p.caps = caps
	p.width, p.height = width, height
	p.baseModelIntervalMs = modelIntervalMs(p.opts.ModelFps, tier)
	// Force shouldRunModel on the very first ProcessFrame call regardless
	// of the caller's timestamp origin.
	p.lastModelRunMs = math.MinInt64 / 2
	p.closed = false
	return nil
}

// onTierChanged applies a new tier's resolution/rate to the pipeline
// and the adapter's mask resolution (§4.G "register tier-change
// applier"). Every tier change re-Inits the backend's framebuffers and
// replaces the in-thread Adapter with a fresh one at the new mask size,
// since §5's reuse discipline ties buffer lifetime to dimension
// stability.
func (p *Processor) onTierChanged(_ int, tier quality.Tier) {
	p.baseModelIntervalMs = modelIntervalMs(p.opts.ModelFps, tier)
	if p.diag != nil {
		p.diag.ReportTierChange()
	}
	if p.backend == nil {
		return
	}
	fb := pipeline.FramebufferSet{
		MaskWidth: tier.MaskWidth, MaskHeight: tier.MaskHeight,
		OutWidth: p.width, OutHeight: p.height,
	}
	if err := p.backend.Init(fb, p.caps); err != nil {
		return
	}
	if p.inAdapter != nil && p.opts.Producer != nil {
		p.inAdapter = adapter.New(p.opts.Producer, tier.MaskWidth, tier.MaskHeight)
	}
}

// ProcessFrame runs one iteration of §4.G's orchestration loop. Returns
// (nil, nil) for background mode "none" (pass-through) or when no mask
// has ever been produced yet; a non-nil error only for a fatal
// condition (§7 forbids partial frames reaching the output, so steady-
// state failures are absorbed and return (nil, nil) instead).
func (p *Processor) ProcessFrame(frame core.Frame, timestampMs int64) (core.Surface, error) {
	start := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, core.ErrClosed
	}
	if p.opts.Background.Kind == core.BackgroundNone {
		return nil, nil
	}

	mv := p.activeMotionVector()
	maxVx := mv.Vx[0]
	if a := absf(mv.Vx[1]); a > absf(maxVx) {
		maxVx = mv.Vx[1]
	}
	if a := absf(mv.Vx[2]); a > absf(maxVx) {
		maxVx = mv.Vx[2]
	}
	motionMag := float32(math.Sqrt(float64(maxVx*maxVx + mv.Vy*mv.Vy)))
	speedup := float64(1 + 20*motionMag)
	if speedup > 4 {
		speedup = 4
	}
	effectiveInterval := p.baseModelIntervalMs / speedup
	if effectiveInterval < 16 {
		effectiveInterval = 16
	}
	shouldRunModel := float64(timestampMs-p.lastModelRunMs) >= effectiveInterval

	crop := p.framer.Current()
	if crop.Zoom > 1.02 {
		x0 := int(crop.X * float32(p.width))
		y0 := int(crop.Y * float32(p.height))
		x1 := x0 + int(crop.W*float32(p.width))
		y1 := y0 + int(crop.H*float32(p.height))
		p.backend.SetCropRect(x0, y0, x1, y1)
	} else {
		p.backend.SetCropRect(0, 0, p.width, p.height)
	}

	_, tier := p.controller.CurrentTier()
	params := pipeline.Params{Tier: tier, Background: p.opts.Background}

	var (
		surface core.Surface
		err     error
		dropped bool
	)

	switch {
	case p.useWorker:
		if res, ok := p.worker.PollResult(); ok {
			p.adoptFreshMask(res.Mask, res.BBox, res.MotionVec, res.Motion)
			params.MotionMap = p.lastMotionMap
			surface, err = p.backend.Process(frame, res.Mask, params)
		} else {
			p.interpCount++
			dx, dy := accumulatedShift(mv, p.interpCount)
			params.MotionDX, params.MotionDY = dx, dy
			params.MotionMap = p.lastMotionMap
			if p.curMask != nil {
				surface, err = p.backend.ProcessInterpolated(frame, p.prevMaskOrCur(), p.curMask, 1, params)
			}
		}
		if shouldRunModel {
			p.worker.TrySegment(frame, timestampMs, p.roiCrop, p.width, p.height)
			p.lastModelRunMs = timestampMs
		}

	case shouldRunModel:
		mask, segErr := p.inAdapter.Segment(frame, timestampMs, p.roiCrop, p.width, p.height)
		p.lastModelRunMs = timestampMs
		if segErr != nil {
			dropped = true
			err = segErr
			break
		}
		if mask == nil {
			// First-call producer failure: nothing to render yet.
			break
		}
		p.adoptFreshMask(mask, p.inAdapter.GetPersonBBox(p.opts.AutoFrame.Padding), p.inAdapter.GetMaskMotionVector(), p.inAdapter.GetMotionMap())
		params.MotionMap = p.lastMotionMap
		surface, err = p.backend.Process(frame, mask, params)

	default:
		p.interpCount++
		dx, dy := accumulatedShift(mv, p.interpCount)
		params.MotionDX, params.MotionDY = dx, dy
		params.MotionMap = p.lastMotionMap
		if p.curMask != nil {
			surface, err = p.backend.ProcessInterpolated(frame, p.prevMaskOrCur(), p.curMask, 1, params)
		}
	}

	if err == core.ErrContextLost {
		p.closed = true
		if p.diag != nil {
			p.diag.ReportContextLost()
		}
		return nil, err
	}
	if err != nil {
		dropped = true
	}

	if p.diag != nil {
		p.diag.ReportFrame(float64(time.Since(start).Microseconds())/1000, dropped)
		p.diag.MaybeEmitSummary(diagnostics.NowMs())
	}
	p.controller.ReportFrame(float64(time.Since(start).Microseconds())/1000, time.Now().UnixMilli())

	if err != nil {
		// Steady-state failures never reach the caller as partial
		// output (§7): the frame is simply dropped.
		return nil, nil
	}
	return surface, nil
}

// adoptFreshMask records a newly produced mask, feeds the auto-framer
// and ROI-crop smoothing, and resets the interpolation counter.
func (p *Processor) adoptFreshMask(mask *core.Mask, bbox *core.CropRegion, mv core.MotionVector, motionMap *core.Mask) {
	p.prevMask = p.curMask
	p.curMask = mask
	p.lastMotion = mv
	p.lastMotionMap = motionMap
	p.interpCount = 0
	p.framer.UpdateFromMask(mask)
	p.updateROI(bbox)
}

// updateROI applies §4.G's ROI crop smoothing dead zone/EMA to the
// adapter's next-frame crop input.
func (p *Processor) updateROI(candidate *core.CropRegion) {
	if candidate == nil {
		return
	}
	if p.roiCrop == nil {
		c := *candidate
		p.roiCrop = &c
		return
	}
	posShift := maxf(absf(candidate.X-p.roiCrop.X), absf(candidate.Y-p.roiCrop.Y))
	sizeShift := maxf(absf(candidate.W-p.roiCrop.W), absf(candidate.H-p.roiCrop.H))
	if posShift > 0.03 || sizeShift > 0.015 {
		const s = 0.5
		p.roiCrop.X = p.roiCrop.X*s + candidate.X*(1-s)
		p.roiCrop.Y = p.roiCrop.Y*s + candidate.Y*(1-s)
		p.roiCrop.W = p.roiCrop.W*s + candidate.W*(1-s)
		p.roiCrop.H = p.roiCrop.H*s + candidate.H*(1-s)
	}
}

func (p *Processor) prevMaskOrCur() *core.Mask {
	if p.prevMask != nil {
		return p.prevMask
	}
	return p.curMask
}

func (p *Processor) activeMotionVector() core.MotionVector {
	if p.useWorker {
		return p.lastMotion
	}
	if p.inAdapter != nil {
		return p.inAdapter.GetMaskMotionVector()
	}
	return core.MotionVector{}
}

// Destroy releases the pipeline backend and stops the worker goroutine,
// if any. The Processor must not be used after Destroy.
func (p *Processor) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.backend != nil {
		p.backend.Destroy()
	}
	if p.worker != nil {
		p.worker.Close()
	}
	p.closed = true
}

// accumulatedShift implements §4.G's "Accumulated shift": a weighted
// 3-band horizontal velocity plus vertical velocity, dead-zoned and
// clamped, scaled by the number of consecutive interpolated frames
// since the last fresh mask.
func accumulatedShift(mv core.MotionVector, interpCount int) (dx, dy float32) {
	vxWeighted := 0.6*mv.Vx[0] + 0.3*mv.Vx[1] + 0.1*mv.Vx[2]
	if absf(vxWeighted) < 0.003 && absf(mv.Vy) < 0.003 {
		return 0, 0
	}
	t := float32(interpCount)
	dx = clampAbs(vxWeighted*t, 0.12)
	dy = clampAbs(mv.Vy*t, 0.12)
	return dx, dy
}

func modelIntervalMs(fps int, tier quality.Tier) float64 {
	if fps > 0 {
		return 1000 / float64(fps)
	}
	if tier.ModelRateHz > 0 {
		return 1000 / tier.ModelRateHz
	}
	return 1000 / 30.0
}

func qualityLabelTierIndex(label QualityLabel) int {
	switch label {
	case QualityUltra:
		return 0
	case QualityHigh:
		return 1
	case QualityMedium:
		return 2
	case QualityLow:
		return 3
	default:
		return 0
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func clampAbs(v, bound float32) float32 {
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
