package pipeline

import (
	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/quality"
)

// FramebufferSet describes the intermediate render-target dimensions a
// backend must allocate for one configuration: the mask-space M×N used
// by every per-tier stage up through composite, and the output W×H the
// final composite is written at. Grounded on the teacher's
// GPUSceneRendererConfig/Pixmap-size pairing (backend/wgpu/renderer.go):
// a backend re-derives its internal targets whenever either dimension
// changes, rather than reallocating per frame.
type FramebufferSet struct {
	MaskWidth  int
	MaskHeight int
	OutWidth   int
	OutHeight  int
}

// Params bundles the per-frame configuration a backend's Process calls
// need: the active quality tier (resolution, rates, kernel radii) and
// the background compositing mode.
type Params struct {
	Tier         quality.Tier
	Background   core.BackgroundMode
	ModelClasses core.ModelClassKind

	// MotionDX, MotionDY are the adapter's predicted mask-space motion
	// vector (§4.C step 6), used by the mask-shift stage to compensate
	// for inference-to-display latency.
	MotionDX, MotionDY float32

	// MotionMap is the adapter's per-pixel |mask_t - mask_(t-delta)|
	// buffer (§4.C step 7), fed to the temporal-smoothing stage so it
	// can raise its appear/disappear rates where the subject is moving
	// (§4.A stage 1). Nil before a true previous frame exists.
	MotionMap *core.Mask
}

// Backend is the GPU shader pipeline contract (§4.A "GPU Pipeline",
// §4.B). Init/Destroy bracket the session; Process and
// ProcessInterpolated are the two dispatch shapes named in §4.B (a
// fresh mask from the adapter vs. interpolating between the last two
// masks when the model hasn't produced a new one this frame).
type Backend interface {
	// Name returns the backend identifier ("software" or "wgpu").
	Name() string

	// Init allocates the backend's framebuffers for the given set and
	// probes/validates the capability set. Returns ErrCapabilityMissing,
	// ErrShaderCompile, ErrProgramLink, or ErrFramebufferIncomplete on
	// failure (§7).
	Init(fb FramebufferSet, caps core.Capabilities) error

	// Process runs the full 10-stage shader pipeline for a fresh mask
	// (§4.A stages 1-10) and returns the composited output surface.
	Process(frame core.Frame, mask *core.Mask, params Params) (core.Surface, error)

	// ProcessInterpolated runs the pipeline using a blend of the
	// previous and current masks at the given alpha in [0,1], for
	// frames between model inference calls (§4.B).
	ProcessInterpolated(frame core.Frame, previousMask, currentMask *core.Mask, alpha float32, params Params) (core.Surface, error)

	// SetCropRect applies the auto-framer's output crop/zoom rectangle,
	// in output pixel coordinates, to subsequent Process calls.
	SetCropRect(x0, y0, x1, y1 int)

	// UpdateOptions applies a new Params to subsequent Process calls
	// without a full re-Init (quality tier changes, background mode
	// changes).
	UpdateOptions(params Params)

	// Destroy releases the backend's framebuffers and GPU resources.
	// The backend must not be used after Destroy.
	Destroy()
}
