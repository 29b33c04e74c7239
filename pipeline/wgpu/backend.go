package wgpu

import (
	"sync"

	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/pipeline"
)

func init() {
	pipeline.Register(pipeline.BackendWgpu, func() pipeline.Backend {
		return &Backend{}
	})
}

// Backend is the GPU-accelerated shader pipeline backend. Its dispatch
// bodies (renderStage) are documented stubs, in the same posture as the
// teacher's wgpu renderer: buffers and bind groups are prepared and
// budget-tracked, but no GPU command is actually submitted, pending
// gogpu/wgpu exposing device/adapter acquisition and compute dispatch.
// Capability probing (§6 "Hard requirement: WebGL2 context creation
// succeeds" generalized to a GPU device) genuinely fails closed today,
// so Processor.Init falls back to pipeline/software in any environment
// this pack runs in.
type Backend struct {
	mu sync.Mutex

	device    *Device
	pipelines *PipelineCache
	memory    *MemoryManager

	fb     pipeline.FramebufferSet
	params pipeline.Params

	cropX0, cropY0, cropX1, cropY1 int

	closed bool
}

func (b *Backend) Name() string { return pipeline.BackendWgpu }

// Init acquires a GPU adapter/device, compiles the shader library, and
// allocates the intermediate texture set for fb. Fails with
// core.ErrContextUnavailable when RequestAdapterFunc cannot produce an
// adapter (§7 init-time failure); Processor.Init then falls back to
// pipeline/software.
func (b *Backend) Init(fb pipeline.FramebufferSet, caps core.Capabilities) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if fb.OutWidth <= 0 || fb.OutHeight <= 0 || fb.MaskWidth <= 0 || fb.MaskHeight <= 0 {
		return core.ErrInvalidDimensions
	}
	if !caps.HardRequirementsMet() {
		return core.ErrCapabilityMissing
	}

	adapter, err := RequestAdapterFunc()
	if err != nil {
		return core.ErrContextUnavailable
	}
	device, err := NewDevice(adapter, "segmo-pipeline")
	if err != nil {
		return core.ErrContextUnavailable
	}

	shaders, err := CompileShaders(0)
	if err != nil {
		device.Close()
		return core.ErrShaderCompile
	}
	pipelines, err := NewPipelineCache(shaders)
	if err != nil {
		device.Close()
		return core.ErrProgramLink
	}

	memory := NewMemoryManager(MemoryManagerConfig{})

	b.device = device
	b.pipelines = pipelines
	b.memory = memory
	b.fb = fb
	b.cropX0, b.cropY0 = 0, 0
	b.cropX1, b.cropY1 = fb.OutWidth, fb.OutHeight
	b.closed = false
	return nil
}

func (b *Backend) UpdateOptions(params pipeline.Params) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params = params
}

func (b *Backend) SetCropRect(x0, y0, x1, y1 int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cropX0, b.cropY0, b.cropX1, b.cropY1 = x0, y0, x1, y1
}

func (b *Backend) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.pipelines != nil {
		b.pipelines.Close()
	}
	if b.memory != nil {
		b.memory.Close()
	}
	if b.device != nil {
		b.device.Close()
	}
	b.closed = true
}

func (b *Backend) Process(frame core.Frame, mask *core.Mask, params pipeline.Params) (core.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, core.ErrClosed
	}
	b.params = params
	return b.dispatchLocked(frame, mask)
}

func (b *Backend) ProcessInterpolated(frame core.Frame, previousMask, currentMask *core.Mask, alpha float32, params pipeline.Params) (core.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, core.ErrClosed
	}
	b.params = params

	blended := core.NewMask(currentMask.Width(), currentMask.Height())
	ad, bd, dd := previousMask.Data(), currentMask.Data(), blended.Data()
	for i := range dd {
		dd[i] = ad[i] + (bd[i]-ad[i])*alpha
	}
	return b.dispatchLocked(frame, blended)
}

// dispatchLocked allocates the stage texture set and would submit the
// ten-stage compute dispatch chain (temporal -> morphology -> shift ->
// bilateral -> feather -> blur -> composite -> lightwrap -> colormatch
// -> crop) against b.pipelines. Per this backend's documented-stub
// posture, no command encoder is actually submitted: the allocations
// below are real (and budget-tracked through b.memory) so callers can
// observe the backend behaving correctly up to the point where a real
// gogpu/wgpu queue submission would occur.
func (b *Backend) dispatchLocked(frame core.Frame, maskSpace *core.Mask) (core.Surface, error) {
	w, h := frame.Width(), frame.Height()
	if w <= 0 || h <= 0 {
		return nil, core.ErrInvalidDimensions
	}

	out, err := b.memory.Alloc(TextureConfig{Width: w, Height: h, Format: TextureFormatRGBA8, Label: "composite-out"}, 0)
	if err != nil {
		return nil, core.ErrFramebufferIncomplete
	}
	b.memory.Touch(out)

	// TODO: once gogpu/wgpu exposes ComputePassEncoder, issue the actual
	// dispatch chain here, reading maskSpace into the temporal/morphology/
	// shift/bilateral pipeline stages and frame's uploaded texture into
	// composite/lightwrap/colormatch, writing the final stage into out.
	_ = maskSpace

	return &gpuSurface{tex: out}, nil
}

// gpuSurface adapts a GPUTexture to core.Surface.
type gpuSurface struct {
	tex *GPUTexture
}

func (s *gpuSurface) Width() int  { return s.tex.Width() }
func (s *gpuSurface) Height() int { return s.tex.Height() }
