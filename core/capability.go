package core

// Capabilities reports the synchronous, side-effect-free probe result
// described in §6. Hard requirements (OffscreenSurface, GPUAPIv2,
// FloatColorRenderTarget) must all be true or Processor.Init returns
// ErrCapabilityMissing; the rest are soft and only affect feature
// selection (e.g. whether the worker adapter or frame-transfer path is
// used).
type Capabilities struct {
	OffscreenSurface       bool
	GPUAPIv2               bool
	FloatColorRenderTarget bool
	TextureFloatLinear     bool
	WorkerThread           bool
	FrameTransferAPI       bool
}

// HardRequirementsMet reports whether every hard-requirement capability
// is satisfied.
func (c Capabilities) HardRequirementsMet() bool {
	return c.OffscreenSurface && c.GPUAPIv2 && c.FloatColorRenderTarget
}

// ProbeFunc performs the capability probe. The default probe
// (DefaultProbe) assumes a host environment with a real GPU context;
// hosts embedding segmo in constrained environments (headless test
// runners, software-only CI) can override it via Options.Probe.
type ProbeFunc func() Capabilities

// DefaultProbe reports full capability support. It exists so library
// consumers have a working zero-value Options.Probe; real hosts are
// expected to supply a probe backed by their actual GPU context query
// (mirroring the teacher's backend.device capability checks).
func DefaultProbe() Capabilities {
	return Capabilities{
		OffscreenSurface:       true,
		GPUAPIv2:               true,
		FloatColorRenderTarget: true,
		TextureFloatLinear:     true,
		WorkerThread:           true,
		FrameTransferAPI:       true,
	}
}
