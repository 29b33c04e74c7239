package wgpu

import "sync"

// StubPipelineID is a placeholder for the real gputypes.ComputePipelineID,
// matching the teacher's own StubPipelineID/StubComputePipelineID
// convention (backend/wgpu/pipeline.go) for a subsystem the teacher
// itself ships undone.
type StubPipelineID uint64

// InvalidPipelineID marks an uninitialized pipeline.
const InvalidPipelineID StubPipelineID = 0

// PipelineCache caches one compute pipeline per pipeline stage. Pipeline
// creation here mirrors the teacher's PipelineCache shape one-to-one,
// generalized from its four render/blend/strip/composite pipelines to
// this pipeline's ten per-stage compute pipelines.
type PipelineCache struct {
	mu sync.RWMutex

	shaders *ShaderModules

	temporal   StubPipelineID
	morphErode StubPipelineID
	morphDiln  StubPipelineID
	shift      StubPipelineID
	bilateral  StubPipelineID
	feather    StubPipelineID
	blur       StubPipelineID
	composite  StubPipelineID
	lightWrap  StubPipelineID
	colorMatch StubPipelineID
	crop       StubPipelineID

	initialized bool
}

// NewPipelineCache creates pipeline handles for every stage's shader
// module. Returns an error if the shader modules are not fully
// compiled.
func NewPipelineCache(shaders *ShaderModules) (*PipelineCache, error) {
	if shaders == nil || !shaders.IsValid() {
		return nil, ErrShaderModulesIncomplete
	}
	pc := &PipelineCache{
		shaders:    shaders,
		temporal:   StubPipelineID(shaders.Temporal),
		morphErode: StubPipelineID(shaders.Morphology),
		morphDiln:  StubPipelineID(shaders.Morphology),
		shift:      StubPipelineID(shaders.Shift),
		bilateral:  StubPipelineID(shaders.Bilateral),
		feather:    StubPipelineID(shaders.Feather),
		blur:       StubPipelineID(shaders.Blur),
		composite:  StubPipelineID(shaders.Composite),
		lightWrap:  StubPipelineID(shaders.LightWrap),
		colorMatch: StubPipelineID(shaders.ColorMatch),
		crop:       StubPipelineID(shaders.Crop),
		// TODO: when wgpu compute-pipeline creation is implemented, build
		// real bind group layouts and ComputePipelineDescriptors here
		// instead of aliasing the shader module handle.
		initialized: true,
	}
	return pc, nil
}

// Initialized reports whether every stage pipeline was created.
func (pc *PipelineCache) Initialized() bool {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return pc.initialized
}

// Close releases the pipeline cache. No-op today since pipelines are
// stub handles with no backing GPU resource yet.
func (pc *PipelineCache) Close() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.initialized = false
}
