package wgpu

import (
	_ "embed"
	"errors"
)

// Embedded WGSL compute shader sources, one per §4.A stage.

//go:embed shaders/temporal.wgsl
var temporalShaderSource string

//go:embed shaders/morphology.wgsl
var morphologyShaderSource string

//go:embed shaders/shift.wgsl
var shiftShaderSource string

//go:embed shaders/bilateral.wgsl
var bilateralShaderSource string

//go:embed shaders/feather.wgsl
var featherShaderSource string

//go:embed shaders/blur.wgsl
var blurShaderSource string

//go:embed shaders/composite.wgsl
var compositeShaderSource string

//go:embed shaders/lightwrap.wgsl
var lightWrapShaderSource string

//go:embed shaders/colormatch.wgsl
var colorMatchShaderSource string

//go:embed shaders/crop.wgsl
var cropShaderSource string

// ShaderModuleID is a placeholder for the eventual gputypes.ShaderModuleID,
// following the teacher's own stub-handle convention for this exact
// subsystem (internal/gpu/shaders.go's ShaderModuleID).
type ShaderModuleID uint64

// InvalidShaderModule marks an uninitialized module.
const InvalidShaderModule ShaderModuleID = 0

// ShaderModules holds one compiled module per pipeline stage.
type ShaderModules struct {
	Temporal   ShaderModuleID
	Morphology ShaderModuleID
	Shift      ShaderModuleID
	Bilateral  ShaderModuleID
	Feather    ShaderModuleID
	Blur       ShaderModuleID
	Composite  ShaderModuleID
	LightWrap  ShaderModuleID
	ColorMatch ShaderModuleID
	Crop       ShaderModuleID
}

// IsValid reports whether every stage module was assigned a handle.
func (s *ShaderModules) IsValid() bool {
	return s.Temporal != InvalidShaderModule &&
		s.Morphology != InvalidShaderModule &&
		s.Shift != InvalidShaderModule &&
		s.Bilateral != InvalidShaderModule &&
		s.Feather != InvalidShaderModule &&
		s.Blur != InvalidShaderModule &&
		s.Composite != InvalidShaderModule &&
		s.LightWrap != InvalidShaderModule &&
		s.ColorMatch != InvalidShaderModule &&
		s.Crop != InvalidShaderModule
}

// CompileShaders validates the embedded WGSL sources and returns stub
// module handles, exactly matching the teacher's own CompileShaders:
// "This function currently returns stub module IDs since gogpu/wgpu
// shader compilation is not yet fully implemented. The WGSL sources are
// validated for correct syntax" (in practice here: validated for
// non-emptiness, since no WGSL parser is available without the device).
func CompileShaders(deviceHandle uint64) (*ShaderModules, error) {
	sources := []struct {
		name string
		src  string
	}{
		{"temporal", temporalShaderSource},
		{"morphology", morphologyShaderSource},
		{"shift", shiftShaderSource},
		{"bilateral", bilateralShaderSource},
		{"feather", featherShaderSource},
		{"blur", blurShaderSource},
		{"composite", compositeShaderSource},
		{"lightwrap", lightWrapShaderSource},
		{"colormatch", colorMatchShaderSource},
		{"crop", cropShaderSource},
	}
	for _, s := range sources {
		if s.src == "" {
			return nil, errors.New("segmo/wgpu: " + s.name + " shader source is empty")
		}
	}

	// TODO: once gogpu/wgpu exposes shader module creation, compile via
	// naga and request real ShaderModuleID handles here instead of
	// returning placeholders.
	return &ShaderModules{
		Temporal:   1,
		Morphology: 2,
		Shift:      3,
		Bilateral:  4,
		Feather:    5,
		Blur:       6,
		Composite:  7,
		LightWrap:  8,
		ColorMatch: 9,
		Crop:       10,
	}, nil
}
