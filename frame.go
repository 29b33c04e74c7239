package segmo

import "github.com/gogpu/segmo/core"

// Frame, Surface, ConfidenceMap, MaskProducer, and ScratchSurface are
// defined in package core; aliased here so host code can keep writing
// segmo.Frame etc. while every segmo sub-package depends on core
// directly instead of on this root package.
type (
	Frame          = core.Frame
	Surface        = core.Surface
	ConfidenceMap  = core.ConfidenceMap
	MaskProducer   = core.MaskProducer
	ScratchSurface = core.ScratchSurface
)
