package segmo

import "github.com/gogpu/segmo/core"

// Sentinel errors are defined in package core so sub-packages can
// return and compare them without importing this root package.
var (
	ErrCapabilityMissing     = core.ErrCapabilityMissing
	ErrShaderCompile         = core.ErrShaderCompile
	ErrProgramLink           = core.ErrProgramLink
	ErrFramebufferIncomplete = core.ErrFramebufferIncomplete
	ErrContextUnavailable    = core.ErrContextUnavailable

	ErrContextLost               = core.ErrContextLost
	ErrProducerInferenceFailure  = core.ErrProducerInferenceFailure
	ErrWorkerInitFailure         = core.ErrWorkerInitFailure
	ErrResourceUploadFailure     = core.ErrResourceUploadFailure

	ErrNotInitialized       = core.ErrNotInitialized
	ErrInvalidDimensions    = core.ErrInvalidDimensions
	ErrMaskDimensionMismatch = core.ErrMaskDimensionMismatch
	ErrClosed               = core.ErrClosed
)
