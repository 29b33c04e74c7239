package core

import "errors"

// Init-time errors (§7). These are fatal: the caller must fix
// configuration or environment and construct a new Processor.
var (
	// ErrCapabilityMissing is returned when the capability probe (§6)
	// reports a hard requirement unmet (offscreen surface, GPU API v2,
	// float-color render target).
	ErrCapabilityMissing = errors.New("segmo: required capability missing")

	// ErrShaderCompile is returned when a fragment program fails to
	// compile.
	ErrShaderCompile = errors.New("segmo: shader compile failed")

	// ErrProgramLink is returned when pipeline program linking fails.
	ErrProgramLink = errors.New("segmo: program link failed")

	// ErrFramebufferIncomplete is returned when a framebuffer
	// allocation is rejected by the GPU.
	ErrFramebufferIncomplete = errors.New("segmo: framebuffer incomplete")

	// ErrContextUnavailable is returned when no GPU context could be
	// acquired at init.
	ErrContextUnavailable = errors.New("segmo: GPU context unavailable")
)

// Mid-session errors (§7). ContextLost is surfaced through diagnostics
// and requires the caller to re-init; the rest are absorbed into a
// metric or fallback and never reach the caller as a returned error.
var (
	// ErrContextLost indicates the GPU context was lost mid-session.
	// The processor stops emitting frames until Init is called again.
	ErrContextLost = errors.New("segmo: GPU context lost")

	// ErrProducerInferenceFailure indicates a single external model
	// call failed. The adapter falls back to the previous mask and the
	// frame runs as interpolation; this error never propagates to the
	// pipeline.
	ErrProducerInferenceFailure = errors.New("segmo: producer inference failed")

	// ErrWorkerInitFailure indicates the off-thread adapter failed to
	// initialize within its timeout; the processor transparently falls
	// back to the in-thread adapter.
	ErrWorkerInitFailure = errors.New("segmo: worker init failed")

	// ErrResourceUploadFailure indicates a per-frame texture upload
	// failed (e.g. a zero-sized frame); the frame is dropped silently
	// and droppedFrames increments.
	ErrResourceUploadFailure = errors.New("segmo: resource upload failed")
)

// Processor/pipeline usage errors.
var (
	// ErrNotInitialized is returned when operations are called before
	// Init.
	ErrNotInitialized = errors.New("segmo: not initialized")

	// ErrInvalidDimensions is returned when width or height is
	// non-positive.
	ErrInvalidDimensions = errors.New("segmo: invalid dimensions")

	// ErrMaskDimensionMismatch is returned when a mask's dimensions
	// don't match the configured M×N.
	ErrMaskDimensionMismatch = errors.New("segmo: mask dimensions mismatch")

	// ErrClosed is returned when operating on a destroyed Processor or
	// Pipeline.
	ErrClosed = errors.New("segmo: already destroyed")
)
