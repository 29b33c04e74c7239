package wgpu

import "errors"

var (
	// ErrNotInitialized is returned when operating on a backend before Init.
	ErrNotInitialized = errors.New("segmo/wgpu: not initialized")

	// ErrInvalidDimensions is returned for non-positive framebuffer sizes.
	ErrInvalidDimensions = errors.New("segmo/wgpu: invalid dimensions")

	// ErrShaderModulesIncomplete is returned when pipeline creation is
	// attempted with unvalidated shader modules.
	ErrShaderModulesIncomplete = errors.New("segmo/wgpu: shader modules incomplete")

	// ErrDeviceUnavailable is returned when no GPU adapter/device could
	// be acquired during Init.
	ErrDeviceUnavailable = errors.New("segmo/wgpu: GPU device unavailable")

	// ErrClosed is returned when operating on a destroyed backend.
	ErrClosed = errors.New("segmo/wgpu: backend destroyed")
)
