// Package wgpu is the GPU-accelerated shader pipeline backend (§4.A,
// §4.B). It mirrors the teacher's own wgpu backend's posture exactly:
// dispatch bodies are documented stubs that prepare all buffers and
// bind groups but do not issue actual GPU commands, pending full
// gogpu/wgpu device support. Device acquisition goes through
// RequestAdapterFunc, whose default reports ErrDeviceUnavailable, so
// Init fails unless a host supplies one; textures are budget-tracked
// entries with stub handles, so memory accounting and the Init/Destroy
// lifecycle run without a live renderer.
package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/types"
)

// Errors specific to this backend's resource management.
var (
	ErrTextureReleased      = errors.New("segmo/wgpu: texture has been released")
	ErrTextureSizeMismatch  = errors.New("segmo/wgpu: pixmap size does not match texture")
	ErrReadbackNotSupported = errors.New("segmo/wgpu: texture readback not supported (stub)")
)

// TextureFormat is the pixel format of a GPU texture used by the
// pipeline's intermediate render targets.
type TextureFormat uint8

const (
	// TextureFormatRGBA8 backs full-frame composite surfaces.
	TextureFormatRGBA8 TextureFormat = iota
	// TextureFormatR32F backs mask-space single-channel buffers.
	TextureFormatR32F
)

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA8:
		return "RGBA8"
	case TextureFormatR32F:
		return "R32F"
	default:
		return "Unknown"
	}
}

// BytesPerPixel returns the per-pixel byte footprint used for memory
// budget accounting.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRGBA8:
		return 4
	case TextureFormatR32F:
		return 4
	default:
		return 4
	}
}

// ToWGPUFormat converts to the gogpu/wgpu wire format, used once actual
// texture creation is wired in. Mask-space R32F buffers map to R8Unorm
// at the wire level (the CPU side keeps float32 precision; only the
// eventual GPU texture storage is 8-bit).
func (f TextureFormat) ToWGPUFormat() types.TextureFormat {
	switch f {
	case TextureFormatRGBA8:
		return types.TextureFormatRGBA8Unorm
	case TextureFormatR32F:
		return types.TextureFormatR8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

// TextureConfig describes a texture to allocate.
type TextureConfig struct {
	Width  int
	Height int
	Format TextureFormat
	Label  string
}

// GPUTexture is a tracked GPU texture resource. StubHandle stands in
// for the real gputypes.TextureID until device-backed allocation lands;
// every other field (size accounting, manager linkage) is real.
type GPUTexture struct {
	label     string
	width     int
	height    int
	format    TextureFormat
	sizeBytes uint64

	// StubHandle is a placeholder for the eventual gputypes.TextureID.
	StubHandle uint64

	manager  *MemoryManager
	released bool
}

func newTexture(config TextureConfig, handle uint64) *GPUTexture {
	return &GPUTexture{
		label:      config.Label,
		width:      config.Width,
		height:     config.Height,
		format:     config.Format,
		sizeBytes:  uint64(config.Width * config.Height * config.Format.BytesPerPixel()),
		StubHandle: handle,
	}
}

func (t *GPUTexture) Width() int            { return t.width }
func (t *GPUTexture) Height() int           { return t.height }
func (t *GPUTexture) Format() TextureFormat { return t.format }
func (t *GPUTexture) String() string {
	return fmt.Sprintf("GPUTexture(%s %dx%d %s)", t.label, t.width, t.height, t.format)
}

// Release returns the texture to its owning manager, if any.
func (t *GPUTexture) Release() {
	if t.released {
		return
	}
	t.released = true
	if t.manager != nil {
		t.manager.unregister(t)
	}
}
