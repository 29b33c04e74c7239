package wgpu

import (
	"testing"

	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/pipeline"
)

func TestBackendRegisteredUnderWgpuName(t *testing.T) {
	b := pipeline.Get(pipeline.BackendWgpu)
	if b == nil {
		t.Fatal("pipeline.Get(BackendWgpu) returned nil, backend not registered")
	}
	if b.Name() != pipeline.BackendWgpu {
		t.Errorf("Name() = %q, want %q", b.Name(), pipeline.BackendWgpu)
	}
}

func TestBackendInitFailsWithoutAdapter(t *testing.T) {
	// RequestAdapterFunc's default implementation reports
	// ErrDeviceUnavailable until gogpu/wgpu exposes adapter enumeration,
	// so Init must fail closed rather than silently no-op.
	b := &Backend{}
	fb := pipeline.FramebufferSet{MaskWidth: 64, MaskHeight: 64, OutWidth: 640, OutHeight: 480}
	err := b.Init(fb, core.DefaultProbe())
	if err == nil {
		t.Fatal("expected Init to fail without a real adapter")
	}
}

func TestBackendInitRejectsInvalidDimensions(t *testing.T) {
	b := &Backend{}
	err := b.Init(pipeline.FramebufferSet{}, core.DefaultProbe())
	if err != core.ErrInvalidDimensions {
		t.Errorf("Init() with zeroed FramebufferSet error = %v, want ErrInvalidDimensions", err)
	}
}

type stubFrame struct{ w, h int }

func (f stubFrame) Width() int         { return f.w }
func (f stubFrame) Height() int        { return f.h }
func (f stubFrame) TimestampMs() int64 { return 0 }

func TestBackendProcessFailsAfterDestroy(t *testing.T) {
	b := &Backend{closed: true}
	mask := core.NewMask(4, 4)
	_, err := b.Process(stubFrame{w: 64, h: 64}, mask, pipeline.Params{})
	if err != core.ErrClosed {
		t.Errorf("Process() on a destroyed backend error = %v, want ErrClosed", err)
	}
}
