package software

import (
	"math"
	"testing"

	"github.com/gogpu/segmo/core"
)

func TestEdgeFeatherFlatRegionPassesThrough(t *testing.T) {
	const w, h = 8, 8
	src := newTestMask(w, h, 0.6)
	dst := core.NewMask(w, h)
	EdgeFeather(dst, src, 2)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got := dst.At(x, y); got != 0.6 {
				t.Fatalf("flat mask (gradient=0) should pass through verbatim at (%d,%d), got %f", x, y, got)
			}
		}
	}
}

func TestEdgeFeatherSoftensSharpBoundary(t *testing.T) {
	const w, h = 16, 16
	src := core.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				src.Set(x, y, 1)
			}
		}
	}
	dst := core.NewMask(w, h)
	EdgeFeather(dst, src, 2)

	// Immediately at the boundary the sharp mix should pull the result
	// away from the hard 0/1 step.
	x0, y0 := w/2, h/2
	got := dst.At(x0, y0)
	if got <= 0 || got >= 1 {
		t.Fatalf("boundary pixel should be softened into (0,1), got %f", got)
	}

	// Far from the boundary the mask should still be saturated.
	if got := dst.At(0, y0); got != 0 {
		t.Fatalf("far background pixel should remain 0, got %f", got)
	}
	if got := dst.At(w-1, y0); got != 1 {
		t.Fatalf("far foreground pixel should remain 1, got %f", got)
	}
}

func TestGaussianKernel5x5Normalized(t *testing.T) {
	k := gaussianKernel5x5(2)
	var sum float32
	for _, v := range k {
		sum += v
	}
	if math.Abs(float64(sum)-1) > 1e-4 {
		t.Fatalf("kernel should sum to 1, got %f", sum)
	}
}

func newTestMask(w, h int, v float32) *core.Mask {
	m := core.NewMask(w, h)
	for i := range m.Data() {
		m.Data()[i] = v
	}
	return m
}
