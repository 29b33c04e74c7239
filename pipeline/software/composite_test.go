package software

import (
	"testing"

	"github.com/gogpu/segmo/core"
)

func flatRGB(w, h int, r, g, b uint8) []uint8 {
	out := make([]uint8, w*h*3)
	for i := 0; i < w*h; i++ {
		out[i*3], out[i*3+1], out[i*3+2] = r, g, b
	}
	return out
}

func TestCompositeFullMaskPassesThroughForeground(t *testing.T) {
	const w, h = 8, 8
	frame := flatRGB(w, h, 200, 60, 60)
	bg := flatRGB(w, h, 10, 200, 10)
	mask := newTestMask(w, h, 1.0)

	dst := NewSurface(w, h)
	Composite(dst, frame, bg, mask)

	r, g, b, _ := dst.At(4, 4)
	if r != 200 || g != 60 || b != 60 {
		t.Fatalf("fully-confident mask should pass the foreground through, got (%d,%d,%d)", r, g, b)
	}
}

func TestCompositeZeroMaskPassesThroughBackground(t *testing.T) {
	const w, h = 8, 8
	frame := flatRGB(w, h, 200, 60, 60)
	bg := flatRGB(w, h, 10, 200, 10)
	mask := newTestMask(w, h, 0.0)

	dst := NewSurface(w, h)
	Composite(dst, frame, bg, mask)

	r, g, b, _ := dst.At(4, 4)
	if r != 10 || g != 200 || b != 10 {
		t.Fatalf("fully-absent mask should pass the background through, got (%d,%d,%d)", r, g, b)
	}
}

func TestCompositeTransitionZoneStaysWithinColorBounds(t *testing.T) {
	const w, h = 16, 16
	frame := flatRGB(w, h, 220, 80, 80)
	bg := flatRGB(w, h, 20, 220, 20)
	mask := core.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				mask.Set(x, y, 1)
			} else {
				mask.Set(x, y, 0.5)
			}
		}
	}

	dst := NewSurface(w, h)
	Composite(dst, frame, bg, mask)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := dst.At(x, y)
			if r < 20 || r > 220 || g < 80 || g > 220 || b < 20 || b > 80 {
				t.Fatalf("pixel (%d,%d)=(%d,%d,%d) should stay within the foreground/background color envelope", x, y, r, g, b)
			}
		}
	}
}

func TestCrossKernelAccumulateWeightsCenterMost(t *testing.T) {
	const w, h = 24, 24
	mask := core.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mask.Set(x, y, 0.9) // uniformly foreground-weighted
		}
	}
	frame := flatRGB(w, h, 100, 150, 200)

	_, _, _, fgw, _, _, _, bgw := crossKernelAccumulate(mask, frame, w, h, 12, 12)
	if fgw <= 0 {
		t.Fatalf("foreground-weighted mask should accumulate positive fg weight, got %f", fgw)
	}
	if bgw != 0 {
		t.Fatalf("mask uniformly at 0.9 should contribute zero background weight (smoothstep(0.4,0.1,0.9)=0), got %f", bgw)
	}
	// Center sample at full weight 1, plus 1/(1+|off|) for off = ±1..±3 on each axis.
	const wantFgw = 1 + 4*(1.0/2+1.0/3+1.0/4)
	if d := fgw - wantFgw; d > 1e-4 || d < -1e-4 {
		t.Fatalf("fg weight should be the proximity-weighted sum with the center sample weighted most (%f), got %f", float32(wantFgw), fgw)
	}
}
