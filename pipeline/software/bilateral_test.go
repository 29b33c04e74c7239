package software

import (
	"math"
	"testing"
)

func TestPerceptualDist2ZeroForIdenticalColor(t *testing.T) {
	if got := perceptualDist2(0, 0, 0); got != 0 {
		t.Fatalf("identical colors should have zero perceptual distance, got %f", got)
	}
}

func TestPerceptualDist2WeightsChromaOverLuma(t *testing.T) {
	// A pure-luma delta (equal R/G/B shift) should register a smaller
	// distance than an equal-magnitude pure-chroma delta, since chroma
	// is weighted 3x in the spec's metric.
	lumaOnly := perceptualDist2(0.1, 0.1, 0.1)
	// A chroma-dominated delta: a red/green swap of equal magnitude leaves
	// only a small luma term (0.299*0.1 - 0.587*0.1 = -0.0288) next to a
	// large chroma term.
	chromaOnly := perceptualDist2(0.1, -0.1, 0)

	if lumaOnly >= chromaOnly {
		t.Fatalf("pure chroma delta (%f) should register farther than pure luma delta (%f)", chromaOnly, lumaOnly)
	}
}

func TestColorDist2MatchesPerceptualDist2Scaled(t *testing.T) {
	got := colorDist2(200, 150, 150, 180, 180, 180)
	want := perceptualDist2((200.0-180)/255, (150.0-180)/255, (150.0-180)/255)
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Fatalf("colorDist2 should delegate to perceptualDist2 on normalized deltas, got %f want %f", got, want)
	}
}

func TestBilateralUpsamplePassesThroughFlatGuide(t *testing.T) {
	const mw, mh, w, h = 2, 2, 4, 4
	maskSrc := newTestMask(mw, mh, 0.75)
	guide := make([]uint8, mw*mh*3)
	for i := range guide {
		guide[i] = 128
	}
	dst := newTestMask(w, h, 0)
	BilateralUpsample(dst, maskSrc, guide, 3, 50, 1)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if got := dst.At(x, y); math.Abs(float64(got-0.75)) > 1e-3 {
				t.Fatalf("uniform mask over a flat guide should upsample unchanged, pixel (%d,%d) got %f", x, y, got)
			}
		}
	}
}
