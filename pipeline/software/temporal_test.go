package software

import (
	"testing"

	"github.com/gogpu/segmo/core"
)

func TestTemporalSmoothFirstFramePassesThrough(t *testing.T) {
	const w, h = 4, 4
	cur := core.NewMask(w, h)
	prev := core.NewMask(w, h)
	for i := range cur.Data() {
		cur.Data()[i] = 0.9
	}
	dst := core.NewMask(w, h)
	TemporalSmooth(dst, cur, prev, nil, 0.9, 0.3, true)

	want := smoothstep(0.5-temporalSoftness, 0.5+temporalSoftness, 0.9)
	for i, v := range dst.Data() {
		if v != want {
			t.Fatalf("pixel %d: got %f, want %f (invariant 8: first frame should pass soft-thresholded raw mask through unattenuated)", i, v, want)
		}
	}
}

func TestTemporalSmoothUsesAppearRateWhenRising(t *testing.T) {
	const w, h = 1, 1
	cur := core.NewMask(w, h)
	prev := core.NewMask(w, h)
	cur.Set(0, 0, 1.0)
	prev.Set(0, 0, 0.0)

	dst := core.NewMask(w, h)
	const appear, disappear = 0.8, 0.1
	TemporalSmooth(dst, cur, prev, nil, appear, disappear, false)

	c := smoothstep(0.5-temporalSoftness, 0.5+temporalSoftness, 1.0)
	want := mix(0.0, c, appear)
	if got := dst.At(0, 0); got != want {
		t.Fatalf("rising pixel: got %f, want %f (should blend at appearRate)", got, want)
	}
}

func TestTemporalSmoothUsesDisappearRateWhenFalling(t *testing.T) {
	const w, h = 1, 1
	cur := core.NewMask(w, h)
	prev := core.NewMask(w, h)
	cur.Set(0, 0, 0.0)
	prev.Set(0, 0, 1.0)

	dst := core.NewMask(w, h)
	const appear, disappear = 0.8, 0.1
	TemporalSmooth(dst, cur, prev, nil, appear, disappear, false)

	c := smoothstep(0.5-temporalSoftness, 0.5+temporalSoftness, 0.0)
	want := mix(1.0, c, disappear)
	if got := dst.At(0, 0); got != want {
		t.Fatalf("falling pixel: got %f, want %f (should blend at disappearRate)", got, want)
	}
}

func TestTemporalSmoothMotionMapRaisesRates(t *testing.T) {
	const w, h = 1, 1
	cur := core.NewMask(w, h)
	prev := core.NewMask(w, h)
	cur.Set(0, 0, 1.0)
	prev.Set(0, 0, 0.0)

	motion := core.NewMask(w, h)
	motion.Set(0, 0, 1.0) // well above the 0.2 raise ceiling

	dst := core.NewMask(w, h)
	const appear, disappear = 0.5, 0.2
	TemporalSmooth(dst, cur, prev, motion, appear, disappear, false)

	c := smoothstep(0.5-temporalSoftness, 0.5+temporalSoftness, 1.0)
	want := mix(0.0, c, motionAppearRate)
	if got := dst.At(0, 0); got != want {
		t.Fatalf("high-motion rising pixel: got %f, want %f (rate should be raised toward motionAppearRate)", got, want)
	}
}

func TestTemporalSmoothNoMotionMapUnaffected(t *testing.T) {
	const w, h = 2, 2
	cur := core.NewMask(w, h)
	prev := core.NewMask(w, h)
	dstWithout := core.NewMask(w, h)
	dstWithZeroMotion := core.NewMask(w, h)
	motion := core.NewMask(w, h) // all zero: should have no effect since smoothstep(0.03,0.2,0)=0

	TemporalSmooth(dstWithout, cur, prev, nil, 0.7, 0.2, false)
	TemporalSmooth(dstWithZeroMotion, cur, prev, motion, 0.7, 0.2, false)

	for i := range dstWithout.Data() {
		if dstWithout.Data()[i] != dstWithZeroMotion.Data()[i] {
			t.Fatalf("pixel %d: zero motion should match the no-motion-map path", i)
		}
	}
}
