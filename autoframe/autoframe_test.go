package autoframe

import (
	"testing"

	"github.com/gogpu/segmo/core"
)

func personMask(w, h, x0, y0, x1, y1 int) *core.Mask {
	m := core.NewMask(w, h)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(x, y, 1)
		}
	}
	return m
}

func TestUpdateFromMaskSnapsOnFirstFrame(t *testing.T) {
	f := New(Options{})
	mask := personMask(100, 100, 30, 10, 70, 90)

	rect := f.UpdateFromMask(mask)
	if rect.Zoom == 0 {
		t.Fatal("UpdateFromMask() on the first frame left Zoom unset")
	}
	if rect.Zoom < 1.0 || rect.Zoom > 1.5 {
		t.Errorf("Zoom = %f, out of the default [minZoom,maxZoom] range", rect.Zoom)
	}
}

func TestUpdateFromMaskEmptyMaskLeavesCropUnchanged(t *testing.T) {
	f := New(Options{})
	empty := core.NewMask(64, 64)

	before := f.Current()
	after := f.UpdateFromMask(empty)
	if after != before {
		t.Errorf("UpdateFromMask() on an empty mask changed the crop: %+v -> %+v", before, after)
	}
}

func TestUpdateFromMaskSmoothsTowardTarget(t *testing.T) {
	f := New(Options{Smoothing: 0.75})
	mask1 := personMask(100, 100, 40, 40, 60, 60)
	first := f.UpdateFromMask(mask1)

	mask2 := personMask(100, 100, 10, 10, 30, 30)
	second := f.UpdateFromMask(mask2)

	if second.X == first.X && second.Y == first.Y {
		t.Error("UpdateFromMask() with a moved bbox left the smoothed crop exactly unchanged")
	}
}

func TestCropStaysWithinUnitSquare(t *testing.T) {
	f := New(Options{})
	mask := personMask(50, 50, 0, 0, 50, 50)
	rect := f.UpdateFromMask(mask)

	if rect.X < 0 || rect.Y < 0 || rect.X+rect.W > 1.0001 || rect.Y+rect.H > 1.0001 {
		t.Errorf("rect = %+v escapes [0,1]^2", rect)
	}
}

func TestNonContinuousModeStopsAfter30Frames(t *testing.T) {
	f := New(Options{Continuous: false})
	mask := personMask(64, 64, 10, 10, 30, 30)

	for i := 0; i < 31; i++ {
		f.UpdateFromMask(mask)
	}
	frozen := f.Current()

	movedMask := personMask(64, 64, 40, 40, 60, 60)
	after := f.UpdateFromMask(movedMask)
	if after != frozen {
		t.Errorf("non-continuous framer updated past frame 30: %+v -> %+v", frozen, after)
	}
}

func TestUpdateFromFaceExtendsToBody(t *testing.T) {
	f := New(Options{})
	face := core.CropRegion{X: 0.45, Y: 0.05, W: 0.1, H: 0.1}

	rect := f.UpdateFromFace(face)
	if rect.Zoom == 0 {
		t.Fatal("UpdateFromFace() left Zoom unset")
	}
}

func TestUpdateFromFaceEmptyLeavesCropUnchanged(t *testing.T) {
	f := New(Options{})
	before := f.Current()
	after := f.UpdateFromFace(core.CropRegion{})
	if after != before {
		t.Errorf("UpdateFromFace() with an empty region changed the crop: %+v -> %+v", before, after)
	}
}

func TestResetClearsSnapState(t *testing.T) {
	f := New(Options{})
	mask := personMask(64, 64, 10, 10, 30, 30)
	f.UpdateFromMask(mask)

	f.Reset()
	if f.hasSnapped {
		t.Error("Reset() did not clear hasSnapped")
	}
	if f.Current() != (core.CropRect{}) {
		t.Errorf("Reset() left Current() = %+v, want zero value", f.Current())
	}
}
