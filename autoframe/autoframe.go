// Package autoframe implements the auto-framer (§4.E): given the
// current person mask (or an externally supplied face box), it tracks
// a smoothed crop/zoom rectangle that keeps the subject centered and
// appropriately sized, with an EMA smoothing pass so the crop doesn't
// chase every small mask fluctuation. Options.DeadZone is stored but not
// applied: every accepted candidate moves the smoothed crop.
package autoframe

import (
	"github.com/gogpu/segmo/core"
)

const targetFill = 0.9

// Framer owns the smoothed crop state across frames. The zero value is
// usable; the first accepted candidate snaps the smoothed crop rather
// than easing into it (§4.E step 6, §8 invariant-adjacent behavior).
type Framer struct {
	opts Options

	smoothed   core.CropRect
	hasSnapped bool
	frameCount int
}

// Options mirrors the subset of the root package's AutoFrameOptions the
// math needs, duplicated here to avoid an import cycle (root imports
// autoframe to build the Processor).
type Options struct {
	Continuous bool
	Padding    float32
	Smoothing  float32
	MaxZoom    float32
	MinZoom    float32
	// DeadZone is stored but not read by UpdateFromMask or UpdateFromFace.
	DeadZone float32
}

// New constructs a Framer. A zero-valued Smoothing/MaxZoom/MinZoom is
// replaced with §4.E's defaults so callers can pass a partially zeroed
// Options without nonsensical math.
func New(opts Options) *Framer {
	if opts.Smoothing == 0 {
		opts.Smoothing = 0.75
	}
	if opts.MaxZoom == 0 {
		opts.MaxZoom = 1.5
	}
	if opts.MinZoom == 0 {
		opts.MinZoom = 1.0
	}
	return &Framer{opts: opts}
}

// Current returns the last smoothed crop without recomputing anything.
func (f *Framer) Current() core.CropRect { return f.smoothed }

// Reset clears all framing history so the next update snaps instead of
// easing in.
func (f *Framer) Reset() {
	f.smoothed = core.CropRect{}
	f.hasSnapped = false
	f.frameCount = 0
}

// UpdateFromMask runs §4.E's 6-step algorithm against a full-frame
// person mask and returns the (possibly unchanged) smoothed crop.
func (f *Framer) UpdateFromMask(mask *core.Mask) core.CropRect {
	if !f.opts.Continuous && f.hasSnapped && f.frameCount > 30 {
		return f.smoothed
	}

	bbox, weight, ok := weightedBBox(mask)
	if !ok || weight < 1 || bbox.w*bbox.h < 0.01 {
		return f.smoothed
	}

	f.frameCount++
	return f.applyTarget(targetFromBBox(bbox, f.opts.MinZoom, f.opts.MaxZoom))
}

// UpdateFromFace runs the same math starting from an externally
// supplied, already-normalized face box, heuristically extended
// downward and sideways into an approximate body box.
func (f *Framer) UpdateFromFace(face core.CropRegion) core.CropRect {
	if !f.opts.Continuous && f.hasSnapped && f.frameCount > 30 {
		return f.smoothed
	}
	if face.Empty() {
		return f.smoothed
	}

	body := extendFaceToBody(face)
	f.frameCount++
	return f.applyTarget(targetFromBBox(body, f.opts.MinZoom, f.opts.MaxZoom))
}

type bbox struct {
	x0, y0, w, h     float32 // normalized [0,1]
	centerX, centerY float32 // normalized weighted centroid
}

// weightedBBox scans mask for pixels > 0.5, tracking min/max extent and
// a value-weighted centroid, all normalized to [0,1] by the mask's own
// dimensions (§4.E step 1).
func weightedBBox(mask *core.Mask) (bbox, float64, bool) {
	w, h := mask.Width(), mask.Height()
	if w == 0 || h == 0 {
		return bbox{}, 0, false
	}
	data := mask.Data()

	minX, minY := w, h
	maxX, maxY := 0, 0
	var sumX, sumY, sumW float64
	found := false

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			v := data[row+x]
			if v <= 0.5 {
				continue
			}
			found = true
			if x < minX {
				minX = x
			}
			if x+1 > maxX {
				maxX = x + 1
			}
			if y < minY {
				minY = y
			}
			if y+1 > maxY {
				maxY = y + 1
			}
			fv := float64(v)
			sumX += float64(x) * fv
			sumY += float64(y) * fv
			sumW += fv
		}
	}
	if !found || sumW == 0 {
		return bbox{}, 0, false
	}

	b := bbox{
		x0:      float32(minX) / float32(w),
		y0:      float32(minY) / float32(h),
		w:       float32(maxX-minX) / float32(w),
		h:       float32(maxY-minY) / float32(h),
		centerX: float32(sumX/sumW) / float32(w),
		centerY: float32(sumY/sumW) / float32(h),
	}
	return b, sumW, true
}

// extendFaceToBody applies a fixed heuristic (face box extended
// downward ~6x its height and ~1.6x its width) to approximate a
// standing/seated upper body from a face detection.
func extendFaceToBody(face core.CropRegion) bbox {
	cx := face.X + face.W/2
	bodyW := face.W * 1.6
	bodyH := face.H * 6
	return bbox{
		x0:      cx - bodyW/2,
		y0:      face.Y,
		w:       bodyW,
		h:       bodyH,
		centerX: cx,
		centerY: face.Y + bodyH*0.4,
	}
}

// targetFromBBox computes the target crop rect from a bbox per §4.E
// steps 3–5 (zoom, size, center, clamp into frame).
func targetFromBBox(b bbox, minZoom, maxZoom float32) core.CropRect {
	maxDim := b.w
	if b.h > maxDim {
		maxDim = b.h
	}
	if maxDim <= 0 {
		maxDim = 1
	}

	zoom := targetFill / maxDim
	zoom = clamp(zoom, minZoom, maxZoom)

	cropSize := 1 / zoom
	vertOffset := 0.55 + (1-maxDim)*0.03

	centerX := b.centerX
	centerY := b.centerY - cropSize*vertOffset

	x := clamp(centerX-cropSize/2, 0, 1-cropSize)
	y := clamp(centerY-cropSize/2, 0, 1-cropSize)

	return core.CropRect{X: x, Y: y, W: cropSize, H: cropSize, Zoom: zoom}
}

// applyTarget snaps on the first accepted candidate, otherwise blends
// with the configured EMA factor (§4.E step 6).
func (f *Framer) applyTarget(target core.CropRect) core.CropRect {
	if !f.hasSnapped {
		f.smoothed = target
		f.hasSnapped = true
		return f.smoothed
	}

	s := f.opts.Smoothing
	f.smoothed = core.CropRect{
		X:    f.smoothed.X*s + target.X*(1-s),
		Y:    f.smoothed.Y*s + target.Y*(1-s),
		W:    f.smoothed.W*s + target.W*(1-s),
		H:    f.smoothed.H*s + target.H*(1-s),
		Zoom: f.smoothed.Zoom*s + target.Zoom*(1-s),
	}
	return f.smoothed
}

func clamp(v, lo, hi float32) float32 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
