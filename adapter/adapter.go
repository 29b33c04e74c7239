// Package adapter implements the in-thread mask producer adapter (§4.C):
// it rasterizes the (optionally cropped) source frame into a fixed-size
// scratch tile, invokes an external core.MaskProducer, extracts a
// person-confidence mask, back-maps it into full-frame space when a
// crop ROI is active, and tracks the bbox/centroid/motion state the
// auto-framer and processor read every frame.
package adapter

import (
	"math"
	"sync"

	"github.com/gogpu/segmo/core"
)

// Adapter owns the external model handle, the rasterization scratch
// tile, the crop-space and full-frame mask buffers (ping-ponged so the
// "previous full-frame mask" needed for the motion map is always the
// other half of a two-buffer pair instead of a fresh allocation), the
// reused motion buffer, the cached bbox, and the centroid/velocity
// tracker, per §4.C's ownership list and §5's reuse discipline.
type Adapter struct {
	mu sync.Mutex

	producer core.MaskProducer
	scratch  *scratch

	maskW, maskH int

	cropMask   *core.Mask // raw model output, crop-space, M×N
	fullA      *core.Mask // full-frame mask buffer A
	fullB      *core.Mask // full-frame mask buffer B
	curIsA     bool       // which of fullA/fullB is "current" after the last segment()
	motion     *core.Mask // reused |current-previous| buffer
	callCount  int

	bboxFound              bool
	bboxX0, bboxY0         int
	bboxX1, bboxY1         int

	centroid centroidTracker

	producerFailures int
}

// New constructs an Adapter whose scratch tile and mask buffers are
// maskWidth×maskHeight, the model producer's native resolution.
func New(producer core.MaskProducer, maskWidth, maskHeight int) *Adapter {
	return &Adapter{
		producer: producer,
		scratch:  newScratch(maskWidth, maskHeight),
		maskW:    maskWidth,
		maskH:    maskHeight,
		cropMask: core.NewMask(maskWidth, maskHeight),
		fullA:    core.NewMask(maskWidth, maskHeight),
		fullB:    core.NewMask(maskWidth, maskHeight),
		motion:   core.NewMask(maskWidth, maskHeight),
	}
}

func (a *Adapter) current() *core.Mask {
	if a.curIsA {
		return a.fullA
	}
	return a.fullB
}

func (a *Adapter) previous() *core.Mask {
	if a.curIsA {
		return a.fullB
	}
	return a.fullA
}

// Segment runs one inference cycle per §4.C's 7-step algorithm. crop is
// nil when no ROI is active. frameW/frameH are the source frame's full
// pixel dimensions (used to convert crop's normalized rect to pixels).
// A producer failure is absorbed per §7 ProducerInferenceFailure: the
// previously computed mask (possibly nil) is returned with a nil error.
// Only a frame the adapter cannot rasterize at all yields a non-nil
// error (§7 ResourceUploadFailure).
func (a *Adapter) Segment(frame core.Frame, timestampMs int64, crop *core.CropRegion, frameW, frameH int) (*core.Mask, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if frameW <= 0 || frameH <= 0 {
		return nil, core.ErrResourceUploadFailure
	}
	pf, ok := frame.(core.PixelFrame)
	if !ok {
		return nil, core.ErrResourceUploadFailure
	}

	// Step 1: rasterize the (optionally cropped) source into the scratch tile.
	if crop != nil && !crop.Empty() {
		sx0 := clampInt(int(crop.X*float32(frameW)), 0, frameW)
		sy0 := clampInt(int(crop.Y*float32(frameH)), 0, frameH)
		sx1 := clampInt(sx0+int(crop.W*float32(frameW)), sx0, frameW)
		sy1 := clampInt(sy0+int(crop.H*float32(frameH)), sy0, frameH)
		a.scratch.rasterize(pf.Pixels(), frameW, frameH, sx0, sy0, sx1, sy1)
	} else {
		a.scratch.rasterize(pf.Pixels(), frameW, frameH, 0, 0, frameW, frameH)
	}

	// Step 2: invoke the external producer.
	maps, err := a.producer.Produce(a.scratch, timestampMs)
	if err != nil {
		a.producerFailures++
		if a.callCount == 0 {
			return nil, nil
		}
		return a.current(), nil
	}
	defer func() {
		for _, m := range maps {
			m.Close()
		}
	}()

	// Step 3: extract the person-confidence channel into cropMask.
	extractPersonChannel(a.cropMask, maps)

	// Steps 4/5: place into the next full-frame buffer.
	next := a.previous() // the buffer not currently "current" is free to reuse
	if crop != nil && !crop.Empty() {
		next.Clear()
		x0 := clampInt(int(floor32(crop.X*float32(a.maskW))), 0, a.maskW)
		y0 := clampInt(int(floor32(crop.Y*float32(a.maskH))), 0, a.maskH)
		x1 := clampInt(int(ceil32((crop.X+crop.W)*float32(a.maskW))), 0, a.maskW)
		y1 := clampInt(int(ceil32((crop.Y+crop.H)*float32(a.maskH))), 0, a.maskH)
		next.PlaceROI(a.cropMask, x0, y0, x1, y1)
		a.scanBBox(next, x0, y0, x1, y1)
	} else {
		copy(next.Data(), a.cropMask.Data())
		a.scanBBox(next, 0, 0, a.maskW, a.maskH)
	}

	// Step 6: update centroids from the just-found bbox.
	if a.bboxFound {
		a.updateCentroids(next)
	}

	// Step 7: motion map, only once a true previous frame exists.
	if a.callCount > 0 {
		core.MotionMap(a.motion, next, a.current())
	}

	a.curIsA = !a.curIsA
	a.callCount++
	return next, nil
}

// scanBBox scans the pixel rectangle [x0,x1)×[y0,y1) of mask for values
// > 0.5 and caches the running min/max, per §4.C step 4/5.
func (a *Adapter) scanBBox(mask *core.Mask, x0, y0, x1, y1 int) {
	found := false
	minX, minY := x1, y1
	maxX, maxY := x0, y0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if mask.At(x, y) > 0.5 {
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
			}
		}
	}
	a.bboxFound = found
	if found {
		a.bboxX0, a.bboxY0, a.bboxX1, a.bboxY1 = minX, minY, maxX, maxY
	}
}

// updateCentroids partitions the cached bbox into three vertical bands
// and computes each band's value-weighted horizontal centroid plus one
// whole-bbox value-weighted vertical centroid (§4.C step 6), then feeds
// the result to the EMA velocity tracker.
func (a *Adapter) updateCentroids(mask *core.Mask) {
	bandH := (a.bboxY1 - a.bboxY0) / 3
	if bandH < 1 {
		bandH = 1
	}

	var sumX, sumW [3]float64
	var sumY, totalW float64
	for y := a.bboxY0; y < a.bboxY1; y++ {
		band := (y - a.bboxY0) / bandH
		if band > 2 {
			band = 2
		}
		for x := a.bboxX0; x < a.bboxX1; x++ {
			v := float64(mask.At(x, y))
			if v <= 0.5 {
				continue
			}
			sumX[band] += float64(x) * v
			sumW[band] += v
			sumY += float64(y) * v
			totalW += v
		}
	}

	var cx [3]float32
	for i := 0; i < 3; i++ {
		if sumW[i] > 0 {
			cx[i] = float32(sumX[i]/sumW[i]) / float32(a.maskW)
		} else {
			// Empty band: fall back to the overall bbox horizontal midpoint.
			cx[i] = float32(a.bboxX0+a.bboxX1) / 2 / float32(a.maskW)
		}
	}
	var cy float32
	if totalW > 0 {
		cy = float32(sumY/totalW) / float32(a.maskH)
	}

	a.centroid.observe(cx, cy)
}

// GetPersonBBox returns the cached bbox, normalized and padded
// symmetrically on each side, clamped into [0,1]². Returns nil if no
// person was found (fewer than one pixel above 0.5), per §4.C.
func (a *Adapter) GetPersonBBox(padding float32) *core.CropRegion {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.bboxFound {
		return nil
	}
	x0 := float32(a.bboxX0)/float32(a.maskW) - padding
	y0 := float32(a.bboxY0)/float32(a.maskH) - padding
	x1 := float32(a.bboxX1)/float32(a.maskW) + padding
	y1 := float32(a.bboxY1)/float32(a.maskH) + padding
	x0, y0 = clampF(x0, 0, 1), clampF(y0, 0, 1)
	x1, y1 = clampF(x1, 0, 1), clampF(y1, 0, 1)
	if x1 <= x0 || y1 <= y0 {
		return nil
	}
	return &core.CropRegion{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// GetMaskMotionVector returns the current 3-band EMA velocity estimate.
func (a *Adapter) GetMaskMotionVector() core.MotionVector {
	a.mu.Lock()
	defer a.mu.Unlock()
	return core.MotionVector{Vx: a.centroid.vx, Vy: a.centroid.vy}
}

// GetMotionMap returns the reused motion buffer, or nil before the
// second Segment call (§4.C).
func (a *Adapter) GetMotionMap() *core.Mask {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.callCount < 2 {
		return nil
	}
	return a.motion
}

// Reset clears centroid history and velocities (§8 invariant 7).
func (a *Adapter) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.centroid.reset()
}

// ProducerFailures reports the running count of absorbed producer
// errors, for diagnostics' maskEmptyCount-style accounting.
func (a *Adapter) ProducerFailures() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.producerFailures
}

// extractPersonChannel fills dst with the person-confidence channel per
// §4.C step 3 / §6: class-count >= 3 is multiclass (person = 1 - the
// background channel, maps[0]); class-count <= 2 uses the last channel
// directly as person-confidence.
func extractPersonChannel(dst *core.Mask, maps []core.ConfidenceMap) {
	if len(maps) == 0 {
		dst.Clear()
		return
	}
	data := dst.Data()
	switch core.ModelClasses(len(maps)) {
	case core.Multiclass:
		bg := maps[0].AsFloatArray()
		for i := range data {
			data[i] = 1 - bg[i]
		}
	default:
		person := maps[len(maps)-1].AsFloatArray()
		copy(data, person)
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampF(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floor32(v float32) float32 { return float32(math.Floor(float64(v))) }
func ceil32(v float32) float32  { return float32(math.Ceil(float64(v))) }
