// Package core holds the data-plane types shared across every segmo
// package — Mask, the frame/surface/producer interfaces, Capabilities,
// and the sentinel errors — so that pipeline, adapter, workeradapter,
// autoframe, quality, and diagnostics can depend on them without
// importing the root package (which in turn depends on all of them to
// assemble a Processor).
package core

import "image"

// Mask is a single-channel person-confidence buffer with values in
// [0, 1]. Two variants coexist per spec: a crop-space mask directly from
// the model at its native resolution, and a full-frame mask of the same
// M×N with the crop-space mask placed back into its ROI rectangle and
// zeros elsewhere. The GPU pipeline only ever consumes full-frame masks.
type Mask struct {
	width  int
	height int
	data   []float32
}

// NewMask creates a new mask with the given dimensions, initialized to
// all zero (no person).
func NewMask(width, height int) *Mask {
	return &Mask{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
}

// Bounds returns the mask dimensions as an image.Rectangle.
func (m *Mask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.width, m.height)
}

// Width returns the mask width.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height.
func (m *Mask) Height() int { return m.height }

// Data returns the raw row-major pixel buffer. Callers that mutate it
// directly are responsible for keeping values within [0, 1].
func (m *Mask) Data() []float32 { return m.data }

// At returns the mask value at (x, y), clamping out-of-bounds coordinates
// to the nearest edge pixel rather than returning zero, matching the
// GPU's clamp-to-edge sampling and the edge-padding invariant in §3.
func (m *Mask) At(x, y int) float32 {
	if m.width == 0 || m.height == 0 {
		return 0
	}
	if x < 0 {
		x = 0
	} else if x >= m.width {
		x = m.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= m.height {
		y = m.height - 1
	}
	return m.data[y*m.width+x]
}

// Set writes a single mask value. Out-of-bounds writes are silently
// ignored, matching Pixmap.SetPixel's bounds-check idiom.
func (m *Mask) Set(x, y int, v float32) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	m.data[y*m.width+x] = v
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	out := &Mask{width: m.width, height: m.height, data: make([]float32, len(m.data))}
	copy(out.data, m.data)
	return out
}

// Clear resets every value to zero in place.
func (m *Mask) Clear() {
	for i := range m.data {
		m.data[i] = 0
	}
}

// PadEdges duplicate-extends the outermost 4 rows and columns from the
// 5th-from-outside row/column, suppressing boundary artifacts under the
// bilateral and feather kernels' sampling (§3, invariant 2 of §8).
// EdgePad is the fixed pad width named in §3.
const EdgePad = 4

func (m *Mask) PadEdges() {
	w, h := m.width, m.height
	if w <= EdgePad*2 || h <= EdgePad*2 {
		return
	}
	for y := 0; y < h; y++ {
		src := m.data[y*w+EdgePad]
		for x := 0; x < EdgePad; x++ {
			m.data[y*w+x] = src
		}
		src = m.data[y*w+(w-1-EdgePad)]
		for x := w - EdgePad; x < w; x++ {
			m.data[y*w+x] = src
		}
	}
	for x := 0; x < w; x++ {
		src := m.data[EdgePad*w+x]
		for y := 0; y < EdgePad; y++ {
			m.data[y*w+x] = src
		}
		src = m.data[(h-1-EdgePad)*w+x]
		for y := h - EdgePad; y < h; y++ {
			m.data[y*w+x] = src
		}
	}
}

// PlaceROI copies a crop-space mask into a full-frame mask at the pixel
// rectangle [x0,x1)×[y0,y1), mapping each destination pixel back to a
// source pixel per §4.C step 4. The destination mask is not cleared by
// this call; callers must Clear() first if reusing a buffer.
func (full *Mask) PlaceROI(crop *Mask, x0, y0, x1, y1 int) {
	cw, ch := float64(crop.width), float64(crop.height)
	dw, dh := x1-x0, y1-y0
	if dw <= 0 || dh <= 0 {
		return
	}
	for dy := y0; dy < y1; dy++ {
		sy := int(float64(dy-y0) * ch / float64(dh))
		if sy >= crop.height {
			sy = crop.height - 1
		}
		for dx := x0; dx < x1; dx++ {
			sx := int(float64(dx-x0) * cw / float64(dw))
			if sx >= crop.width {
				sx = crop.width - 1
			}
			full.Set(dx, dy, crop.At(sx, sy))
		}
	}
}

// MotionMap computes |current - previous| element-wise into dst, which
// must have the same dimensions as both inputs. dst may not alias
// current or previous.
func MotionMap(dst, current, previous *Mask) {
	for i := range dst.data {
		d := current.data[i] - previous.data[i]
		if d < 0 {
			d = -d
		}
		dst.data[i] = d
	}
}
