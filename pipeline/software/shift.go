package software

import "github.com/gogpu/segmo/core"

// Shift translates src by a sub-pixel motion vector (dx, dy) using
// bilinear sampling, per §4.A stage 3. This compensates for the
// inference-to-display latency: the adapter's motion vector (§4.C step
// 6) predicts where the mask should have moved by the time it's
// displayed, and the pipeline shifts the stale mask toward that
// prediction rather than displaying it one frame behind.
func Shift(dst, src *core.Mask, dx, dy float32) {
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := float32(x) - dx
			sy := float32(y) - dy
			dst.Set(x, y, bilinearSample(src, sx, sy))
		}
	}
}

func bilinearSample(m *core.Mask, x, y float32) float32 {
	x0 := floorf(x)
	y0 := floorf(y)
	fx := x - float32(x0)
	fy := y - float32(y0)

	v00 := m.At(x0, y0)
	v10 := m.At(x0+1, y0)
	v01 := m.At(x0, y0+1)
	v11 := m.At(x0+1, y0+1)

	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}

func floorf(v float32) int {
	i := int(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return i
}
