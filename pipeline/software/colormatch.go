package software

import "github.com/gogpu/segmo/core"

// ColorMatch nudges the recovered foreground's color balance toward the
// background image's mean color, blended at strength, per §4.A stage
// 10. This is only meaningful for Kind==BackgroundStill: an uploaded
// still photo's color temperature rarely matches the camera's, and a
// small match strength (≈0.2 default) keeps a composited subject from
// looking visibly pasted onto a mismatched backdrop.
func ColorMatch(dst *Surface, mask *core.Mask, backgroundMeanR, backgroundMeanG, backgroundMeanB float32, strength float32) {
	if strength <= 0 {
		return
	}
	w, h := mask.Width(), mask.Height()
	fgMeanR, fgMeanG, fgMeanB, weight := meanForeground(dst, mask, w, h)
	if weight <= 0 {
		return
	}

	dr := (backgroundMeanR - fgMeanR) * strength
	dg := (backgroundMeanG - fgMeanG) * strength
	db := (backgroundMeanB - fgMeanB) * strength

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := mask.At(x, y)
			if a <= 0.02 {
				continue
			}
			r, g, b, al := dst.At(x, y)
			shift := a // full shift strength at full foreground confidence
			dst.Set(x, y,
				clampu8(float32(r)+dr*shift),
				clampu8(float32(g)+dg*shift),
				clampu8(float32(b)+db*shift),
				al)
		}
	}
}

// BackgroundMean computes the mean RGB of an RGBA background buffer,
// for feeding ColorMatch's target color.
func BackgroundMean(background []uint8, w, h int) (r, g, b float32) {
	var sr, sg, sb float64
	n := w * h
	if n == 0 {
		return 0, 0, 0
	}
	for i := 0; i < n; i++ {
		sr += float64(background[i*4])
		sg += float64(background[i*4+1])
		sb += float64(background[i*4+2])
	}
	return float32(sr / float64(n)), float32(sg / float64(n)), float32(sb / float64(n))
}

func meanForeground(s *Surface, mask *core.Mask, w, h int) (r, g, b, weight float32) {
	var sr, sg, sb, sw float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := mask.At(x, y)
			if a <= 0.02 {
				continue
			}
			rr, gg, bb, _ := s.At(x, y)
			sr += float64(rr) * float64(a)
			sg += float64(gg) * float64(a)
			sb += float64(bb) * float64(a)
			sw += float64(a)
		}
	}
	if sw <= 0 {
		return 0, 0, 0, 0
	}
	return float32(sr / sw), float32(sg / sw), float32(sb / sw), float32(sw)
}
