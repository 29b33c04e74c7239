package software

import "math"

// gaussianKernel1D returns a normalized 1D Gaussian kernel for the given
// radius, sized 2*ceil(3*sigma)+1, with sigma = radius/3 (the same
// radius-to-sigma relationship bild's blur.Gaussian uses), so the
// software backend's separable blur tracks the golden reference in
// blur_test.go within float rounding.
func gaussianKernel1D(radius float32) []float32 {
	sigma := float64(radius) / 3
	if sigma < 1e-6 {
		sigma = 1e-6
	}
	half := int(math.Ceil(3 * sigma))
	if half < 1 {
		half = 1
	}
	k := make([]float32, 2*half+1)
	var sum float32
	for i := -half; i <= half; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * sigma * sigma)))
		k[i+half] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur applies a separable Gaussian blur to an RGBA surface,
// per §4.A stage 6, and is reused unmodified as the Kind==BackgroundBlur
// background source (§4.A stage 7 composites over this blurred copy of
// the camera frame instead of an uploaded image).
func GaussianBlur(dst, src *Surface, radius float32) {
	if radius <= 0 {
		copy(dst.pix, src.pix)
		return
	}
	k := gaussianKernel1D(radius)
	half := len(k) / 2

	tmp := NewSurface(src.width, src.height)
	blurHorizontal(tmp, src, k, half)
	blurVertical(dst, tmp, k, half)
}

func blurHorizontal(dst, src *Surface, k []float32, half int) {
	w, h := src.width, src.height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float32
			for i, weight := range k {
				sx := clampi(x+i-half, w-1)
				sr, sg, sb, sa := src.At(sx, y)
				r += float32(sr) * weight
				g += float32(sg) * weight
				b += float32(sb) * weight
				a += float32(sa) * weight
			}
			dst.Set(x, y, clampu8(r), clampu8(g), clampu8(b), clampu8(a))
		}
	}
}

func blurVertical(dst, src *Surface, k []float32, half int) {
	w, h := src.width, src.height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b, a float32
			for i, weight := range k {
				sy := clampi(y+i-half, h-1)
				sr, sg, sb, sa := src.At(x, sy)
				r += float32(sr) * weight
				g += float32(sg) * weight
				b += float32(sb) * weight
				a += float32(sa) * weight
			}
			dst.Set(x, y, clampu8(r), clampu8(g), clampu8(b), clampu8(a))
		}
	}
}

func clampu8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
