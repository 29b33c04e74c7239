package software

import (
	"math"

	"github.com/gogpu/segmo/core"
)

// featherGradientStride is the texel stride used for the 8-neighbor
// gradient probe, per §4.A stage 5.
const featherGradientStride = 2

// featherGradientEarlyExit is the early-exit threshold below which the
// center pixel is emitted verbatim: the boundary is locally flat, so
// there is nothing to feather.
const featherGradientEarlyExit = 0.01

// featherSharpLo, featherSharpHi bound the smoothstep mixing the sharp
// (unblurred) and Gaussian-blurred mask by local gradient magnitude.
const featherSharpLo, featherSharpHi = 0.02, 0.15

// EdgeFeather softens the mask's foreground/background boundary, per
// §4.A stage 5. For each pixel, the max absolute difference to its 8
// neighbors at a 2-texel stride measures local gradient; a flat
// neighborhood (gradient < 0.01) is passed through untouched, and
// everywhere else the pixel is a fixed 5x5 Gaussian (sigma = the
// configured feather radius) vs. sharp mix weighted by that same
// gradient, so only genuine boundaries get feathered rather than the
// whole mask being softened. Samples past the mask border clamp to the
// nearest edge pixel (core.Mask.At).
func EdgeFeather(dst, src *core.Mask, radius float32) {
	w, h := src.Width(), src.Height()
	kernel := gaussianKernel5x5(radius)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := src.At(x, y)

			var gradient float32
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					v := src.At(x+dx*featherGradientStride, y+dy*featherGradientStride)
					if d := absf32(v - center); d > gradient {
						gradient = d
					}
				}
			}
			if gradient < featherGradientEarlyExit {
				dst.Set(x, y, center)
				continue
			}

			var blurred float32
			for dy := -2; dy <= 2; dy++ {
				wy := kernel[dy+2]
				for dx := -2; dx <= 2; dx++ {
					wx := kernel[dx+2]
					v := src.At(x+dx, y+dy)
					blurred += v * wx * wy
				}
			}
			mixT := smoothstep(featherSharpLo, featherSharpHi, gradient)
			dst.Set(x, y, mix(center, blurred, mixT))
		}
	}
}

// gaussianKernel5x5 returns a normalized 5-tap 1D Gaussian (sigma =
// radius), whose outer product with itself is the 5x5 kernel §4.A
// stage 5 specifies; separability keeps the two passes identical to
// one 2D convolution.
func gaussianKernel5x5(sigma float32) []float32 {
	s := float64(sigma)
	if s < 1e-6 {
		s = 1e-6
	}
	k := make([]float32, 5)
	var sum float32
	for i := -2; i <= 2; i++ {
		v := float32(math.Exp(-float64(i*i) / (2 * s * s)))
		k[i+2] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
