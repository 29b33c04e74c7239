package software

import (
	"math"

	"github.com/gogpu/segmo/core"
)

// BilateralUpsample projects a mask-space confidence mask (native model
// resolution M×N) into full-frame resolution W×H, per §4.A stage 4,
// weighting each full-frame pixel's neighborhood in mask space by both
// spatial distance and color similarity against guideLow — the camera
// frame downsampled to the same M×N the model ran at. Joint bilateral
// upsampling this way keeps the mask's silhouette edges aligned to the
// true subject edges in the full-frame image, rather than the blurry
// edges a plain bilinear resize would produce.
func BilateralUpsample(dst, maskSrc *core.Mask, guideLow []uint8, sigmaSpatial, sigmaRange float32, radius int) {
	mw, mh := maskSrc.Width(), maskSrc.Height()
	w, h := dst.Width(), dst.Height()
	if mw == 0 || mh == 0 || w == 0 || h == 0 {
		return
	}

	invSpatial2 := 1 / (2 * sigmaSpatial * sigmaSpatial)
	invRange2 := 1 / (2 * sigmaRange * sigmaRange)

	for y := 0; y < h; y++ {
		my := float32(y) * float32(mh) / float32(h)
		for x := 0; x < w; x++ {
			mx := float32(x) * float32(mw) / float32(w)
			cx, cy := clampi(int(mx), mw-1), clampi(int(my), mh-1)
			cr, cg, cb := guideAt(guideLow, mw, mh, cx, cy)

			var sum, weightSum float32
			for dy := -radius; dy <= radius; dy++ {
				ny := clampi(cy+dy, mh-1)
				for dx := -radius; dx <= radius; dx++ {
					nx := clampi(cx+dx, mw-1)
					spatialDist2 := float32(dx*dx + dy*dy)
					nr, ng, nb := guideAt(guideLow, mw, mh, nx, ny)
					rangeDist2 := colorDist2(cr, cg, cb, nr, ng, nb)
					weight := expf(-spatialDist2*invSpatial2 - rangeDist2*invRange2)
					sum += weight * maskSrc.At(nx, ny)
					weightSum += weight
				}
			}
			if weightSum > 0 {
				dst.Set(x, y, sum/weightSum)
			} else {
				dst.Set(x, y, maskSrc.At(cx, cy))
			}
		}
	}
}

func guideAt(guide []uint8, w, h, x, y int) (r, g, b float32) {
	x = clampi(x, w-1)
	y = clampi(y, h-1)
	i := (y*w + x) * 3
	if i+2 >= len(guide) {
		return 0, 0, 0
	}
	return float32(guide[i]), float32(guide[i+1]), float32(guide[i+2])
}

// colorDist2 is the squared *perceptual* color distance §4.A stage 4
// mandates, for two 0-255-scale colors: luminance difference plus a
// 3x-weighted chroma difference, so two near-white pixels of slightly
// different tint (a skin tone against a pale wall) register as
// farther apart than their small Euclidean RGB distance alone would
// suggest.
func colorDist2(r1, g1, b1, r2, g2, b2 float32) float32 {
	return perceptualDist2((r1-r2)/255, (g1-g2)/255, (b1-b2)/255)
}

// perceptualDist2 is the squared perceptual distance for an already-
// computed 0-1-scale RGB delta: lumDiff² + 3·|chromaDiff|², shared by
// the bilateral upsample's range weight and the compositor's
// color-separation gate.
func perceptualDist2(dr, dg, db float32) float32 {
	lumDiff := 0.299*dr + 0.587*dg + 0.114*db
	chromaR, chromaG, chromaB := dr-lumDiff, dg-lumDiff, db-lumDiff
	return lumDiff*lumDiff + 3*(chromaR*chromaR+chromaG*chromaG+chromaB*chromaB)
}

func clampi(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func expf(v float32) float32 {
	return float32(math.Exp(float64(v)))
}
