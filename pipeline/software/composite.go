package software

import (
	"math"

	"github.com/gogpu/segmo/core"
)

// compositeEdgeLo, compositeEdgeHi bound the edgeStrength smoothstep
// that sharpens the hardening thresholds near high-contrast camera
// edges (§4.A stage 7).
const compositeEdgeLo, compositeEdgeHi = 0.001, 0.02

// compositeZoneLo, compositeZoneHi are the transition-zone bounds
// (hardened mask) within which the cross-kernel matte estimate runs.
const compositeZoneLo, compositeZoneHi = 0.02, 0.98

// compositeMinAccWeight is the minimum accumulator weight (either side)
// required before the cross-kernel's F/B estimate is trusted.
const compositeMinAccWeight = 0.01

// compositeCrossOffsets are the per-axis sample offsets of the 13-
// sample cross kernel (center counted once), at a 4-texel stride.
var compositeCrossOffsets = [...]int{-3, -2, -1, 0, 1, 2, 3}

const compositeCrossStride = 4

// Composite blends the frame's foreground over background using mask
// as the alpha channel, per §4.A stage 7 — the core's most intricate
// shader. rawMask is the feathered mask (already upsampled to frameRGB
// and background's full W×H). The per-pixel algorithm:
//
//  1. Harden rawMask with edge-adaptive thresholds derived from the
//     camera's own local luminance gradient, so silhouette edges near
//     busy, high-contrast backdrops get a sharper falloff than edges
//     over flat ones.
//  2. Emit the default mix(newBg, I, mask) as a baseline.
//  3. In the transition zone, sample a 13-point cross kernel to
//     estimate local foreground/background colors F and B, solve the
//     closed-form alpha matte from them, recover the decontaminated
//     foreground color, and blend the refined result in proportional
//     to a color-separation-gated blend factor beta.
func Composite(dst *Surface, frameRGB, background []uint8, rawMask *core.Mask) {
	w, h := rawMask.Width(), rawMask.Height()
	lum := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := frameAt(frameRGB, w, h, x, y)
			lum[y*w+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			raw := rawMask.At(x, y)
			ir, ig, ib := frameAt(frameRGB, w, h, x, y)
			br, bg, bb := frameAt(background, w, h, x, y)

			dx := lumAt(lum, w, h, x+1, y) - lumAt(lum, w, h, x-1, y)
			dy := lumAt(lum, w, h, x, y+1) - lumAt(lum, w, h, x, y-1)
			edgeStrength := dx*dx + dy*dy
			sharpness := smoothstep(compositeEdgeLo, compositeEdgeHi, edgeStrength)
			lo := mix(0.15, 0.35, sharpness)
			hi := mix(0.85, 0.65, sharpness)
			mask := smoothstep(lo, hi, raw)

			outR, outG, outB := mix(br, ir, mask), mix(bg, ig, mask), mix(bb, ib, mask)

			if mask >= compositeZoneLo && mask <= compositeZoneHi {
				fr, fgc, fb, fgw, bgr, bgg, bgb, bgw := crossKernelAccumulate(rawMask, frameRGB, w, h, x, y)
				if fgw >= compositeMinAccWeight && bgw >= compositeMinAccWeight {
					fR, fG, fB := fr/fgw, fgc/fgw, fb/fgw
					bR, bG, bB := bgr/bgw, bgg/bgw, bgb/bgw

					fbR, fbG, fbB := fR-bR, fG-bG, fB-bB
					ibR, ibG, ibB := ir-bR, ig-bG, ib-bB
					denom := fbR*fbR + fbG*fbG + fbB*fbB
					if denom < 0.01 {
						denom = 0.01
					}
					alphaMatte := clamp01((ibR*fbR + ibG*fbG + ibB*fbB) / denom)

					perceptualDist := sqrtf32(perceptualDist2(fbR, fbG, fbB))
					gate := smoothstep(0.02, 0.08, perceptualDist)

					beta := smoothstep(0.02, 0.15, raw) * (1 - smoothstep(0.9, 1.0, raw)) * gate
					if beta > 0 {
						recR := clamp01(ir + (br-bR)*(1-alphaMatte))
						recG := clamp01(ig + (bg-bG)*(1-alphaMatte))
						recB := clamp01(ib + (bb-bB)*(1-alphaMatte))

						alphaFinal := mix(mask, alphaMatte, 0.8*beta)
						refinedR := mix(br, ir, alphaFinal)
						refinedG := mix(bg, ig, alphaFinal)
						refinedB := mix(bb, ib, alphaFinal)

						outR = mix(refinedR, recR, beta)
						outG = mix(refinedG, recG, beta)
						outB = mix(refinedB, recB, beta)
					}
				}
			}

			dst.Set(x, y, clampu8(outR*255), clampu8(outG*255), clampu8(outB*255), 255)
		}
	}
}

// crossKernelAccumulate samples the 13-point cross kernel (§4.A stage
// 7 transition zone) centered at (cx, cy) and returns the foreground
// and background color accumulators (each as premultiplied-by-weight
// r,g,b sums) and their total weights.
func crossKernelAccumulate(rawMask *core.Mask, frameRGB []uint8, w, h, cx, cy int) (fr, fg, fb, fgw, br, bg, bb, bgw float32) {
	visit := func(x, y, off int) {
		m := rawMask.At(clampi(x, w-1), clampi(y, h-1))
		r, g, b := frameAt(frameRGB, w, h, clampi(x, w-1), clampi(y, h-1))
		proximity := 1 / (1 + absf32(float32(off)))

		fw := smoothstep(0.6, 0.9, m) * proximity
		fr += fw * r
		fg += fw * g
		fb += fw * b
		fgw += fw

		bw := smoothstep(0.4, 0.1, m) * proximity
		br += bw * r
		bg += bw * g
		bb += bw * b
		bgw += bw
	}

	visit(cx, cy, 0)
	for _, off := range compositeCrossOffsets {
		if off == 0 {
			continue
		}
		visit(cx+off*compositeCrossStride, cy, off)
		visit(cx, cy+off*compositeCrossStride, off)
	}
	return
}

// frameAt reads an RGB triple at (x, y) from a row-major, 3
// bytes/pixel buffer, normalized to [0, 1], clamping out-of-range
// coordinates to the edge.
func frameAt(buf []uint8, w, h, x, y int) (r, g, b float32) {
	x, y = clampi(x, w-1), clampi(y, h-1)
	i := (y*w + x) * 3
	if i+2 >= len(buf) {
		return 0, 0, 0
	}
	return float32(buf[i]) / 255, float32(buf[i+1]) / 255, float32(buf[i+2]) / 255
}

func lumAt(lum []float32, w, h, x, y int) float32 {
	x, y = clampi(x, w-1), clampi(y, h-1)
	return lum[y*w+x]
}

func sqrtf32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// LightWrap blends a softened background color into the foreground's
// edge band, proportional to strength, per §4.A stage 8. This makes a
// brightly lit background subtly "wrap" around the subject's silhouette
// instead of a hard-lit cutout seam. The band weight is a*(1-a/0.6) for
// mask alpha a below 0.6 (peak 0.15 at a=0.3) and zero for a >= 0.6, so
// only the low-alpha outer side of the edge is touched.
// blurredBackground must be the same W×H as dst and mask, already blurred
// (reusing GaussianBlur's output is expected).
func LightWrap(dst *Surface, blurredBackground []uint8, mask *core.Mask, strength float32) {
	if strength <= 0 {
		return
	}
	w, h := mask.Width(), mask.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := mask.At(x, y)
			// Edge weight is zero at alpha 0 and for alpha >= 0.6 and
			// peaks at alpha 0.3, so the wrap only touches the soft outer
			// edge rather than washing out the whole subject.
			edgeWeight := a * (1 - minf(a, 0.6)/0.6)
			if edgeWeight <= 0 {
				continue
			}
			blend := edgeWeight * strength
			i := (y*w + x) * 3
			r, g, b, _ := dst.At(x, y)
			br, bg, bb := float32(blurredBackground[i]), float32(blurredBackground[i+1]), float32(blurredBackground[i+2])
			nr := float32(r)*(1-blend) + br*blend
			ng := float32(g)*(1-blend) + bg*blend
			nb := float32(b)*(1-blend) + bb*blend
			dst.Set(x, y, clampu8(nr), clampu8(ng), clampu8(nb), 255)
		}
	}
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
