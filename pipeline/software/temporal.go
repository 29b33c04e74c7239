package software

import "github.com/gogpu/segmo/core"

// temporalSoftness is the half-width of the raw-mask soft threshold
// around 0.5, per §4.A stage 1's documented default.
const temporalSoftness = 0.25

// motionRaiseLo, motionRaiseHi bound the smoothstep that raises the
// appear/disappear rates toward their motion-compensated ceilings when
// a motion map is available (§4.A stage 1).
const motionRaiseLo, motionRaiseHi = 0.03, 0.2

// motionAppearRate, motionDisappearRate are the rates a pixel's
// appear/disappear speed is raised toward as motion increases, letting
// the mask track a fast-moving subject without the usual lag.
const motionAppearRate, motionDisappearRate = 0.98, 0.95

// TemporalSmooth blends current into previous in place per §4.A stage
// 1. The raw mask is first soft-thresholded around 0.5±softness, then
// blended against previous at an asymmetric exponential rate: appear
// governs a pixel trending toward "person", disappear one trending
// toward "background". When motionMap is non-nil (a true previous
// frame exists) both rates are raised toward their motion ceilings in
// proportion to per-pixel motion, so a fast-moving subject's mask
// catches up without the flicker suppression re-introducing lag.
// first forces α=1 — the soft-thresholded raw mask passes through
// unblended — on the pipeline's very first dispatch (invariant 8): a
// person already in frame must not fade in from zero.
func TemporalSmooth(dst, current, previous *core.Mask, motionMap *core.Mask, appearRate, disappearRate float32, first bool) {
	cd, pd, dd := current.Data(), previous.Data(), dst.Data()
	var md []float32
	if motionMap != nil {
		md = motionMap.Data()
	}
	for i := range dd {
		c := smoothstep(0.5-temporalSoftness, 0.5+temporalSoftness, cd[i])
		if first {
			dd[i] = c
			continue
		}
		p := pd[i]
		appear, disappear := appearRate, disappearRate
		if md != nil {
			raise := smoothstep(motionRaiseLo, motionRaiseHi, md[i])
			appear = mix(appear, motionAppearRate, raise)
			disappear = mix(disappear, motionDisappearRate, raise)
		}
		alpha := mix(disappear, appear, step(p, c))
		dd[i] = mix(p, c, alpha)
	}
}
