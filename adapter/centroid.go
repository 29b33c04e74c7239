package adapter

// centroidTracker holds the 3-band horizontal centroid history and EMA
// velocity state from §4.C step 6. The caller partitions the person
// bbox into three vertical bands (top, middle, bottom), computes each
// band's value-weighted horizontal centroid and one whole-bbox vertical
// centroid, and calls observe with the result; the tracker smooths the
// frame-to-frame deltas into a velocity estimate the processor later
// combines into a weighted shift (§4.G "accumulated shift").
type centroidTracker struct {
	seeded bool

	cx [3]float32
	cy float32

	vx [3]float32
	vy float32
}

const centroidEMAAlpha = 0.8

// observe records this frame's per-band horizontal centroids (cx) and
// whole-bbox vertical centroid (cy), both normalized to [0,1]. The
// first observation seeds history without computing a velocity (§8
// invariant 7); every subsequent one computes a raw delta and folds it
// into the EMA velocity with alpha=centroidEMAAlpha.
func (t *centroidTracker) observe(cx [3]float32, cy float32) {
	if !t.seeded {
		t.cx = cx
		t.cy = cy
		t.vx = [3]float32{}
		t.vy = 0
		t.seeded = true
		return
	}

	for i := 0; i < 3; i++ {
		raw := cx[i] - t.cx[i]
		t.vx[i] = centroidEMAAlpha*raw + (1-centroidEMAAlpha)*t.vx[i]
	}
	rawY := cy - t.cy
	t.vy = centroidEMAAlpha*rawY + (1-centroidEMAAlpha)*t.vy

	t.cx = cx
	t.cy = cy
}

// reset clears history and velocities (§8 invariant 7: after reset,
// vx=[0,0,0], vy=0, and the next observation seeds without a spike).
func (t *centroidTracker) reset() {
	*t = centroidTracker{}
}
