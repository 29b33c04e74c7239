package core

// CropRegion is a normalized [0,1]² rectangle, the adapter's padded
// person bounding box (§4.C getPersonBBox).
type CropRegion struct {
	X, Y, W, H float32
}

// Empty reports whether the region has no area (no person found).
func (r CropRegion) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// CropRect is the auto-framer's smoothed crop/zoom target (§4.E).
// Zoom <= 1.02 is treated by the processor as "no crop" per §6.
type CropRect struct {
	X, Y, W, H, Zoom float32
}
