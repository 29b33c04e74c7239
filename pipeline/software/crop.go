package software

// Crop resizes the rectangle [x0,y0,x1,y1) of src to fill dst entirely,
// via nearest-neighbor sampling, per §4.A stage 9 ("crop"): the
// auto-framer's target rectangle is applied as the final output
// transform, after compositing, so every upstream stage keeps operating
// in full source-frame coordinates.
func Crop(dst, src *Surface, x0, y0, x1, y1 int) {
	cw, ch := x1-x0, y1-y0
	if cw <= 0 || ch <= 0 {
		return
	}
	dw, dh := dst.width, dst.height
	for dy := 0; dy < dh; dy++ {
		sy := y0 + dy*ch/dh
		for dx := 0; dx < dw; dx++ {
			sx := x0 + dx*cw/dw
			sx = clampi(sx, src.width-1)
			sy2 := clampi(sy, src.height-1)
			r, g, b, a := src.At(sx, sy2)
			dst.Set(dx, dy, r, g, b, a)
		}
	}
}
