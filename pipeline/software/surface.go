// Package software implements the CPU shader pipeline backend (§4.A):
// a complete, directly testable implementation of all 10 per-frame
// stages, playing the same role in this pipeline as the teacher's own
// SoftwareBackend plays next to its (documented-stub) wgpu backend.
package software

// Surface is an RGBA8 output frame, row-major, 4 bytes/pixel. It
// implements core.Surface via Width/Height.
type Surface struct {
	width, height int
	pix           []uint8
}

// NewSurface allocates a zeroed RGBA surface.
func NewSurface(width, height int) *Surface {
	return &Surface{width: width, height: height, pix: make([]uint8, width*height*4)}
}

func (s *Surface) Width() int      { return s.width }
func (s *Surface) Height() int     { return s.height }
func (s *Surface) Pix() []uint8    { return s.pix }
func (s *Surface) Stride() int     { return s.width * 4 }

// At returns the RGBA quad at (x, y).
func (s *Surface) At(x, y int) (r, g, b, a uint8) {
	i := (y*s.width + x) * 4
	return s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3]
}

// Set writes an RGBA quad at (x, y).
func (s *Surface) Set(x, y int, r, g, b, a uint8) {
	i := (y*s.width + x) * 4
	s.pix[i], s.pix[i+1], s.pix[i+2], s.pix[i+3] = r, g, b, a
}
