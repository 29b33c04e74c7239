package adapter

import "github.com/gogpu/segmo/core"

// scratch is the reusable RGB tile the adapter rasterizes the
// (optionally cropped) source frame into before invoking the producer,
// per §4.C: "a small canvas-like scratch surface of M×N used to
// downscale the (cropped) frame into the model's expected input".
type scratch struct {
	w, h int
	rgb  []uint8
}

func newScratch(w, h int) *scratch {
	return &scratch{w: w, h: h, rgb: make([]uint8, w*h*3)}
}

func (s *scratch) Width() int      { return s.w }
func (s *scratch) Height() int     { return s.h }
func (s *scratch) Pixels() []uint8 { return s.rgb }

// rasterize nearest-neighbor resizes the rectangle [sx0,sy0)-[sx1,sy1)
// of src (row-major RGB, srcW×srcH) into s, step 1 of segment().
func (s *scratch) rasterize(src []uint8, srcW, srcH, sx0, sy0, sx1, sy1 int) {
	rw, rh := sx1-sx0, sy1-sy0
	if rw <= 0 || rh <= 0 {
		for i := range s.rgb {
			s.rgb[i] = 0
		}
		return
	}
	for dy := 0; dy < s.h; dy++ {
		sy := sy0 + dy*rh/s.h
		if sy >= srcH {
			sy = srcH - 1
		}
		for dx := 0; dx < s.w; dx++ {
			sx := sx0 + dx*rw/s.w
			if sx >= srcW {
				sx = srcW - 1
			}
			si := (sy*srcW + sx) * 3
			di := (dy*s.w + dx) * 3
			s.rgb[di], s.rgb[di+1], s.rgb[di+2] = src[si], src[si+1], src[si+2]
		}
	}
}

var _ core.ScratchSurface = (*scratch)(nil)
