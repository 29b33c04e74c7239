package software

import "github.com/gogpu/segmo/core"

// morphThreshold is the confidence level separating foreground from
// background for the purposes of binary erosion/dilation.
const morphThreshold = 0.5

// Morphology applies one dilation pass followed by one erosion pass (a
// close) over a 3x3 neighborhood, filling small holes punched in the
// silhouette by noisy model output without growing the outer boundary,
// per §4.B's fresh-mask pipeline order. Out-of-bounds neighbors read as
// background (0), matching the mask's own edge-padding invariant rather
// than wrapping.
func Morphology(dst, src *core.Mask) {
	w, h := src.Width(), src.Height()
	dilated := core.NewMask(w, h)
	dilate(dilated, src)
	erode(dst, dilated)
}

func erode(dst, src *core.Mask) {
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			min := float32(1)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := binarize(sampleOrZero(src, x+dx, y+dy, w, h))
					if v < min {
						min = v
					}
				}
			}
			dst.Set(x, y, min)
		}
	}
}

func dilate(dst, src *core.Mask) {
	w, h := src.Width(), src.Height()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			max := float32(0)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := sampleOrZero(src, x+dx, y+dy, w, h)
					if v > max {
						max = v
					}
				}
			}
			dst.Set(x, y, max)
		}
	}
}

func sampleOrZero(m *core.Mask, x, y, w, h int) float32 {
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0
	}
	return m.At(x, y)
}

func binarize(v float32) float32 {
	if v >= morphThreshold {
		return 1
	}
	return 0
}
