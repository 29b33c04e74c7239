package software

import (
	"sync"

	"github.com/gogpu/segmo/core"
	"github.com/gogpu/segmo/pipeline"
	"github.com/gogpu/segmo/quality"
)

func init() {
	pipeline.Register(pipeline.BackendSoftware, func() pipeline.Backend {
		return &Backend{}
	})
}

// Backend is the CPU implementation of the shader pipeline (§4.A),
// registered under pipeline.BackendSoftware. It is the Processor's
// default when no GPU-accelerated backend is available, exactly as the
// teacher's SoftwareBackend is registered as the universal fallback
// next to its own stub-dispatch wgpu backend.
type Backend struct {
	mu sync.Mutex

	fb     pipeline.FramebufferSet
	caps   core.Capabilities
	params pipeline.Params

	cropX0, cropY0, cropX1, cropY1 int

	prevMaskSpace *core.Mask
	firstFrame    bool
	destroyed     bool
}

func (b *Backend) Name() string { return pipeline.BackendSoftware }

func (b *Backend) Init(fb pipeline.FramebufferSet, caps core.Capabilities) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !caps.HardRequirementsMet() {
		return core.ErrCapabilityMissing
	}
	if fb.OutWidth <= 0 || fb.OutHeight <= 0 || fb.MaskWidth <= 0 || fb.MaskHeight <= 0 {
		return core.ErrInvalidDimensions
	}

	b.fb = fb
	b.caps = caps
	b.cropX0, b.cropY0 = 0, 0
	b.cropX1, b.cropY1 = fb.OutWidth, fb.OutHeight
	b.prevMaskSpace = core.NewMask(fb.MaskWidth, fb.MaskHeight)
	b.firstFrame = true
	b.destroyed = false
	return nil
}

func (b *Backend) UpdateOptions(params pipeline.Params) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params = params
}

func (b *Backend) SetCropRect(x0, y0, x1, y1 int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cropX0, b.cropY0, b.cropX1, b.cropY1 = x0, y0, x1, y1
}

func (b *Backend) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyed = true
	b.prevMaskSpace = nil
}

func (b *Backend) Process(frame core.Frame, mask *core.Mask, params pipeline.Params) (core.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return nil, core.ErrClosed
	}
	b.params = params
	return b.renderLocked(frame, mask)
}

func (b *Backend) ProcessInterpolated(frame core.Frame, previousMask, currentMask *core.Mask, alpha float32, params pipeline.Params) (core.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.destroyed {
		return nil, core.ErrClosed
	}
	b.params = params

	blended := core.NewMask(currentMask.Width(), currentMask.Height())
	lerpMasks(blended, previousMask, currentMask, alpha)
	return b.renderLocked(frame, blended)
}

func lerpMasks(dst, a, b *core.Mask, alpha float32) {
	ad, bd, dd := a.Data(), b.Data(), dst.Data()
	for i := range dd {
		dd[i] = ad[i] + (bd[i]-ad[i])*alpha
	}
}

// renderLocked runs all 10 stages in order (§4.A) and returns the
// composited output. Caller must hold b.mu.
func (b *Backend) renderLocked(frame core.Frame, maskSpace *core.Mask) (core.Surface, error) {
	pf, ok := frame.(core.PixelFrame)
	if !ok {
		return nil, core.ErrResourceUploadFailure
	}
	w, h := frame.Width(), frame.Height()
	if w <= 0 || h <= 0 {
		return nil, core.ErrInvalidDimensions
	}
	frameRGB := pf.Pixels()
	if len(frameRGB) < w*h*3 {
		return nil, core.ErrResourceUploadFailure
	}

	tier := b.params.Tier
	if b.prevMaskSpace == nil || b.prevMaskSpace.Width() != maskSpace.Width() || b.prevMaskSpace.Height() != maskSpace.Height() {
		b.prevMaskSpace = core.NewMask(maskSpace.Width(), maskSpace.Height())
	}

	// Stage 1: temporal smoothing (mask-space). The very first dispatch
	// forces alpha=1 (invariant 8) so a person already in frame doesn't
	// fade in from zero.
	smoothed := core.NewMask(maskSpace.Width(), maskSpace.Height())
	TemporalSmooth(smoothed, maskSpace, b.prevMaskSpace, b.params.MotionMap, tier.AppearRate, tier.DisappearRate, b.firstFrame)
	b.firstFrame = false
	b.prevMaskSpace = smoothed.Clone()

	// Stage 2: morphology.
	morphed := smoothed
	if tier.Morphology {
		morphed = core.NewMask(maskSpace.Width(), maskSpace.Height())
		Morphology(morphed, smoothed)
	}

	// Stage 3: shift (latency compensation).
	shifted := morphed
	if b.params.MotionDX != 0 || b.params.MotionDY != 0 {
		shifted = core.NewMask(maskSpace.Width(), maskSpace.Height())
		Shift(shifted, morphed, b.params.MotionDX, b.params.MotionDY)
	}
	shifted.PadEdges()

	// Stage 4: bilateral upsample to full-frame resolution.
	fullMask := core.NewMask(w, h)
	guideLow := downsampleRGB(frameRGB, w, h, maskSpace.Width(), maskSpace.Height())
	BilateralUpsample(fullMask, shifted, guideLow, 3, tier.RangeSigma, 2)

	// Stage 5: edge feather.
	feathered := core.NewMask(w, h)
	EdgeFeather(feathered, fullMask, tier.FeatherRadius)

	// Background buffer (feeds stages 7-10).
	background, bgMeanR, bgMeanG, bgMeanB := b.buildBackground(frameRGB, w, h, tier)

	// Stage 7: composite (closed-form alpha matting + foreground
	// recovery).
	out := NewSurface(w, h)
	Composite(out, frameRGB, background, feathered)

	// Stage 8 (light wrap).
	if tier.LightWrap && b.params.Background.Kind != core.BackgroundNone {
		blurredBG := NewSurface(w, h)
		copy(blurredBG.pix, rgbToRGBA(background, w, h))
		blurredCopy := NewSurface(w, h)
		GaussianBlur(blurredCopy, blurredBG, 8)
		LightWrap(out, rgbaToRGB(blurredCopy.pix, w, h), feathered, 0.35)
	}

	// Stage 10: color match (Still background only).
	if b.params.Background.Kind == core.BackgroundStill && b.params.Background.MatchStrength > 0 {
		ColorMatch(out, feathered, bgMeanR, bgMeanG, bgMeanB, b.params.Background.MatchStrength)
	}

	// Final: crop/zoom to the auto-framer's target rectangle.
	if b.cropX0 != 0 || b.cropY0 != 0 || b.cropX1 != w || b.cropY1 != h {
		cropped := NewSurface(w, h)
		Crop(cropped, out, b.cropX0, b.cropY0, b.cropX1, b.cropY1)
		return cropped, nil
	}
	return out, nil
}

// buildBackground materializes the background buffer (row-major RGB,
// full-frame W×H) for the current Background mode, plus its mean color
// for ColorMatch. Grounded on §4.A stage 6 ("background generation"):
// Blur reuses the separable GaussianBlur kernel against the source
// frame itself, Still resizes the uploaded image via nearest-neighbor,
// Color fills a solid buffer, and None returns the frame unchanged
// (composite degenerates to a no-op matte in that case).
func (b *Backend) buildBackground(frameRGB []uint8, w, h int, tier quality.Tier) ([]uint8, float32, float32, float32) {
	mode := b.params.Background
	switch mode.Kind {
	case core.BackgroundBlur:
		src := NewSurface(w, h)
		copy(src.pix, rgbToRGBA(frameRGB, w, h))
		dst := NewSurface(w, h)
		radius := float32(tier.BlurRadius)
		if mode.BlurRadius > 0 {
			radius = float32(mode.BlurRadius)
		}
		GaussianBlur(dst, src, radius)
		rgb := rgbaToRGB(dst.pix, w, h)
		r, g, bl := BackgroundMean(dst.pix, w, h)
		return rgb, r, g, bl

	case core.BackgroundStill:
		if mode.Image == nil {
			return frameRGB, 0, 0, 0
		}
		iw, ih := mode.Image.Width(), mode.Image.Height()
		srcRGBA := mode.Image.RGBA()
		rgb := make([]uint8, w*h*3)
		var sr, sg, sb float64
		for y := 0; y < h; y++ {
			sy := y * ih / h
			for x := 0; x < w; x++ {
				sx := x * iw / w
				si := (sy*iw + sx) * 4
				di := (y*w + x) * 3
				rgb[di], rgb[di+1], rgb[di+2] = srcRGBA[si], srcRGBA[si+1], srcRGBA[si+2]
				sr += float64(srcRGBA[si])
				sg += float64(srcRGBA[si+1])
				sb += float64(srcRGBA[si+2])
			}
		}
		n := float64(w * h)
		if n == 0 {
			return rgb, 0, 0, 0
		}
		return rgb, float32(sr / n), float32(sg / n), float32(sb / n)

	case core.BackgroundColor:
		rgb := make([]uint8, w*h*3)
		cr := uint8(mode.Color >> 16)
		cg := uint8(mode.Color >> 8)
		cb := uint8(mode.Color)
		for i := 0; i < w*h; i++ {
			rgb[i*3], rgb[i*3+1], rgb[i*3+2] = cr, cg, cb
		}
		return rgb, float32(cr), float32(cg), float32(cb)

	default: // BackgroundNone
		return frameRGB, 0, 0, 0
	}
}

// downsampleRGB nearest-neighbor resamples a row-major RGB buffer from
// srcW×srcH down to dstW×dstH, feeding BilateralUpsample's guide image.
func downsampleRGB(src []uint8, srcW, srcH, dstW, dstH int) []uint8 {
	out := make([]uint8, dstW*dstH*3)
	for y := 0; y < dstH; y++ {
		sy := y * srcH / dstH
		for x := 0; x < dstW; x++ {
			sx := x * srcW / dstW
			si := (sy*srcW + sx) * 3
			di := (y*dstW + x) * 3
			out[di], out[di+1], out[di+2] = src[si], src[si+1], src[si+2]
		}
	}
	return out
}

func rgbToRGBA(src []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h*4)
	for i := 0; i < w*h; i++ {
		out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = src[i*3], src[i*3+1], src[i*3+2], 255
	}
	return out
}

func rgbaToRGB(src []uint8, w, h int) []uint8 {
	out := make([]uint8, w*h*3)
	for i := 0; i < w*h; i++ {
		out[i*3], out[i*3+1], out[i*3+2] = src[i*4], src[i*4+1], src[i*4+2]
	}
	return out
}
