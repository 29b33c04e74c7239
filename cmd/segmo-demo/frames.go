package main

import (
	"context"
	"log/slog"
	"math"
	"time"

	segmo "github.com/gogpu/segmo"
	"github.com/gogpu/segmo/hostintegration/wsink"
)

// syntheticFrame is a stand-in camera frame: a tiled color-ramp
// background with a drifting solid "person" disc, just enough RGB structure for the
// software backend's bilateral upsample and feather stages to have
// something other than flat color to work against. Host integrations
// replace this with a real frame transport (§1 Non-goals: "camera/video
// capture APIs").
type syntheticFrame struct {
	w, h int
	t    int64
	rgb  []uint8
}

func newSyntheticFrame(w, h int, t int64) *syntheticFrame {
	f := &syntheticFrame{w: w, h: h, t: t, rgb: make([]uint8, w*h*3)}
	f.render()
	return f
}

func (f *syntheticFrame) Width() int         { return f.w }
func (f *syntheticFrame) Height() int        { return f.h }
func (f *syntheticFrame) TimestampMs() int64 { return f.t }
func (f *syntheticFrame) Pixels() []uint8    { return f.rgb }

func (f *syntheticFrame) render() {
	cx := f.w/2 + int(200*math.Sin(float64(f.t)/2000))
	cy := f.h / 2
	radius := f.h / 3

	for y := 0; y < f.h; y++ {
		for x := 0; x < f.w; x++ {
			i := (y*f.w + x) * 3
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy < radius*radius {
				f.rgb[i], f.rgb[i+1], f.rgb[i+2] = 200, 170, 150 // person-colored disc
			} else {
				f.rgb[i], f.rgb[i+1], f.rgb[i+2] = uint8(40+x%40), uint8(60+y%40), 90
			}
		}
	}
}

// runFrameLoop drives the Processor at a fixed synthetic frame rate
// until ctx is canceled, pushing every composited surface to the
// preview hub.
func runFrameLoop(ctx context.Context, proc *segmo.Processor, hub *wsink.Hub, width, height int, logger *slog.Logger) {
	const fps = 30
	ticker := time.NewTicker(time.Second / fps)
	defer ticker.Stop()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ts := now.Sub(start).Milliseconds()
			frame := newSyntheticFrame(width, height, ts)

			surface, err := proc.ProcessFrame(frame, ts)
			if err != nil {
				logger.Error("processor stopped", "error", err)
				return
			}
			if surface == nil {
				continue
			}
			if ps, ok := surface.(pixelSurface); ok {
				hub.PushSurface(ps)
			}
		}
	}
}

// pixelSurface mirrors wsink's own unexported interface so this package
// can type-assert a returned core.Surface without importing
// pipeline/software directly.
type pixelSurface interface {
	Width() int
	Height() int
	Pix() []uint8
}
