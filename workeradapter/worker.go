// Package workeradapter runs the mask producer adapter on a dedicated
// goroutine (§4.D), giving the processor an identical segment/bbox/
// motion-vector/motion-map contract to the in-thread adapter package,
// but with at-most-one-in-flight, non-blocking dispatch: a caller that
// finds the worker busy proceeds with interpolation instead of queuing.
package workeradapter

import (
	"errors"
	"time"

	"github.com/gogpu/segmo/adapter"
	"github.com/gogpu/segmo/core"
)

// DefaultInitTimeout is the bound on worker startup before New falls
// back to reporting core.ErrWorkerInitFailure (§4.D, §7).
const DefaultInitTimeout = 30 * time.Second

// Result is the worker's "mask" reply: the mask buffer, motion buffer,
// bbox, and inference time, all owned by the worker's own adapter and
// handed to the caller by reference (§4.D: "each transferred, not
// copied").
type Result struct {
	Mask        *core.Mask
	Motion      *core.Mask
	BBox        *core.CropRegion
	MotionVec   core.MotionVector
	InferenceMs float64
}

type segmentRequest struct {
	frame       core.Frame
	timestampMs int64
	crop        *core.CropRegion
	frameW      int
	frameH      int
}

// Worker drives a core.MaskProducer on its own goroutine. The zero
// value is not usable; construct with New.
type Worker struct {
	reqCh    chan segmentRequest
	resultCh chan Result
	stopCh   chan struct{}

	busy bool // owned by the caller's goroutine, not the worker's
}

// New constructs the model producer on the worker goroutine via
// newProducer (so a slow or failing model load never blocks the
// caller's own thread) and waits up to initTimeout for the "ready"
// message. On timeout or producer construction failure it returns
// core.ErrWorkerInitFailure; per §4.D the caller should then fall back
// to an in-thread adapter.Adapter instead of retrying the worker.
func New(newProducer func() (core.MaskProducer, error), maskWidth, maskHeight int, initTimeout time.Duration) (*Worker, error) {
	if initTimeout <= 0 {
		initTimeout = DefaultInitTimeout
	}

	w := &Worker{
		reqCh:    make(chan segmentRequest, 1),
		resultCh: make(chan Result, 1),
		stopCh:   make(chan struct{}),
	}

	readyCh := make(chan error, 1)
	go w.run(newProducer, maskWidth, maskHeight, readyCh)

	select {
	case err := <-readyCh:
		if err != nil {
			return nil, errors.Join(core.ErrWorkerInitFailure, err)
		}
		return w, nil
	case <-time.After(initTimeout):
		close(w.stopCh)
		return nil, core.ErrWorkerInitFailure
	}
}

func (w *Worker) run(newProducer func() (core.MaskProducer, error), maskWidth, maskHeight int, readyCh chan<- error) {
	producer, err := newProducer()
	if err != nil {
		readyCh <- err
		return
	}
	a := adapter.New(producer, maskWidth, maskHeight)
	readyCh <- nil

	for {
		select {
		case req := <-w.reqCh:
			start := time.Now()
			mask, segErr := a.Segment(req.frame, req.timestampMs, req.crop, req.frameW, req.frameH)
			infMs := float64(time.Since(start).Microseconds()) / 1000
			if segErr != nil {
				// §7 ResourceUploadFailure: drop silently, no result posted.
				continue
			}
			res := Result{
				Mask:        mask,
				Motion:      a.GetMotionMap(),
				BBox:        a.GetPersonBBox(0),
				MotionVec:   a.GetMaskMotionVector(),
				InferenceMs: infMs,
			}
			select {
			case w.resultCh <- res:
			default:
				// Caller hasn't drained the previous result yet; since at
				// most one request is ever in flight this should not
				// happen, but never block the worker loop on it.
			}
		case <-w.stopCh:
			return
		}
	}
}

// TrySegment dispatches a segment request if the worker is idle.
// Returns false immediately (without blocking) if a request is already
// in flight; the caller is expected to interpolate that frame instead
// per §4.D's non-blocking concurrency contract.
func (w *Worker) TrySegment(frame core.Frame, timestampMs int64, crop *core.CropRegion, frameW, frameH int) bool {
	if w.busy {
		return false
	}
	select {
	case w.reqCh <- segmentRequest{frame: frame, timestampMs: timestampMs, crop: crop, frameW: frameW, frameH: frameH}:
		w.busy = true
		return true
	default:
		return false
	}
}

// PollResult returns the most recent completed result and clears the
// busy flag, or ok=false if none is ready yet.
func (w *Worker) PollResult() (Result, bool) {
	select {
	case res := <-w.resultCh:
		w.busy = false
		return res, true
	default:
		return Result{}, false
	}
}

// Busy reports whether a segment request is currently in flight.
func (w *Worker) Busy() bool { return w.busy }

// Close stops the worker goroutine.
func (w *Worker) Close() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
}
