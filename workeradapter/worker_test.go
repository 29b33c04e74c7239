package workeradapter

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/segmo/core"
)

type fakeConfidenceMap struct {
	w, h   int
	values []float32
}

func (m *fakeConfidenceMap) Width() int              { return m.w }
func (m *fakeConfidenceMap) Height() int             { return m.h }
func (m *fakeConfidenceMap) AsFloatArray() []float32 { return m.values }
func (m *fakeConfidenceMap) Close()                  {}

type fakeProducer struct{ w, h int }

func (p *fakeProducer) Produce(input core.ScratchSurface, timestampMs int64) ([]core.ConfidenceMap, error) {
	vals := make([]float32, p.w*p.h)
	for i := range vals {
		vals[i] = 1
	}
	return []core.ConfidenceMap{&fakeConfidenceMap{w: p.w, h: p.h, values: vals}}, nil
}

type fakeFrame struct {
	w, h int
	rgb  []uint8
}

func newFakeFrame(w, h int) *fakeFrame {
	return &fakeFrame{w: w, h: h, rgb: make([]uint8, w*h*3)}
}

func (f *fakeFrame) Width() int         { return f.w }
func (f *fakeFrame) Height() int        { return f.h }
func (f *fakeFrame) TimestampMs() int64 { return 0 }
func (f *fakeFrame) Pixels() []uint8    { return f.rgb }

func TestWorkerInitSucceeds(t *testing.T) {
	w, err := New(func() (core.MaskProducer, error) {
		return &fakeProducer{w: 16, h: 16}, nil
	}, 16, 16, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()
}

func TestWorkerInitFailurePropagates(t *testing.T) {
	wantErr := errors.New("model load failed")
	_, err := New(func() (core.MaskProducer, error) {
		return nil, wantErr
	}, 16, 16, time.Second)
	if err == nil {
		t.Fatal("New() error = nil, want non-nil on producer construction failure")
	}
	if !errors.Is(err, core.ErrWorkerInitFailure) {
		t.Errorf("New() error = %v, want it to wrap core.ErrWorkerInitFailure", err)
	}
}

func TestWorkerInitTimesOut(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, err := New(func() (core.MaskProducer, error) {
		<-block
		return &fakeProducer{w: 8, h: 8}, nil
	}, 8, 8, 20*time.Millisecond)
	if err != core.ErrWorkerInitFailure {
		t.Errorf("New() with a slow producer factory error = %v, want ErrWorkerInitFailure", err)
	}
}

func TestTrySegmentThenPollResult(t *testing.T) {
	w, err := New(func() (core.MaskProducer, error) {
		return &fakeProducer{w: 16, h: 16}, nil
	}, 16, 16, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	frame := newFakeFrame(64, 64)
	if !w.TrySegment(frame, 0, nil, 64, 64) {
		t.Fatal("TrySegment() on an idle worker = false, want true")
	}
	if !w.Busy() {
		t.Error("Busy() = false right after a successful TrySegment()")
	}

	deadline := time.Now().Add(time.Second)
	var res Result
	var ok bool
	for time.Now().Before(deadline) {
		res, ok = w.PollResult()
		if ok {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if !ok {
		t.Fatal("PollResult() never produced a result")
	}
	if res.Mask == nil {
		t.Error("PollResult() Result.Mask = nil, want a populated mask")
	}
	if w.Busy() {
		t.Error("Busy() = true after PollResult() drained the result")
	}
}

func TestTrySegmentRejectsWhileBusy(t *testing.T) {
	w, err := New(func() (core.MaskProducer, error) {
		return &fakeProducer{w: 8, h: 8}, nil
	}, 8, 8, time.Second)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer w.Close()

	frame := newFakeFrame(32, 32)
	if !w.TrySegment(frame, 0, nil, 32, 32) {
		t.Fatal("first TrySegment() = false, want true")
	}
	if w.TrySegment(frame, 1, nil, 32, 32) {
		t.Error("second TrySegment() while busy = true, want false (non-blocking, no queueing)")
	}
}
