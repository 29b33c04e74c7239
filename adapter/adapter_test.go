package adapter

import (
	"errors"
	"testing"

	"github.com/gogpu/segmo/core"
)

// fakeConfidenceMap is a plain in-memory core.ConfidenceMap for tests.
type fakeConfidenceMap struct {
	w, h   int
	values []float32
	closed bool
}

func (m *fakeConfidenceMap) Width() int             { return m.w }
func (m *fakeConfidenceMap) Height() int            { return m.h }
func (m *fakeConfidenceMap) AsFloatArray() []float32 { return m.values }
func (m *fakeConfidenceMap) Close()                 { m.closed = true }

// fakeProducer returns a single-channel "person" map whose value is
// uniform, or fails when failNext is set.
type fakeProducer struct {
	w, h     int
	value    float32
	failNext bool
	calls    int
	lastMaps []*fakeConfidenceMap
}

func (p *fakeProducer) Produce(input core.ScratchSurface, timestampMs int64) ([]core.ConfidenceMap, error) {
	p.calls++
	if p.failNext {
		p.failNext = false
		return nil, errors.New("producer unavailable")
	}
	vals := make([]float32, p.w*p.h)
	for i := range vals {
		vals[i] = p.value
	}
	m := &fakeConfidenceMap{w: p.w, h: p.h, values: vals}
	p.lastMaps = append(p.lastMaps, m)
	return []core.ConfidenceMap{m}, nil
}

// fakeFrame implements core.PixelFrame over a uniform RGB buffer.
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

func TestSegmentWholePersonProducesFullBBox(t *testing.T) {
	prod := &fakeProducer{w: 32, h: 32, value: 1.0}
	a := New(prod, 32, 32)
	frame := newFakeFrame(128, 128)

	mask, err := a.Segment(frame, 0, nil, 128, 128)
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if mask == nil {
		t.Fatal("Segment() returned a nil mask for a fully-confident producer")
	}

	bbox := a.GetPersonBBox(0)
	if bbox == nil {
		t.Fatal("GetPersonBBox() = nil, want a full-frame bbox")
	}
	if bbox.Empty() {
		t.Error("GetPersonBBox() returned an empty region")
	}
	if bbox.X != 0 || bbox.Y != 0 || bbox.W != 1 || bbox.H != 1 {
		t.Errorf("GetPersonBBox() = %+v, want the full frame {0 0 1 1}", *bbox)
	}
}

func TestSegmentEmptyMaskYieldsNoBBox(t *testing.T) {
	prod := &fakeProducer{w: 16, h: 16, value: 0.0}
	a := New(prod, 16, 16)
	frame := newFakeFrame(64, 64)

	if _, err := a.Segment(frame, 0, nil, 64, 64); err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if bbox := a.GetPersonBBox(0); bbox != nil {
		t.Errorf("GetPersonBBox() = %+v, want nil for an all-background mask", bbox)
	}
}

func TestSegmentProducerFailureFallsBackToPreviousMask(t *testing.T) {
	prod := &fakeProducer{w: 16, h: 16, value: 1.0}
	a := New(prod, 16, 16)
	frame := newFakeFrame(64, 64)

	first, err := a.Segment(frame, 0, nil, 64, 64)
	if err != nil || first == nil {
		t.Fatalf("first Segment() = (%v, %v), want a valid mask", first, err)
	}

	prod.failNext = true
	second, err := a.Segment(frame, 16, nil, 64, 64)
	if err != nil {
		t.Fatalf("Segment() after producer failure returned an error, want nil per §7: %v", err)
	}
	if second != first {
		t.Errorf("Segment() after producer failure = %p, want the previous mask %p", second, first)
	}
	if a.ProducerFailures() != 1 {
		t.Errorf("ProducerFailures() = %d, want 1", a.ProducerFailures())
	}
}

func TestSegmentFirstProducerFailureYieldsNilMask(t *testing.T) {
	prod := &fakeProducer{w: 8, h: 8, value: 1.0, failNext: true}
	a := New(prod, 8, 8)
	frame := newFakeFrame(32, 32)

	mask, err := a.Segment(frame, 0, nil, 32, 32)
	if err != nil {
		t.Fatalf("Segment() error = %v, want nil (absorbed per §7)", err)
	}
	if mask != nil {
		t.Errorf("Segment() = %v, want nil when no prior mask exists", mask)
	}
}

func TestSegmentZeroSizedFrameIsResourceUploadFailure(t *testing.T) {
	prod := &fakeProducer{w: 8, h: 8, value: 1.0}
	a := New(prod, 8, 8)
	frame := newFakeFrame(32, 32)

	if _, err := a.Segment(frame, 0, nil, 0, 0); err != core.ErrResourceUploadFailure {
		t.Errorf("Segment() with zero frame dims error = %v, want ErrResourceUploadFailure", err)
	}
}

func TestGetMotionMapNilBeforeSecondCall(t *testing.T) {
	prod := &fakeProducer{w: 16, h: 16, value: 1.0}
	a := New(prod, 16, 16)
	frame := newFakeFrame(64, 64)

	if _, err := a.Segment(frame, 0, nil, 64, 64); err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if mm := a.GetMotionMap(); mm != nil {
		t.Error("GetMotionMap() before the second Segment() call, want nil")
	}

	if _, err := a.Segment(frame, 16, nil, 64, 64); err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if mm := a.GetMotionMap(); mm == nil {
		t.Error("GetMotionMap() after the second Segment() call, want non-nil")
	}
}

func TestResetClearsVelocity(t *testing.T) {
	a := New(&fakeProducer{w: 8, h: 8, value: 1.0}, 8, 8)
	a.centroid.vx = [3]float32{0.1, 0.2, 0.3}
	a.centroid.vy = 0.4
	a.centroid.seeded = true

	a.Reset()

	v := a.GetMaskMotionVector()
	if v.Vx != [3]float32{0, 0, 0} || v.Vy != 0 {
		t.Errorf("GetMaskMotionVector() after Reset() = %+v, want all zero", v)
	}
}

func TestExtractPersonChannelMulticlassInvertsBackground(t *testing.T) {
	bg := &fakeConfidenceMap{w: 2, h: 1, values: []float32{0.2, 0.9}}
	other1 := &fakeConfidenceMap{w: 2, h: 1, values: []float32{0, 0}}
	other2 := &fakeConfidenceMap{w: 2, h: 1, values: []float32{0, 0}}
	dst := core.NewMask(2, 1)

	extractPersonChannel(dst, []core.ConfidenceMap{bg, other1, other2})

	want := []float32{0.8, 0.1}
	got := dst.Data()
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("data[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestExtractPersonChannelTwoClassUsesLastChannel(t *testing.T) {
	bg := &fakeConfidenceMap{w: 2, h: 1, values: []float32{0.1, 0.1}}
	person := &fakeConfidenceMap{w: 2, h: 1, values: []float32{0.7, 0.3}}
	dst := core.NewMask(2, 1)

	extractPersonChannel(dst, []core.ConfidenceMap{bg, person})

	got := dst.Data()
	if got[0] != 0.7 || got[1] != 0.3 {
		t.Errorf("data = %v, want [0.7 0.3]", got)
	}
}
