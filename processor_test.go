package segmo

import (
	"testing"

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

// uniformProducer always reports a uniform person-confidence value
// across the full tile.
type uniformProducer struct{ value float32 }

func (p *uniformProducer) Produce(input core.ScratchSurface, timestampMs int64) ([]core.ConfidenceMap, error) {
	n := input.Width() * input.Height()
	vals := make([]float32, n)
	for i := range vals {
		vals[i] = p.value
	}
	return []core.ConfidenceMap{&fakeConfidenceMap{w: input.Width(), h: input.Height(), values: vals}}, nil
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

func TestProcessorInitAndProcessFrame(t *testing.T) {
	opts := Options{
		Background: BackgroundMode{Kind: BackgroundColor, Color: 0x00FF00},
		Producer:   &uniformProducer{value: 1},
	}
	p := NewProcessor(opts)
	if err := p.Init(64, 64); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer p.Destroy()

	frame := newFakeFrame(64, 64)
	surface, err := p.ProcessFrame(frame, 0)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	if surface == nil {
		t.Fatal("ProcessFrame() returned a nil surface on the first fresh-mask frame")
	}
}

func TestProcessorBackgroundNoneIsPassThrough(t *testing.T) {
	p := NewProcessor(Options{Background: BackgroundMode{Kind: BackgroundNone}})
	if err := p.Init(32, 32); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer p.Destroy()

	surface, err := p.ProcessFrame(newFakeFrame(32, 32), 0)
	if err != nil || surface != nil {
		t.Errorf("ProcessFrame() with BackgroundNone = (%v, %v), want (nil, nil)", surface, err)
	}
}

func TestProcessorMissingProducerFailsInit(t *testing.T) {
	p := NewProcessor(Options{Background: BackgroundMode{Kind: BackgroundColor}})
	if err := p.Init(32, 32); err == nil {
		t.Fatal("Init() with no Producer and a non-none background = nil error, want a failure")
	}
}

func TestProcessorInterpolatesWithoutFreshModelCall(t *testing.T) {
	opts := Options{
		Background: BackgroundMode{Kind: BackgroundColor, Color: 0xFF0000},
		Producer:   &uniformProducer{value: 1},
		ModelFps:   1, // slow base interval so the second frame interpolates
	}
	p := NewProcessor(opts)
	if err := p.Init(64, 64); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer p.Destroy()

	frame := newFakeFrame(64, 64)
	if _, err := p.ProcessFrame(frame, 0); err != nil {
		t.Fatalf("first ProcessFrame() error = %v", err)
	}
	// Arrives well before the next model run is due.
	surface, err := p.ProcessFrame(frame, 5)
	if err != nil {
		t.Fatalf("second ProcessFrame() error = %v", err)
	}
	if surface == nil {
		t.Fatal("second ProcessFrame() returned a nil surface on the interpolation path")
	}
}

func TestProcessorDestroyThenProcessFrameReturnsClosed(t *testing.T) {
	opts := Options{
		Background: BackgroundMode{Kind: BackgroundColor},
		Producer:   &uniformProducer{value: 1},
	}
	p := NewProcessor(opts)
	if err := p.Init(32, 32); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	p.Destroy()

	if _, err := p.ProcessFrame(newFakeFrame(32, 32), 0); err != core.ErrClosed {
		t.Errorf("ProcessFrame() after Destroy() error = %v, want ErrClosed", err)
	}
}
