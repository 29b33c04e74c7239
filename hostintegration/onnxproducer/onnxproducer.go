// Package onnxproducer implements core.MaskProducer against a real ONNX
// Runtime session, giving the externally-kept segmentation model (§1
// Non-goals: "the model itself") a concrete, runnable home. Grounded on
// the session/tensor lifecycle of iluha78-FD's internal/vision/detect.go.
package onnxproducer

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/gogpu/segmo/core"
)

// Config selects the model file and its expected tensor shape/names.
// Most segmentation checkpoints exported to ONNX use a single NCHW
// input and a single NCHW (or NHW, single-channel) output; InputName/
// OutputName let a caller point at whatever the export tool chose.
type Config struct {
	ModelPath  string
	InputName  string
	OutputName string

	// Width, Height are the model's fixed input resolution. The adapter
	// rasterizes into a ScratchSurface of exactly this size before
	// calling Produce, so these must match the tier's mask dimensions
	// the caller configures the adapter with.
	Width, Height int

	// Classes is the model's output channel count (1 for a single
	// person-confidence channel, N for a multiclass softmax output).
	Classes int

	SessionOptions *ort.SessionOptions
}

// Producer runs one ONNX Runtime session per instance. Produce holds an
// internal mutex for the whole call, so concurrent Produce calls are
// serialized rather than run in parallel.
type Producer struct {
	mu sync.Mutex

	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	width, height, classes int
}

// New loads the model and pre-allocates its input/output tensors. The
// caller must call ort.SetSharedLibraryPath and ort.InitializeEnvironment
// once at process start, per onnxruntime_go's own contract; New itself
// neither initializes nor tears down the runtime environment.
func New(cfg Config) (*Producer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Classes <= 0 {
		return nil, fmt.Errorf("onnxproducer: invalid config dimensions %dx%d classes=%d", cfg.Width, cfg.Height, cfg.Classes)
	}

	inputShape := ort.NewShape(1, 3, int64(cfg.Height), int64(cfg.Width))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("onnxproducer: create input tensor: %w", err)
	}

	outputShape := ort.NewShape(1, int64(cfg.Classes), int64(cfg.Height), int64(cfg.Width))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("onnxproducer: create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		cfg.SessionOptions,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("onnxproducer: create session: %w", err)
	}

	return &Producer{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		width:        cfg.Width,
		height:       cfg.Height,
		classes:      cfg.Classes,
	}, nil
}

// Produce implements core.MaskProducer: it normalizes input's RGB tile
// into CHW float32, runs one inference pass, and returns one
// confidenceMap per output channel view into the shared output tensor.
// The returned maps are only valid until the next Produce call.
func (p *Producer) Produce(input core.ScratchSurface, _ int64) ([]core.ConfidenceMap, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if input.Width() != p.width || input.Height() != p.height {
		return nil, fmt.Errorf("onnxproducer: input %dx%d does not match model %dx%d", input.Width(), input.Height(), p.width, p.height)
	}

	dst := p.inputTensor.GetData()
	rgbToCHW(dst, input.Pixels(), p.width, p.height)

	if err := p.session.Run(); err != nil {
		return nil, fmt.Errorf("onnxproducer: run: %w", err)
	}

	out := p.outputTensor.GetData()
	maps := make([]core.ConfidenceMap, p.classes)
	n := p.width * p.height
	for c := 0; c < p.classes; c++ {
		maps[c] = &channelView{w: p.width, h: p.height, data: out[c*n : (c+1)*n]}
	}
	return maps, nil
}

// Close releases the session and its tensors. Safe to call once.
func (p *Producer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != nil {
		p.session.Destroy()
		p.session = nil
	}
	if p.inputTensor != nil {
		p.inputTensor.Destroy()
		p.inputTensor = nil
	}
	if p.outputTensor != nil {
		p.outputTensor.Destroy()
		p.outputTensor = nil
	}
}

// rgbToCHW converts an interleaved RGB uint8 buffer to planar float32 in
// [0,1], the layout ONNX image models universally expect.
func rgbToCHW(dst []float32, rgb []uint8, w, h int) {
	n := w * h
	for i := 0; i < n; i++ {
		dst[i] = float32(rgb[i*3]) / 255
		dst[n+i] = float32(rgb[i*3+1]) / 255
		dst[2*n+i] = float32(rgb[i*3+2]) / 255
	}
}

// channelView is a zero-copy core.ConfidenceMap over one channel of the
// producer's shared output tensor.
type channelView struct {
	w, h int
	data []float32
}

func (c *channelView) Width() int             { return c.w }
func (c *channelView) Height() int            { return c.h }
func (c *channelView) AsFloatArray() []float32 { return c.data }
func (c *channelView) Close()                 {}
