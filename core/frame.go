package core

// Frame is an opaque handle to a camera frame usable as a source for a
// 2D RGBA texture upload, with a monotonic timestamp in milliseconds.
// The concrete type is supplied by the host's frame transport; segmo
// never inspects it beyond what a backend needs for upload.
type Frame interface {
	// Width and Height report the frame's pixel dimensions.
	Width() int
	Height() int
	// TimestampMs is a monotonically increasing capture timestamp.
	TimestampMs() int64
}

// PixelFrame is the optional capability a Frame implementation exposes
// for CPU-addressable access to its pixels, which the software backend
// requires (it has no GPU texture upload path to fall back on). A
// frame that only supports GPU upload (no PixelFrame) can still drive
// the wgpu backend; the software backend's Process returns
// ErrResourceUploadFailure for it, and the Processor drops that frame.
type PixelFrame interface {
	Frame
	// Pixels returns the row-major RGB (3 bytes/pixel) buffer.
	Pixels() []uint8
}

// Surface is an opaque handle to an output composited frame, usable for
// downstream encode/display of the configured W×H dimensions.
type Surface interface {
	Width() int
	Height() int
}

// ConfidenceMap is a single-channel confidence map returned by an
// external mask producer for one inference call.
type ConfidenceMap interface {
	Width() int
	Height() int
	// AsFloatArray returns the channel data, row-major, values in [0,1].
	AsFloatArray() []float32
	// Close releases any resources (e.g. a GPU/tensor buffer) backing
	// the map. Safe to call multiple times.
	Close()
}

// MaskProducer is the external segmentation model interface the core
// requires: given an RGB tile of a configured size and a timestamp, it
// returns one confidence map per output class. The core does not
// specify or run the model itself (§1 Non-goals).
type MaskProducer interface {
	// Produce runs inference on input (an RGB tile already sized to the
	// producer's expected resolution) and returns one ConfidenceMap per
	// class. Class-count dispatch is the adapter's responsibility: ≥3
	// classes means multiclass (person = 1 - background-class), ≤2
	// means person-is-last-channel.
	Produce(input ScratchSurface, timestampMs int64) ([]ConfidenceMap, error)
}

// ScratchSurface is a reusable RGB tile the adapter rasterizes the
// (optionally cropped) source frame into before handing it to the
// producer. Implementations are expected to be CPU-addressable pixel
// buffers so the adapter can blit into them without a GPU round trip.
type ScratchSurface interface {
	Width() int
	Height() int
	// Pixels returns the row-major RGB (3 bytes/pixel) buffer.
	Pixels() []uint8
}
