package onnxproducer

import "testing"

func TestRGBToCHWPlanarLayout(t *testing.T) {
	// 2x1 image: pixel0=(10,20,30), pixel1=(40,50,60).
	rgb := []uint8{10, 20, 30, 40, 50, 60}
	dst := make([]float32, 3*2)

	rgbToCHW(dst, rgb, 2, 1)

	want := []float32{10.0 / 255, 40.0 / 255, 20.0 / 255, 50.0 / 255, 30.0 / 255, 60.0 / 255}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("dst[%d] = %f, want %f", i, dst[i], w)
		}
	}
}

func TestChannelViewExposesSlice(t *testing.T) {
	cv := &channelView{w: 2, h: 2, data: []float32{0.1, 0.2, 0.3, 0.4}}
	if cv.Width() != 2 || cv.Height() != 2 {
		t.Fatalf("Width/Height = %d/%d, want 2/2", cv.Width(), cv.Height())
	}
	if len(cv.AsFloatArray()) != 4 {
		t.Fatalf("AsFloatArray() len = %d, want 4", len(cv.AsFloatArray()))
	}
	cv.Close() // must not panic
}

func TestNewRejectsInvalidDimensions(t *testing.T) {
	if _, err := New(Config{ModelPath: "x.onnx", Width: 0, Height: 256, Classes: 1}); err == nil {
		t.Fatal("New() with Width=0 = nil error, want a failure")
	}
}
