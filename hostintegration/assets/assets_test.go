package assets

import (
	"image"
	"image/color"
	"testing"
)

func TestNewBackgroundImageConvertsPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.Set(1, 0, color.RGBA{R: 40, G: 50, B: 60, A: 128})

	bg := newBackgroundImage(img)
	if bg.Width() != 2 || bg.Height() != 1 {
		t.Fatalf("Width/Height = %d/%d, want 2/1", bg.Width(), bg.Height())
	}

	rgba := bg.RGBA()
	if len(rgba) != 8 {
		t.Fatalf("RGBA() len = %d, want 8", len(rgba))
	}
	if rgba[0] != 10 || rgba[1] != 20 || rgba[2] != 30 || rgba[3] != 255 {
		t.Errorf("pixel0 = %v, want [10 20 30 255]", rgba[0:4])
	}
	if rgba[4] != 40 || rgba[5] != 50 || rgba[6] != 60 {
		t.Errorf("pixel1 rgb = %v, want [40 50 60]", rgba[4:7])
	}
}

func TestNewStoreRejectsBadEndpoint(t *testing.T) {
	if _, err := NewStore(Config{Endpoint: "", AccessKey: "a", SecretKey: "b", Bucket: "bg"}); err == nil {
		t.Fatal("NewStore() with empty endpoint = nil error, want a failure")
	}
}
