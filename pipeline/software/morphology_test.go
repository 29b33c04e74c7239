package software

import (
	"testing"

	"github.com/gogpu/segmo/core"
)

func TestMorphologyClosesSmallHole(t *testing.T) {
	const w, h = 7, 7
	src := core.NewMask(w, h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			src.Set(x, y, 1)
		}
	}
	// Punch a single-pixel hole in the middle of the filled square.
	src.Set(3, 3, 0)

	dst := core.NewMask(w, h)
	Morphology(dst, src)

	if got := dst.At(3, 3); got != 1 {
		t.Fatalf("hole at (3,3) should be filled by the close, got %f", got)
	}
	// The outer boundary should not have grown past the original square.
	if got := dst.At(0, 0); got != 0 {
		t.Fatalf("background corner should stay background, got %f", got)
	}
}

func TestMorphologyDoesNotRemoveIsolatedSpeck(t *testing.T) {
	// A close (dilate-then-erode) does not remove small isolated specks
	// the way an open (erode-then-dilate) would; this distinguishes the
	// two operators and pins the fix from the morphology review comment.
	const w, h = 5, 5
	src := core.NewMask(w, h)
	src.Set(2, 2, 1)

	dst := core.NewMask(w, h)
	Morphology(dst, src)

	if got := dst.At(2, 2); got != 1 {
		t.Fatalf("a close should preserve an isolated foreground speck, got %f", got)
	}
}
