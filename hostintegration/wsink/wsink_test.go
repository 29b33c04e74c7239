package wsink

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/segmo/diagnostics"
)

type fakeSurface struct {
	w, h int
	pix  []uint8
}

func (s *fakeSurface) Width() int   { return s.w }
func (s *fakeSurface) Height() int  { return s.h }
func (s *fakeSurface) Pix() []uint8 { return s.pix }

func TestEncodeSurfaceHeaderAndPayload(t *testing.T) {
	s := &fakeSurface{w: 4, h: 2, pix: []uint8{1, 2, 3, 4}}
	buf := encodeSurface(s)

	if buf[0] != 0x01 {
		t.Fatalf("marker byte = %#x, want 0x01", buf[0])
	}
	if got := binary.BigEndian.Uint32(buf[1:5]); got != 4 {
		t.Errorf("width = %d, want 4", got)
	}
	if got := binary.BigEndian.Uint32(buf[5:9]); got != 2 {
		t.Errorf("height = %d, want 2", got)
	}
	if len(buf) != 9+len(s.pix) {
		t.Errorf("buf len = %d, want %d", len(buf), 9+len(s.pix))
	}
}

func TestHubPushSurfaceBroadcastsEncodedFrame(t *testing.T) {
	h := New()
	s := &fakeSurface{w: 1, h: 1, pix: []uint8{9, 9, 9, 255}}

	h.PushSurface(s)
	select {
	case msg := <-h.broadcast:
		if msg[0] != 0x01 {
			t.Errorf("broadcast marker = %#x, want 0x01", msg[0])
		}
	default:
		t.Fatal("PushSurface() did not enqueue a broadcast message")
	}
}

func TestHubEmitTagsDiagnosticPayload(t *testing.T) {
	h := New()
	h.Emit(diagnostics.Event{Kind: diagnostics.KindInit, Backend: "software"})

	msg := <-h.broadcast
	if msg[0] != 0x02 {
		t.Errorf("marker = %#x, want 0x02", msg[0])
	}
}
