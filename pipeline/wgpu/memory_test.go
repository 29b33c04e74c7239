package wgpu

import "testing"

func TestMemoryManagerBasic(t *testing.T) {
	mm := NewMemoryManager(MemoryManagerConfig{MaxMemoryMB: 16})
	defer mm.Close()

	stats := mm.Stats()
	if stats.UsedBytes != 0 || stats.TextureCount != 0 {
		t.Fatalf("initial stats = %+v, want zeroed", stats)
	}

	tex, err := mm.Alloc(TextureConfig{Width: 100, Height: 100, Format: TextureFormatRGBA8}, 1)
	if err != nil {
		t.Fatalf("Alloc() error = %v", err)
	}

	stats = mm.Stats()
	want := uint64(100 * 100 * 4)
	if stats.UsedBytes != want {
		t.Errorf("UsedBytes = %d, want %d", stats.UsedBytes, want)
	}
	if stats.TextureCount != 1 {
		t.Errorf("TextureCount = %d, want 1", stats.TextureCount)
	}

	tex.Release()
	stats = mm.Stats()
	if stats.UsedBytes != 0 || stats.TextureCount != 0 {
		t.Errorf("stats after release = %+v, want zeroed", stats)
	}
}

func TestMemoryManagerEvictsLeastRecentlyUsed(t *testing.T) {
	// 512x512 RGBA8 = 1 MB each; 16 MB budget, 50% eviction threshold (eviction starts at 8 MB).
	mm := NewMemoryManager(MemoryManagerConfig{MaxMemoryMB: 16, EvictionThreshold: 0.5})
	defer mm.Close()

	var textures []*GPUTexture
	for i := 0; i < 12; i++ {
		tex, err := mm.Alloc(TextureConfig{Width: 512, Height: 512, Format: TextureFormatRGBA8}, uint64(i))
		if err != nil {
			break
		}
		textures = append(textures, tex)
	}

	stats := mm.Stats()
	if stats.EvictionCount == 0 {
		t.Fatalf("expected eviction after exceeding budget, got %s", stats.String())
	}
	if stats.UsedBytes > mm.budgetBytes {
		t.Errorf("UsedBytes %d exceeds budget %d after eviction", stats.UsedBytes, mm.budgetBytes)
	}
}

func TestMemoryManagerRejectsOversizedAllocation(t *testing.T) {
	mm := NewMemoryManager(MemoryManagerConfig{MaxMemoryMB: 16})
	defer mm.Close()

	_, err := mm.Alloc(TextureConfig{Width: 8192, Height: 8192, Format: TextureFormatRGBA8}, 1)
	if err == nil {
		t.Fatal("expected ErrMemoryBudgetExceeded for an allocation larger than the whole budget")
	}
}

func TestMemoryManagerCloseRejectsFurtherAlloc(t *testing.T) {
	mm := NewMemoryManager(MemoryManagerConfig{MaxMemoryMB: 16})
	mm.Close()

	_, err := mm.Alloc(TextureConfig{Width: 10, Height: 10, Format: TextureFormatRGBA8}, 1)
	if err != ErrMemoryManagerClosed {
		t.Errorf("Alloc() after Close() error = %v, want ErrMemoryManagerClosed", err)
	}
}
