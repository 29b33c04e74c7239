package wgpu

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Memory management errors.
var (
	ErrMemoryBudgetExceeded = errors.New("segmo/wgpu: memory budget exceeded")
	ErrMemoryManagerClosed  = errors.New("segmo/wgpu: memory manager closed")
)

const (
	// DefaultMaxMemoryMB budgets the intermediate-texture pool for one
	// session: mask-space and full-frame buffers at up to 4K, double-
	// buffered for interpolation, comfortably fit under this.
	DefaultMaxMemoryMB = 192
	// DefaultEvictionThreshold starts LRU eviction at 80% of budget.
	DefaultEvictionThreshold = 0.8
	MinMemoryMB              = 16
)

// MemoryStats reports current texture-pool usage.
type MemoryStats struct {
	TotalBytes     uint64
	UsedBytes      uint64
	AvailableBytes uint64
	TextureCount   int
	EvictionCount  uint64
	Utilization    float64
}

func (s MemoryStats) String() string {
	return fmt.Sprintf("Memory[%.1f%% used, %d/%d MB, %d textures, %d evictions]",
		s.Utilization*100, s.UsedBytes/(1024*1024), s.TotalBytes/(1024*1024),
		s.TextureCount, s.EvictionCount)
}

type textureEntry struct {
	texture   *GPUTexture
	sizeBytes uint64
	lastUsed  time.Time
	element   *list.Element
}

// MemoryManager tracks the pipeline's intermediate-texture allocations
// and enforces a budget via LRU eviction, adapted from the teacher's
// own MemoryManager (internal/gpu/memory.go) for the pipeline's much
// smaller, fixed-shape texture set (per-tier mask buffers, full-frame
// composite surfaces, background buffers) rather than an arbitrary
// scene's layer stack.
type MemoryManager struct {
	mu sync.RWMutex

	budgetBytes uint64
	usedBytes   uint64

	textures map[*GPUTexture]*textureEntry
	lruList  *list.List

	evictionCount     uint64
	evictionThreshold float64
	closed            bool
}

// MemoryManagerConfig configures a MemoryManager.
type MemoryManagerConfig struct {
	MaxMemoryMB       int
	EvictionThreshold float64
}

// NewMemoryManager allocates a texture budget tracker.
func NewMemoryManager(config MemoryManagerConfig) *MemoryManager {
	maxMB := config.MaxMemoryMB
	if maxMB < MinMemoryMB {
		maxMB = DefaultMaxMemoryMB
	}
	threshold := config.EvictionThreshold
	if threshold <= 0 || threshold > 1.0 {
		threshold = DefaultEvictionThreshold
	}
	return &MemoryManager{
		budgetBytes:       uint64(maxMB) * 1024 * 1024,
		textures:          make(map[*GPUTexture]*textureEntry),
		lruList:           list.New(),
		evictionThreshold: threshold,
	}
}

// Alloc allocates a tracked texture, evicting least-recently-used
// textures first if necessary to stay within budget.
func (m *MemoryManager) Alloc(config TextureConfig, handle uint64) (*GPUTexture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrMemoryManagerClosed
	}

	required := uint64(config.Width * config.Height * config.Format.BytesPerPixel())
	if required > m.budgetBytes {
		return nil, fmt.Errorf("%w: texture %d MB exceeds total budget %d MB",
			ErrMemoryBudgetExceeded, required/(1024*1024), m.budgetBytes/(1024*1024))
	}
	if err := m.evictIfNeededLocked(required); err != nil {
		return nil, err
	}

	tex := newTexture(config, handle)
	tex.manager = m
	entry := &textureEntry{texture: tex, sizeBytes: tex.sizeBytes, lastUsed: time.Now()}
	entry.element = m.lruList.PushFront(entry)
	m.textures[tex] = entry
	m.usedBytes += entry.sizeBytes
	return tex, nil
}

// Touch marks a texture as recently used, moving it to the front of
// the LRU list.
func (m *MemoryManager) Touch(tex *GPUTexture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.textures[tex]
	if !ok {
		return
	}
	entry.lastUsed = time.Now()
	m.lruList.MoveToFront(entry.element)
}

func (m *MemoryManager) unregister(tex *GPUTexture) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.textures[tex]
	if !ok {
		return
	}
	m.removeLocked(entry)
}

func (m *MemoryManager) removeLocked(entry *textureEntry) {
	m.lruList.Remove(entry.element)
	delete(m.textures, entry.texture)
	m.usedBytes -= entry.sizeBytes
}

func (m *MemoryManager) evictIfNeededLocked(requested uint64) error {
	target := m.usedBytes + requested
	threshold := uint64(float64(m.budgetBytes) * m.evictionThreshold)
	if target <= m.budgetBytes && m.usedBytes < threshold {
		return nil
	}
	for target > threshold && m.lruList.Len() > 0 {
		elem := m.lruList.Back()
		entry, ok := elem.Value.(*textureEntry)
		if !ok {
			m.lruList.Remove(elem)
			continue
		}
		m.removeLocked(entry)
		entry.texture.released = true
		m.evictionCount++
		target = m.usedBytes + requested
	}
	if target > m.budgetBytes {
		return fmt.Errorf("%w: need %d bytes, have %d available",
			ErrMemoryBudgetExceeded, requested, m.budgetBytes-m.usedBytes)
	}
	return nil
}

// Stats reports current usage.
func (m *MemoryManager) Stats() MemoryStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var util float64
	if m.budgetBytes > 0 {
		util = float64(m.usedBytes) / float64(m.budgetBytes)
	}
	return MemoryStats{
		TotalBytes:     m.budgetBytes,
		UsedBytes:      m.usedBytes,
		AvailableBytes: m.budgetBytes - m.usedBytes,
		TextureCount:   len(m.textures),
		EvictionCount:  m.evictionCount,
		Utilization:    util,
	}
}

// Close releases all tracked textures.
func (m *MemoryManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for tex := range m.textures {
		tex.released = true
	}
	m.textures = nil
	m.lruList = nil
	m.usedBytes = 0
	m.closed = true
}
