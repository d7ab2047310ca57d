package vks

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// bumpAllocator hands out byte ranges from a fixed-capacity arena using a
// monotonically advancing offset. Reset rewinds the whole arena at once;
// there is no per-allocation free.
type bumpAllocator struct {
	capacity uint64
	offset   uint64
}

func newBumpAllocator(capacity uint64) *bumpAllocator {
	return &bumpAllocator{capacity: capacity}
}

// Alloc reserves size bytes and returns the offset of the reservation.
// Fails with ErrOutOfCapacity when the remaining space is too small; the
// allocator state is unchanged on failure.
func (a *bumpAllocator) Alloc(size uint64) (uint64, error) {
	if size > a.capacity-a.offset {
		return 0, fmt.Errorf("allocating %d bytes with %d of %d remaining: %w",
			size, a.capacity-a.offset, a.capacity, ErrOutOfCapacity)
	}
	offset := a.offset
	a.offset += size
	return offset, nil
}

// Used reports the bytes consumed since the last Reset.
func (a *bumpAllocator) Used() uint64 {
	return a.offset
}

func (a *bumpAllocator) Capacity() uint64 {
	return a.capacity
}

// Reset rewinds the arena. Callers must ensure no pending work still reads
// the previously handed-out ranges.
func (a *bumpAllocator) Reset() {
	a.offset = 0
}

// frameGeometry is the per-slot vertex arena: one host-visible, persistently
// mapped buffer fronted by a bump allocator. Draw batches copy their vertex
// data in at the allocated offset and bind the buffer at that offset.
type frameGeometry struct {
	buffer *Buffer
	memory *DeviceMemory
	alloc  *bumpAllocator
}

func createFrameGeometry(device *Device, capacity uint64) (*frameGeometry, error) {
	buffer, memory, err := device.CreateAndBindBufferAndMemory(capacity,
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.SharingModeExclusive)
	if err != nil {
		return nil, fmt.Errorf("unable to create frame geometry buffer: %w", err)
	}
	if _, err := memory.Map(); err != nil {
		memory.Destroy()
		buffer.Destroy()
		return nil, fmt.Errorf("unable to map frame geometry memory: %w", err)
	}
	return &frameGeometry{
		buffer: buffer,
		memory: memory,
		alloc:  newBumpAllocator(capacity),
	}, nil
}

// stage copies data into the arena and returns the byte offset the copy
// landed at.
func (g *frameGeometry) stage(data []byte) (uint64, error) {
	offset, err := g.alloc.Alloc(uint64(len(data)))
	if err != nil {
		return 0, err
	}
	g.memory.CopyAt(offset, data)
	return offset, nil
}

func (g *frameGeometry) reset() {
	g.alloc.Reset()
}

func (g *frameGeometry) Destroy() {
	if g.memory != nil {
		g.memory.Destroy()
		g.memory = nil
	}
	if g.buffer != nil {
		g.buffer.Destroy()
		g.buffer = nil
	}
}
