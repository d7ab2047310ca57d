package vks

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultFramesInFlight is how many frames the pacing engine keeps in
// flight when the host does not say otherwise. Two balances latency
// against keeping the GPU fed.
const DefaultFramesInFlight = 2

// cameraBlock is the per-slot uniform contents: the view and projection
// matrices shared by every batch recorded in a frame.
type cameraBlock struct {
	View mgl32.Mat4
	Proj mgl32.Mat4
}

const cameraBlockSize = uint64(unsafe.Sizeof(cameraBlock{}))

// frameSlot is one unit of the pacing ring. Each slot owns the sync
// primitives, command buffer, uniform buffer and vertex arena for one frame
// that may still be executing on the GPU while the CPU records another.
type frameSlot struct {
	device *Device

	imageAvailable vk.Semaphore
	renderFinished vk.Semaphore
	inFlight       vk.Fence

	cmd *CommandBuffer

	cameraBuffer *Buffer
	cameraMemory *DeviceMemory
	cameraSet    vk.DescriptorSet

	geometry *frameGeometry
}

func createFrameSlot(device *Device, pool *CommandPool, descriptors *DescriptorPool, layout *DescriptorSetLayout, vertexCapacity uint64) (*frameSlot, error) {
	slot := &frameSlot{device: device}

	var err error
	slot.imageAvailable, err = device.VKCreateSemaphore()
	if err != nil {
		return nil, fmt.Errorf("unable to create acquire semaphore: %w", err)
	}
	slot.renderFinished, err = device.VKCreateSemaphore()
	if err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to create render semaphore: %w", err)
	}

	// Signaled so the first wait on a slot that never submitted passes.
	slot.inFlight, err = device.VKCreateFence(true)
	if err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to create frame fence: %w", err)
	}

	slot.cmd, err = pool.AllocateBuffer()
	if err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to allocate frame command buffer: %w", err)
	}

	slot.cameraBuffer, slot.cameraMemory, err = device.CreateAndBindBufferAndMemory(cameraBlockSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
		vk.SharingModeExclusive)
	if err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to create camera buffer: %w", err)
	}
	if _, err := slot.cameraMemory.Map(); err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to map camera buffer: %w", err)
	}

	slot.cameraSet, err = descriptors.Allocate(layout)
	if err != nil {
		slot.Destroy()
		return nil, fmt.Errorf("unable to allocate camera descriptor set: %w", err)
	}
	device.WriteUniformBuffer(slot.cameraSet, slot.cameraBuffer)

	slot.geometry, err = createFrameGeometry(device, vertexCapacity)
	if err != nil {
		slot.Destroy()
		return nil, err
	}

	return slot, nil
}

// writeCamera copies the frame's view and projection matrices into the
// slot's mapped uniform buffer. Only safe once the slot's fence has cleared.
func (s *frameSlot) writeCamera(view, proj mgl32.Mat4) {
	block := cameraBlock{View: view, Proj: proj}
	s.cameraMemory.CopyAt(0, ToBytes(unsafe.Pointer(&block), int(cameraBlockSize)))
}

// Destroy releases whatever the slot managed to create. Tolerates partial
// construction so createFrameSlot can call it on any failure path.
func (s *frameSlot) Destroy() {
	if s.geometry != nil {
		s.geometry.Destroy()
		s.geometry = nil
	}
	// Descriptor sets go down with their pool.
	s.cameraSet = nil
	if s.cameraMemory != nil {
		s.cameraMemory.Destroy()
		s.cameraMemory = nil
	}
	if s.cameraBuffer != nil {
		s.cameraBuffer.Destroy()
		s.cameraBuffer = nil
	}
	if s.inFlight != vk.NullFence {
		s.device.VKDestroyFence(s.inFlight)
		s.inFlight = vk.NullFence
	}
	if s.renderFinished != vk.NullSemaphore {
		s.device.VKDestroySemaphore(s.renderFinished)
		s.renderFinished = vk.NullSemaphore
	}
	if s.imageAvailable != vk.NullSemaphore {
		s.device.VKDestroySemaphore(s.imageAvailable)
		s.imageAvailable = vk.NullSemaphore
	}
}

// frameCursor tracks which slot of the pacing ring the CPU records into
// next. It only ever advances by one, modulo the ring size.
type frameCursor struct {
	slots   int
	current int
}

func newFrameCursor(slots int) frameCursor {
	return frameCursor{slots: slots}
}

func (c *frameCursor) index() int {
	return c.current
}

func (c *frameCursor) advance() {
	c.current = (c.current + 1) % c.slots
}
