package vks

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// DefaultVertexCapacity is the per-frame vertex arena size used when the
// host does not configure one.
const DefaultVertexCapacity = 1 << 20

// Config carries everything a host must supply before a session exists.
// Shader blobs are SPIR-V; the vertex stage must accept the Vertex layout,
// the camera uniform at set 0 binding 0 and the model push constant.
type Config struct {
	AppName    string
	AppVersion Version

	// InstanceExtensions are the surface extensions the host's windowing
	// layer requires, e.g. glfw's GetRequiredInstanceExtensions.
	InstanceExtensions []string

	// EnableValidation turns on the Khronos validation layer and routes
	// its reports through the standard logger. Silently skipped when the
	// layer is not installed.
	EnableValidation bool

	VertexShader   []byte
	FragmentShader []byte

	// VertexCapacity is the size in bytes of each frame's vertex arena.
	// Zero selects DefaultVertexCapacity.
	VertexCapacity uint64

	// FramesInFlight is the pacing ring size. Zero selects
	// DefaultFramesInFlight.
	FramesInFlight int

	ClearColor [4]float32
}

// resizeTracker decides which size observations actually require a
// swapchain rebuild. Zero-area sizes mark the surface minimized and never
// rebuild; leaving the minimized state always rebuilds, and repeated
// observations of the current size are ignored.
type resizeTracker struct {
	width, height uint32
	minimized     bool
}

func (t *resizeTracker) observe(width, height uint32) bool {
	if width == 0 || height == 0 {
		t.minimized = true
		return false
	}
	if t.minimized {
		t.minimized = false
		t.width, t.height = width, height
		return true
	}
	if width == t.width && height == t.height {
		return false
	}
	t.width, t.height = width, height
	return true
}

func (t *resizeTracker) extent() vk.Extent2D {
	return vk.Extent2D{Width: t.width, Height: t.height}
}

// Session is the per-surface rendering core: one device, one swapchain
// generation at a time, and a fixed ring of frame slots pacing the CPU
// against the GPU. All methods must be called from one goroutine.
type Session struct {
	graph ResourceGraph

	root        *DeviceRoot
	chain       *presentChain
	pipelines   *pipelineSet
	descriptors *DescriptorPool
	commandPool *CommandPool

	slots  []*frameSlot
	cursor frameCursor

	size           resizeTracker
	pendingRebuild bool

	view mgl32.Mat4
	proj mgl32.Mat4

	clearColor [4]float32

	inFrame    bool
	imageIndex uint32
	destroyed  bool

	// unstable latches after a submit or present hard failure. The slot's
	// fence may never signal again, so the session refuses further frames
	// instead of risking an unbounded fence wait.
	unstable bool
}

// acquireVerdict classifies an image-acquisition result the way the frame
// protocol reacts to it.
type acquireVerdict int

const (
	acquireOk acquireVerdict = iota
	// acquireDegraded: the image is usable this frame; rebuild before the
	// next one.
	acquireDegraded
	// acquireStale: no image was acquired; rebuild and skip this frame.
	acquireStale
	acquireFailed
)

func classifyAcquire(res vk.Result) acquireVerdict {
	switch res {
	case vk.Success:
		return acquireOk
	case vk.Suboptimal:
		return acquireDegraded
	case vk.ErrorOutOfDate:
		return acquireStale
	}
	return acquireFailed
}

// presentVerdict classifies a presentation result.
type presentVerdict int

const (
	presentOk presentVerdict = iota
	// presentStale: the frame was still delivered; rebuild before the next.
	presentStale
	presentFailed
)

func classifyPresent(res vk.Result) presentVerdict {
	switch res {
	case vk.Success:
		return presentOk
	case vk.Suboptimal, vk.ErrorOutOfDate:
		return presentStale
	}
	return presentFailed
}

// CreateSession bootstraps the device, builds the swapchain at the given
// size and prepares the frame ring. On any failure everything already
// constructed is destroyed, in reverse order, before the error returns.
func CreateSession(cfg Config, source SurfaceSource, width, height uint32) (*Session, error) {
	if len(cfg.VertexShader) == 0 || len(cfg.FragmentShader) == 0 {
		return nil, fmt.Errorf("session config is missing shader byte-code")
	}
	framesInFlight := cfg.FramesInFlight
	if framesInFlight <= 0 {
		framesInFlight = DefaultFramesInFlight
	}
	vertexCapacity := cfg.VertexCapacity
	if vertexCapacity == 0 {
		vertexCapacity = DefaultVertexCapacity
	}

	s := &Session{
		cursor:     newFrameCursor(framesInFlight),
		clearColor: cfg.ClearColor,
		view:       mgl32.Ident4(),
		proj:       mgl32.Ident4(),
	}
	s.size.observe(width, height)

	app := &App{Name: cfg.AppName, Version: cfg.AppVersion}
	for _, ext := range cfg.InstanceExtensions {
		app.EnableExtension(ext)
	}
	if cfg.EnableValidation {
		app.EnableDiagnostics()
	}

	fail := func(err error) (*Session, error) {
		s.graph.Unwind()
		return nil, err
	}

	root, err := bootstrap(app, source, &s.graph)
	if err != nil {
		return fail(err)
	}
	s.root = root

	s.chain = &presentChain{root: root}
	if err := s.chain.build(s.size.extent()); err != nil {
		return fail(err)
	}
	s.graph.Push("present chain", s.chain)
	log.Printf("vks: swapchain ready: %d images at %dx%d",
		s.chain.imageCount(), s.chain.extent().Width, s.chain.extent().Height)

	s.pipelines, err = buildPipelineSet(root.Device, s.chain.renderPass, cfg.VertexShader, cfg.FragmentShader)
	if err != nil {
		return fail(err)
	}
	s.graph.Push("pipelines", s.pipelines)

	s.descriptors, err = root.Device.CreateDescriptorPool(framesInFlight)
	if err != nil {
		return fail(fmt.Errorf("unable to create descriptor pool: %w", err))
	}
	s.graph.Push("descriptor pool", s.descriptors)

	s.commandPool, err = root.Device.CreateCommandPool(root.GraphicsQueue.QueueFamily)
	if err != nil {
		return fail(fmt.Errorf("unable to create command pool: %w", err))
	}
	s.graph.Push("command pool", s.commandPool)

	s.slots = make([]*frameSlot, framesInFlight)
	for i := range s.slots {
		slot, err := createFrameSlot(root.Device, s.commandPool, s.descriptors,
			s.pipelines.descriptorLayout, vertexCapacity)
		if err != nil {
			return fail(fmt.Errorf("unable to create frame slot %d: %w", i, err))
		}
		s.slots[i] = slot
		s.graph.Push(fmt.Sprintf("frame slot %d", i), slot)
	}

	return s, nil
}

// SetViewMatrix sets the camera view used from the next BeginFrame on.
func (s *Session) SetViewMatrix(view mgl32.Mat4) {
	s.view = view
}

// SetProjectionMatrix sets the projection used from the next BeginFrame on.
func (s *Session) SetProjectionMatrix(proj mgl32.Mat4) {
	s.proj = proj
}

// Resize records a new surface size. The swapchain is not rebuilt here but
// at the start of the next frame, once the slot's previous work has
// retired. Zero-area sizes mark the surface minimized and pause rendering.
func (s *Session) Resize(width, height uint32) {
	if s.size.observe(width, height) {
		s.pendingRebuild = true
	}
}

// BeginFrame opens the next frame: it waits for the slot's previous
// submission, applies any pending swapchain rebuild, acquires an image and
// starts recording. It returns false when no frame can start this tick,
// i.e. while minimized or when acquisition found the chain stale; the
// caller just skips to the next loop iteration.
func (s *Session) BeginFrame() bool {
	if s.destroyed || s.unstable || s.inFrame || s.size.minimized {
		return false
	}

	slot := s.slots[s.cursor.index()]
	device := s.root.Device

	if err := device.VKWaitForFence(slot.inFlight); err != nil {
		log.Printf("vks: frame fence wait failed: %v", err)
		return false
	}

	if s.pendingRebuild {
		// Stays latched on failure; retried at the next frame start.
		if err := s.chain.rebuild(s.size.extent()); err != nil {
			log.Printf("vks: swapchain rebuild failed: %v", err)
			return false
		}
		s.pendingRebuild = false
	}

	res := vk.AcquireNextImage(device.VKDevice, s.chain.swapchain.VKSwapchain,
		vk.MaxUint64, slot.imageAvailable, vk.NullFence, &s.imageIndex)
	switch classifyAcquire(res) {
	case acquireStale:
		// Nothing was submitted and the fence is still signaled, so the
		// slot stays safe to reuse. The rebuild happens at the top of the
		// next frame, where a failure keeps the flag latched for another
		// try instead of leaving a half-torn-down chain behind.
		s.pendingRebuild = true
		return false
	case acquireDegraded:
		s.pendingRebuild = true
	case acquireFailed:
		log.Printf("vks: image acquisition failed: %v", vk.Error(res))
		return false
	}

	slot.geometry.reset()
	slot.writeCamera(s.view, s.proj)

	if err := slot.cmd.Reset(); err != nil {
		log.Printf("vks: command buffer reset failed: %v", err)
		return false
	}
	if err := slot.cmd.Begin(); err != nil {
		log.Printf("vks: command buffer begin failed: %v", err)
		return false
	}

	// Reset last, once nothing fallible remains before submission. A slot
	// whose fence was reset but never submitted would deadlock its next
	// fence wait.
	if err := device.VKResetFence(slot.inFlight); err != nil {
		log.Printf("vks: frame fence reset failed: %v", err)
		return false
	}

	slot.cmd.CmdBeginRenderPass(s.chain.renderPass,
		s.chain.framebuffers[s.imageIndex].Get(), s.chain.extent(), s.clearColor)
	slot.cmd.CmdSetViewportScissor(s.chain.extent())

	s.inFrame = true
	return true
}

// Draw records one batch of vertices with the given topology and model
// transform. Outside an open frame it does nothing. A batch that does not
// fit the remaining vertex arena is dropped with ErrOutOfCapacity; batches
// already recorded this frame are unaffected.
func (s *Session) Draw(topology Topology, verts []Vertex, transform mgl32.Mat4) error {
	if !s.inFrame || len(verts) == 0 {
		return nil
	}

	slot := s.slots[s.cursor.index()]

	offset, err := slot.geometry.stage(VertexBytes(verts))
	if err != nil {
		return err
	}

	block := transformBlock{Model: transform}

	cmd := slot.cmd
	cmd.CmdBindGraphicsPipeline(s.pipelines.pipeline(topology))
	cmd.CmdBindDescriptorSet(s.pipelines.vkLayout, slot.cameraSet)
	cmd.CmdPushConstants(s.pipelines.vkLayout, unsafe.Pointer(&block), transformBlockSize)
	cmd.CmdBindVertexBuffer(slot.geometry.buffer.VKBuffer, offset)
	cmd.CmdDraw(len(verts))

	return nil
}

// EndFrame closes recording, submits and presents. Staleness discovered at
// present schedules a rebuild for the next frame; the presented frame still
// counts. Any other submit or present failure is wrapped in
// ErrDeviceUnstable. The frame cursor advances regardless of outcome.
func (s *Session) EndFrame() error {
	if !s.inFrame {
		return nil
	}
	s.inFrame = false
	defer s.cursor.advance()

	slot := s.slots[s.cursor.index()]

	slot.cmd.CmdEndRenderPass()
	if err := slot.cmd.End(); err != nil {
		// The slot's fence was reset at frame start and no submission will
		// ever signal it, so the session must stop handing out frames or
		// the next wait on this slot would block forever.
		s.unstable = true
		return fmt.Errorf("ending command buffer: %v: %w", err, ErrDeviceUnstable)
	}

	err := s.root.GraphicsQueue.SubmitFrame(slot.cmd,
		slot.imageAvailable, slot.renderFinished, slot.inFlight)
	if err != nil {
		s.unstable = true
		return fmt.Errorf("submitting frame: %v: %w", err, ErrDeviceUnstable)
	}

	res := s.root.PresentQueue.Present(s.chain.swapchain.VKSwapchain, s.imageIndex, slot.renderFinished)
	switch classifyPresent(res) {
	case presentStale:
		s.pendingRebuild = true
	case presentFailed:
		s.unstable = true
		return fmt.Errorf("presenting frame: %v: %w", vk.Error(res), ErrDeviceUnstable)
	}

	return nil
}

// Destroy drains the device and unwinds every resource the session built,
// newest first. Safe to call more than once.
func (s *Session) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.root != nil && s.root.Device != nil {
		s.root.Device.WaitIdle()
	}
	s.graph.Unwind()
}
