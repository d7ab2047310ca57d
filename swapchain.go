package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// The chooser functions below are pure ranked-preference selections over
// device-reported capabilities, so the fallback order is deterministic and
// testable independent of any device.

var preferredSurfaceFormats = []vk.Format{
	vk.FormatB8g8r8a8Unorm,
	vk.FormatB8g8r8a8Srgb,
}

// chooseSurfaceFormat picks the first preferred 8-bit BGRA format with an
// sRGB color space, falling back to the first reported format.
func chooseSurfaceFormat(available []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, want := range preferredSurfaceFormats {
		for _, f := range available {
			if f.Format == want && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
				return f
			}
		}
	}
	return available[0]
}

// choosePresentMode prefers low-latency triple buffering (mailbox), falling
// back to fifo, the only mode every implementation provides.
func choosePresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, m := range available {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// chooseExtent uses the surface's current extent when the device reports it
// as authoritative, otherwise clamps the requested size into the reported
// min/max range.
func chooseExtent(caps *vk.SurfaceCapabilities, requested vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampU32(requested.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampU32(requested.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount requests one image more than the driver minimum so
// acquire rarely blocks, clamped to the maximum when one is reported.
func chooseImageCount(caps *vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

var preferredCompositeAlpha = []vk.CompositeAlphaFlagBits{
	vk.CompositeAlphaOpaqueBit,
	vk.CompositeAlphaInheritBit,
	vk.CompositeAlphaPreMultipliedBit,
	vk.CompositeAlphaPostMultipliedBit,
}

func chooseCompositeAlpha(supported vk.CompositeAlphaFlags) vk.CompositeAlphaFlagBits {
	for _, mode := range preferredCompositeAlpha {
		if supported&vk.CompositeAlphaFlags(mode) != 0 {
			return mode
		}
	}
	return vk.CompositeAlphaOpaqueBit
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Swapchain is the ring of presentable images the presentation engine cycles
// between. The chain owns its images; callers own the views they create on
// them.
type Swapchain struct {
	Extent      vk.Extent2D
	Format      vk.Format
	Device      *Device
	VKSwapchain vk.Swapchain
}

func (s *Swapchain) Destroy() {
	vk.DestroySwapchain(s.Device.VKDevice, s.VKSwapchain, nil)
}

// GetImages returns the chain's image handles. They are owned by the chain
// and must not be destroyed by the caller.
func (s *Swapchain) GetImages() ([]vk.Image, error) {
	var imageCount uint32
	err := vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, nil))
	if err != nil {
		return nil, err
	}

	images := make([]vk.Image, imageCount)
	err = vk.Error(vk.GetSwapchainImages(s.Device.VKDevice, s.VKSwapchain, &imageCount, images))
	if err != nil {
		return nil, err
	}
	return images, nil
}

type CreateSwapchainOptions struct {
	RequestedSize vk.Extent2D
	OldSwapchain  *Swapchain
}

// CreateSwapchain queries the surface and builds a chain using the ranked
// preference choosers. When graphics and present queues are in distinct
// families the images are created with concurrent sharing.
func (d *Device) CreateSwapchain(surface vk.Surface, graphicsQueue, presentQueue *Queue, options *CreateSwapchainOptions) (*Swapchain, error) {

	caps, err := d.PhysicalDevice.GetSurfaceCapabilities(surface)
	if err != nil {
		return nil, err
	}

	formats, err := d.PhysicalDevice.GetSurfaceFormats(surface)
	if err != nil {
		return nil, err
	}

	modes, err := d.PhysicalDevice.GetSurfacePresentModes(surface)
	if err != nil {
		return nil, err
	}

	format := chooseSurfaceFormat(formats)
	presentMode := choosePresentMode(modes)

	var requested vk.Extent2D
	if options != nil {
		requested = options.RequestedSize
	}
	extent := chooseExtent(caps, requested)

	createInfo := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          surface,
		MinImageCount:    chooseImageCount(caps),
		ImageFormat:      format.Format,
		ImageColorSpace:  format.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   chooseCompositeAlpha(caps.SupportedCompositeAlpha),
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}

	if options != nil && options.OldSwapchain != nil {
		createInfo.OldSwapchain = options.OldSwapchain.VKSwapchain
	}

	if graphicsQueue.QueueFamily.Index != presentQueue.QueueFamily.Index {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(graphicsQueue.QueueFamily.Index),
			uint32(presentQueue.QueueFamily.Index),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var swapchain vk.Swapchain
	err = vk.Error(vk.CreateSwapchain(d.VKDevice, createInfo, nil, &swapchain))
	if err != nil {
		return nil, err
	}

	var ret Swapchain
	ret.VKSwapchain = swapchain
	ret.Device = d
	ret.Extent = extent
	ret.Format = format.Format

	return &ret, nil
}
