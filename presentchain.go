package vks

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// presentChain owns the swapchain generation currently in use: the chain
// itself, one view per image and one framebuffer per view. It is rebuilt
// wholesale on resize or staleness, never partially.
type presentChain struct {
	root       *DeviceRoot
	renderPass vk.RenderPass

	swapchain    *Swapchain
	views        []Owned[vk.ImageView]
	framebuffers []Owned[vk.Framebuffer]
}

func (c *presentChain) extent() vk.Extent2D {
	return c.swapchain.Extent
}

func (c *presentChain) imageCount() int {
	return len(c.framebuffers)
}

// build creates chain, views and framebuffers for the requested size. The
// render pass is created on first build and reused by later generations,
// since the chooser keeps the surface format stable across rebuilds.
func (c *presentChain) build(requested vk.Extent2D) error {
	device := c.root.Device

	swapchain, err := device.CreateSwapchain(c.root.VKSurface, c.root.GraphicsQueue, c.root.PresentQueue, &CreateSwapchainOptions{
		RequestedSize: requested,
	})
	if err != nil {
		return fmt.Errorf("unable to create swapchain: %w", err)
	}
	c.swapchain = swapchain

	images, err := swapchain.GetImages()
	if err != nil {
		c.teardown()
		return fmt.Errorf("unable to get swapchain images: %w", err)
	}

	c.views = make([]Owned[vk.ImageView], 0, len(images))
	for _, image := range images {
		view, err := device.createSwapchainImageView(image, swapchain.Format)
		if err != nil {
			c.teardown()
			return fmt.Errorf("unable to create image view: %w", err)
		}
		dev := device.VKDevice
		c.views = append(c.views, Own(view, func(v vk.ImageView) {
			vk.DestroyImageView(dev, v, nil)
		}))
	}

	if c.renderPass == vk.NullRenderPass {
		c.renderPass, err = device.CreateRenderPass(swapchain.Format)
		if err != nil {
			c.teardown()
			return fmt.Errorf("unable to create render pass: %w", err)
		}
	}

	c.framebuffers = make([]Owned[vk.Framebuffer], 0, len(c.views))
	for i := range c.views {
		fbCreateInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      c.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vk.ImageView{c.views[i].Get()},
			Width:           swapchain.Extent.Width,
			Height:          swapchain.Extent.Height,
			Layers:          1,
		}
		var fb vk.Framebuffer
		if err := vk.Error(vk.CreateFramebuffer(device.VKDevice, &fbCreateInfo, nil, &fb)); err != nil {
			c.teardown()
			return fmt.Errorf("unable to create framebuffer: %w", err)
		}
		dev := device.VKDevice
		c.framebuffers = append(c.framebuffers, Own(fb, func(f vk.Framebuffer) {
			vk.DestroyFramebuffer(dev, f, nil)
		}))
	}

	return nil
}

// teardown destroys the current generation in dependency order:
// framebuffers, then views, then the chain. The render pass survives
// rebuilds and is only destroyed with the chain itself.
func (c *presentChain) teardown() {
	for i := range c.framebuffers {
		c.framebuffers[i].Destroy()
	}
	c.framebuffers = nil

	for i := range c.views {
		c.views[i].Destroy()
	}
	c.views = nil

	if c.swapchain != nil {
		c.swapchain.Destroy()
		c.swapchain = nil
	}
}

// rebuild drains all in-flight GPU work, tears down the old generation and
// builds a new one at the requested size. Draining first is what makes it
// safe to destroy framebuffers still referenced by submitted commands.
func (c *presentChain) rebuild(requested vk.Extent2D) error {
	c.root.Device.WaitIdle()
	c.teardown()
	return c.build(requested)
}

func (c *presentChain) Destroy() {
	c.teardown()
	if c.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(c.root.Device.VKDevice, c.renderPass, nil)
		c.renderPass = vk.NullRenderPass
	}
}

func (d *Device) createSwapchainImageView(image vk.Image, format vk.Format) (vk.ImageView, error) {
	createInfo := &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	err := vk.Error(vk.CreateImageView(d.VKDevice, createInfo, nil, &view))
	if err != nil {
		return vk.NullImageView, err
	}
	return view, nil
}
