package vks

import (
	"fmt"
	"log"

	vk "github.com/vulkan-go/vulkan"
)

// SurfaceSource wraps a platform drawable as a presentation target once the
// instance exists. A GLFW host returns window.CreateWindowSurface; an
// embedded host wraps whatever native surface it was handed.
type SurfaceSource func(instance vk.Instance) (vk.Surface, error)

// DeviceRoot is the root of the session's resource graph: instance, surface,
// logical device and its queues. After a successful bootstrap it is
// immutable for the rest of the session.
type DeviceRoot struct {
	Instance       *Instance
	VKSurface      vk.Surface
	PhysicalDevice *PhysicalDevice
	Device         *Device

	GraphicsQueue *Queue
	PresentQueue  *Queue
}

// SharedQueueFamilies reports whether graphics and present use one family.
// When they differ, resources shared between the two queues must declare
// concurrent sharing.
func (r *DeviceRoot) SharedQueueFamilies() bool {
	return r.GraphicsQueue.QueueFamily.Index == r.PresentQueue.QueueFamily.Index
}

// bootstrap negotiates instance, surface, physical device, logical device
// and queues, registering every constructed piece on graph so a failure at
// any step unwinds exactly the subset already built.
func bootstrap(app *App, source SurfaceSource, graph *ResourceGraph) (*DeviceRoot, error) {
	root := &DeviceRoot{}

	instance, err := app.CreateInstance()
	if err != nil {
		return nil, fmt.Errorf("unable to create instance: %w", err)
	}
	root.Instance = instance
	graph.Push("instance", instance)

	// Diagnostics are advisory; failing to attach them is a warning only.
	if len(app.EnabledLayers) > 0 {
		if err := instance.UseDefaultDebugCallback(); err != nil {
			log.Printf("vks: debug callback unavailable: %v", err)
		}
	}

	surface, err := source(instance.VKInstance)
	if err != nil {
		return nil, fmt.Errorf("unable to create surface: %w", err)
	}
	root.VKSurface = surface
	graph.PushFunc("surface", func() {
		vk.DestroySurface(instance.VKInstance, surface, nil)
	})

	pdevice, gq, pq, err := selectPhysicalDevice(instance, surface)
	if err != nil {
		return nil, err
	}
	root.PhysicalDevice = pdevice

	families := QueueFamilySlice{gq}
	if pq.Index != gq.Index {
		families = append(families, pq)
	}

	device, err := pdevice.CreateLogicalDeviceWithOptions(families, &CreateDeviceOptions{
		EnabledExtensions: []string{"VK_KHR_swapchain"},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create device: %w", err)
	}
	root.Device = device
	graph.Push("device", device)

	root.GraphicsQueue = device.GetQueue(gq)
	if pq.Index == gq.Index {
		root.PresentQueue = root.GraphicsQueue
	} else {
		root.PresentQueue = device.GetQueue(pq)
	}

	log.Printf("vks: using %s (graphics family %d, present family %d)",
		pdevice, gq.Index, pq.Index)

	return root, nil
}

// selectPhysicalDevice returns the first device exposing a graphics-capable
// family, a present-capable family for surface and the swapchain extension.
// The two families may be the same index; a device with a combined family is
// preferred when it has one.
func selectPhysicalDevice(instance *Instance, surface vk.Surface) (*PhysicalDevice, *QueueFamily, *QueueFamily, error) {
	pdevices, err := instance.PhysicalDevices()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error getting devices: %w", err)
	}

	for _, pdevice := range pdevices {
		if !pdevice.SupportsExtension("VK_KHR_swapchain") {
			continue
		}

		families, err := pdevice.QueueFamilies()
		if err != nil {
			log.Printf("vks: skipping %s: %v", pdevice, err)
			continue
		}

		if both := families.FilterGraphicsAndPresent(surface); len(both) > 0 {
			return pdevice, both[0], both[0], nil
		}

		graphics := families.FilterGraphics()
		present := families.FilterPresent(surface)
		if len(graphics) > 0 && len(present) > 0 {
			return pdevice, graphics[0], present[0], nil
		}
	}

	return nil, nil, nil, ErrNoSuitableDevice
}
