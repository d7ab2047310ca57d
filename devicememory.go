package vks

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// DeviceMemory maps to Vulkan DeviceMemory and can either be memory on the
// host or on the device.
type DeviceMemory struct {
	Device         *Device
	VKDeviceMemory vk.DeviceMemory
	Size           uint64
	Ptr            unsafe.Pointer
}

// IsMapped returns true if the device memory is currently mapped
func (d *DeviceMemory) IsMapped() bool {
	return d.Ptr != nil
}

func (d *DeviceMemory) Destroy() {
	if d.Ptr != nil {
		d.Unmap()
	}
	vk.FreeMemory(d.Device.VKDevice, d.VKDeviceMemory, nil)
}

// Map maps the entirety of this memory. The mapping persists until Unmap or
// Destroy; host-coherent memory needs no explicit flush for writes to become
// device visible.
func (d *DeviceMemory) Map() (unsafe.Pointer, error) {
	var res unsafe.Pointer
	err := vk.Error(vk.MapMemory(d.Device.VKDevice, d.VKDeviceMemory, 0, vk.DeviceSize(d.Size), 0, &res))
	if err != nil {
		return nil, err
	}
	d.Ptr = res
	return res, nil
}

func (d *DeviceMemory) Unmap() {
	d.Ptr = nil
	vk.UnmapMemory(d.Device.VKDevice, d.VKDeviceMemory)
}

// CopyAt copies data into the mapped region at the given byte offset.
// The memory must be mapped and offset+len(data) within bounds.
func (d *DeviceMemory) CopyAt(offset uint64, data []byte) {
	dst := ToBytes(unsafe.Pointer(uintptr(d.Ptr)+uintptr(offset)), len(data))
	copy(dst, data)
}
