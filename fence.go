package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// VKCreateFence creates a native fence, signaled or not. Frame slot fences
// start signaled so the first wait on a never-submitted slot returns
// immediately.
func (d *Device) VKCreateFence(signaled bool) (vk.Fence, error) {
	var fence vk.Fence
	var fenceCreateInfo = vk.FenceCreateInfo{}
	fenceCreateInfo.SType = vk.StructureTypeFenceCreateInfo
	if signaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	err := vk.Error(vk.CreateFence(d.VKDevice, &fenceCreateInfo, nil, &fence))
	if err != nil {
		return vk.NullFence, err
	}
	return fence, nil
}

func (d *Device) VKDestroyFence(f vk.Fence) {
	vk.DestroyFence(d.VKDevice, f, nil)
}

// VKWaitForFence blocks until f signals. No timeout: an unresponsive driver
// hangs the render thread, which is an inherited primitive-level constraint.
func (d *Device) VKWaitForFence(f vk.Fence) error {
	return vk.Error(vk.WaitForFences(d.VKDevice, 1, []vk.Fence{f}, vk.True, vk.MaxUint64))
}

func (d *Device) VKResetFence(f vk.Fence) error {
	return vk.Error(vk.ResetFences(d.VKDevice, 1, []vk.Fence{f}))
}

func (d *Device) VKGetFenceStatus(f vk.Fence) vk.Result {
	return vk.GetFenceStatus(d.VKDevice, f)
}
