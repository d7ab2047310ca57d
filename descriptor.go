package vks

import (
	vk "github.com/vulkan-go/vulkan"
)

// DescriptorSetLayout describes the layout of a descriptorset
type DescriptorSetLayout struct {
	Device                *Device
	VKDescriptorSetLayout vk.DescriptorSetLayout
}

// CreateUniformBufferLayout creates the one layout every pipeline in the
// session shares: a single uniform buffer visible to the vertex stage.
func (d *Device) CreateUniformBufferLayout() (*DescriptorSetLayout, error) {
	bindings := []vk.DescriptorSetLayoutBinding{{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}}

	createInfo := &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}

	var layout vk.DescriptorSetLayout
	err := vk.Error(vk.CreateDescriptorSetLayout(d.VKDevice, createInfo, nil, &layout))
	if err != nil {
		return nil, err
	}

	return &DescriptorSetLayout{Device: d, VKDescriptorSetLayout: layout}, nil
}

func (l *DescriptorSetLayout) Destroy() {
	vk.DestroyDescriptorSetLayout(l.Device.VKDevice, l.VKDescriptorSetLayout, nil)
}

// DescriptorPool holds the fixed handful of sets the frame slots need.
type DescriptorPool struct {
	Device           *Device
	VKDescriptorPool vk.DescriptorPool
}

func (d *Device) CreateDescriptorPool(uniformBuffers int) (*DescriptorPool, error) {
	poolSizes := []vk.DescriptorPoolSize{{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: uint32(uniformBuffers),
	}}

	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(uniformBuffers),
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	err := vk.Error(vk.CreateDescriptorPool(d.VKDevice, &createInfo, nil, &pool))
	if err != nil {
		return nil, err
	}

	return &DescriptorPool{Device: d, VKDescriptorPool: pool}, nil
}

func (p *DescriptorPool) Destroy() {
	vk.DestroyDescriptorPool(p.Device.VKDevice, p.VKDescriptorPool, nil)
}

// Allocate allocates one set from the pool for the given layout. Sets are
// returned to the device when the pool is destroyed; they are not freed
// individually.
func (p *DescriptorPool) Allocate(layout *DescriptorSetLayout) (vk.DescriptorSet, error) {
	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     p.VKDescriptorPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.VKDescriptorSetLayout},
	}

	var set vk.DescriptorSet
	err := vk.Error(vk.AllocateDescriptorSets(p.Device.VKDevice, &allocateInfo, &set))
	if err != nil {
		return nil, err
	}
	return set, nil
}

// WriteUniformBuffer points set's binding 0 at the whole of buffer.
func (d *Device) WriteUniformBuffer(set vk.DescriptorSet, buffer *Buffer) {
	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer.VKBuffer,
		Offset: 0,
		Range:  vk.DeviceSize(buffer.Size),
	}

	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}

	vk.UpdateDescriptorSets(d.VKDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)
}
