package vks

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

// Topology selects which precompiled pipeline a draw batch uses.
type Topology int

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyTriangles

	topologyCount = 3
)

func (t Topology) vk() vk.PrimitiveTopology {
	switch t {
	case TopologyPoints:
		return vk.PrimitiveTopologyPointList
	case TopologyLines:
		return vk.PrimitiveTopologyLineList
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func (t Topology) String() string {
	switch t {
	case TopologyPoints:
		return "points"
	case TopologyLines:
		return "lines"
	case TopologyTriangles:
		return "triangles"
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

// Vertex is the fixed attribute layout every pipeline expects: interleaved
// position and color. The stride and offsets here must match the vertex
// shader's input bindings.
type Vertex struct {
	Pos   mgl32.Vec3
	Color mgl32.Vec3
}

// VertexStride is the byte size of one Vertex.
const VertexStride = int(unsafe.Sizeof(Vertex{}))

// VertexBytes reinterprets a vertex slice as raw bytes for the per-frame
// geometry buffer.
func VertexBytes(verts []Vertex) []byte {
	if len(verts) == 0 {
		return nil
	}
	return ToBytes(unsafe.Pointer(&verts[0]), len(verts)*VertexStride)
}

func vertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    uint32(VertexStride),
		InputRate: vk.VertexInputRateVertex,
	}}
}

func vertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Pos)),
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   uint32(unsafe.Offsetof(Vertex{}.Color)),
		},
	}
}

// transformBlock is the per-batch inline constant block pushed to the vertex
// stage: the model transform for the batch.
type transformBlock struct {
	Model mgl32.Mat4
}

const transformBlockSize = uint32(unsafe.Sizeof(transformBlock{}))

// pipelineSet holds the session's three precompiled graphics pipelines, one
// per primitive topology, sharing one layout. Viewport and scissor are
// dynamic state so swapchain rebuilds never touch the pipelines.
type pipelineSet struct {
	device *Device

	descriptorLayout *DescriptorSetLayout
	vkLayout         vk.PipelineLayout
	pipelines        [topologyCount]vk.Pipeline

	vertexShader   *ShaderModule
	fragmentShader *ShaderModule
}

func buildPipelineSet(device *Device, renderPass vk.RenderPass, vertexSPV, fragmentSPV []byte) (*pipelineSet, error) {
	set := &pipelineSet{device: device}

	var err error
	set.descriptorLayout, err = device.CreateUniformBufferLayout()
	if err != nil {
		return nil, fmt.Errorf("unable to create descriptor set layout: %w", err)
	}

	set.vertexShader, err = device.CreateShaderModule(vertexSPV)
	if err != nil {
		set.Destroy()
		return nil, fmt.Errorf("unable to create vertex shader: %w", err)
	}
	set.fragmentShader, err = device.CreateShaderModule(fragmentSPV)
	if err != nil {
		set.Destroy()
		return nil, fmt.Errorf("unable to create fragment shader: %w", err)
	}

	pushConstants := []vk.PushConstantRange{{
		StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		Offset:     0,
		Size:       transformBlockSize,
	}}

	layoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         1,
		PSetLayouts:            []vk.DescriptorSetLayout{set.descriptorLayout.VKDescriptorSetLayout},
		PushConstantRangeCount: uint32(len(pushConstants)),
		PPushConstantRanges:    pushConstants,
	}

	err = vk.Error(vk.CreatePipelineLayout(device.VKDevice, &layoutCreateInfo, nil, &set.vkLayout))
	if err != nil {
		set.Destroy()
		return nil, fmt.Errorf("unable to create pipeline layout: %w", err)
	}

	configs := make([]vk.GraphicsPipelineCreateInfo, topologyCount)
	for i := 0; i < topologyCount; i++ {
		configs[i] = set.pipelineCreateInfo(Topology(i), renderPass)
	}

	pipelines := make([]vk.Pipeline, topologyCount)
	err = vk.Error(vk.CreateGraphicsPipelines(device.VKDevice, vk.PipelineCache(vk.NullHandle),
		uint32(len(configs)), configs, nil, pipelines))
	if err != nil {
		set.Destroy()
		return nil, fmt.Errorf("unable to create graphics pipelines: %w", err)
	}
	copy(set.pipelines[:], pipelines)

	return set, nil
}

func (s *pipelineSet) pipelineCreateInfo(topology Topology, renderPass vk.RenderPass) vk.GraphicsPipelineCreateInfo {

	shaderStages := []vk.PipelineShaderStageCreateInfo{
		s.vertexShader.VKPipelineShaderStageCreateInfo(vk.ShaderStageVertexBit, "main"),
		s.fragmentShader.VKPipelineShaderStageCreateInfo(vk.ShaderStageFragmentBit, "main"),
	}

	bindings := vertexBindingDescriptions()
	attributes := vertexAttributeDescriptions()

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               topology.vk(),
		PrimitiveRestartEnable: vk.False,
	}

	// Counts only; the actual viewport/scissor are dynamic.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vk.CullModeFlags(vk.CullModeNone),
		FrontFace:               vk.FrontFaceCounterClockwise,
		DepthBiasEnable:         vk.False,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vk.False,
		RasterizationSamples: vk.SampleCount1Bit,
	}

	blendAttachments := []vk.PipelineColorBlendAttachmentState{{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:    vk.False,
	}}

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	return vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterState,
		PMultisampleState:   &multisampleState,
		PColorBlendState:    &colorBlendState,
		PDynamicState:       &dynamicState,
		Layout:              s.vkLayout,
		RenderPass:          renderPass,
		Subpass:             0,
	}
}

// pipeline returns the precompiled pipeline for topology.
func (s *pipelineSet) pipeline(topology Topology) vk.Pipeline {
	return s.pipelines[topology]
}

func (s *pipelineSet) Destroy() {
	for i, p := range s.pipelines {
		if p != vk.NullPipeline {
			vk.DestroyPipeline(s.device.VKDevice, p, nil)
			s.pipelines[i] = vk.NullPipeline
		}
	}
	if s.vkLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(s.device.VKDevice, s.vkLayout, nil)
		s.vkLayout = vk.NullPipelineLayout
	}
	if s.fragmentShader != nil {
		s.fragmentShader.Destroy()
		s.fragmentShader = nil
	}
	if s.vertexShader != nil {
		s.vertexShader.Destroy()
		s.vertexShader = nil
	}
	if s.descriptorLayout != nil {
		s.descriptorLayout.Destroy()
		s.descriptorLayout = nil
	}
}
