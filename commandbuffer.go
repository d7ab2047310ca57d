package vks

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// CommandBuffer describes a sequence of commands that will be executed upon
// being sent to a device queue. Only the commands the frame protocol needs
// are wrapped; anything else goes through the native handle via VK().
type CommandBuffer struct {
	VKCommandBuffer vk.CommandBuffer
}

// VK is a utility function for accessing the native vulkan command buffer
func (c *CommandBuffer) VK() vk.CommandBuffer {
	return c.VKCommandBuffer
}

// Reset this command buffer
func (c *CommandBuffer) Reset() error {
	return vk.Error(vk.ResetCommandBuffer(c.VKCommandBuffer, 0))
}

// Begin capturing work for this command buffer
func (c *CommandBuffer) Begin() error {
	var beginInfo = vk.CommandBufferBeginInfo{}
	beginInfo.SType = vk.StructureTypeCommandBufferBeginInfo
	beginInfo.Flags = vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	return vk.Error(vk.BeginCommandBuffer(c.VKCommandBuffer, &beginInfo))
}

// End describing work for this command buffer
func (c *CommandBuffer) End() error {
	return vk.Error(vk.EndCommandBuffer(c.VKCommandBuffer))
}

// CmdBeginRenderPass starts the pass against one framebuffer, clearing the
// color attachment.
func (c *CommandBuffer) CmdBeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearColor [4]float32) {
	clearValues := []vk.ClearValue{
		vk.NewClearValue(clearColor[:]),
	}
	vk.CmdBeginRenderPass(c.VKCommandBuffer, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)
}

func (c *CommandBuffer) CmdEndRenderPass() {
	vk.CmdEndRenderPass(c.VKCommandBuffer)
}

// CmdSetViewportScissor sets a full-extent viewport and scissor, both of
// which the pipelines declare as dynamic state.
func (c *CommandBuffer) CmdSetViewportScissor(extent vk.Extent2D) {
	vk.CmdSetViewport(c.VKCommandBuffer, 0, 1, []vk.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(c.VKCommandBuffer, 0, 1, []vk.Rect2D{{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}})
}

func (c *CommandBuffer) CmdBindGraphicsPipeline(pipeline vk.Pipeline) {
	vk.CmdBindPipeline(c.VKCommandBuffer, vk.PipelineBindPointGraphics, pipeline)
}

func (c *CommandBuffer) CmdBindDescriptorSet(layout vk.PipelineLayout, set vk.DescriptorSet) {
	vk.CmdBindDescriptorSets(c.VKCommandBuffer, vk.PipelineBindPointGraphics,
		layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
}

// CmdPushConstants pushes a small inline constant block to the vertex stage.
func (c *CommandBuffer) CmdPushConstants(layout vk.PipelineLayout, data unsafe.Pointer, size uint32) {
	vk.CmdPushConstants(c.VKCommandBuffer, layout,
		vk.ShaderStageFlags(vk.ShaderStageVertexBit), 0, size, data)
}

// CmdBindVertexBuffer binds buffer at the given byte offset as binding 0.
func (c *CommandBuffer) CmdBindVertexBuffer(buffer vk.Buffer, offset uint64) {
	vk.CmdBindVertexBuffers(c.VKCommandBuffer, 0, 1,
		[]vk.Buffer{buffer}, []vk.DeviceSize{vk.DeviceSize(offset)})
}

func (c *CommandBuffer) CmdDraw(vertexCount int) {
	vk.CmdDraw(c.VKCommandBuffer, uint32(vertexCount), 1, 0, 0)
}
