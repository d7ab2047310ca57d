/*
Package vks manages the lifetime of Vulkan resources and the per-frame
synchronization protocol for a host-embedded render session.

The host supplies a drawable surface, SPIR-V shader blobs and a stream of
begin-frame/draw/end-frame calls; this package owns everything in between:
instance and device negotiation, the swapchain and its dependent views and
framebuffers, the fixed set of frames-in-flight with their semaphores and
fences, and a persistently mapped bump buffer for per-frame geometry.

Native Vulkan objects are exposed on every wrapper with a 'VK' prefix in the
field name, so applications are not limited by what this package provides.

A typical host does:

	session, err := vks.CreateSession(cfg, surfaceSource, width, height)
	...
	for running {
		if !session.BeginFrame() {
			continue // swapchain went stale, frame skipped
		}
		session.Draw(vks.TopologyTriangles, verts, transform)
		session.EndFrame()
	}
	session.Destroy()

All session methods must be driven from a single render thread. The GPU runs
asynchronously; fences bound the pipeline depth to the configured number of
frames in flight.
*/
package vks
