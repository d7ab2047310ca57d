package vks

// Owned is an exclusive owner of one opaque Vulkan handle paired with the
// operation that destroys it. Handles which need a parent object to be
// destroyed (most of them: views need the device, the surface needs the
// instance) capture that parent in the destroy closure, so the closure must
// be set before the handle is.
//
// The zero Owned holds nothing and its Destroy is a no-op. Owned values must
// not be copied; transfer ownership with Move, which nulls the source so at
// most one Destroy ever reaches the handle.
type Owned[H comparable] struct {
	handle  H
	destroy func(H)
}

// Own takes exclusive ownership of handle. destroy is invoked at most once,
// by Destroy, and only while the handle is held.
func Own[H comparable](handle H, destroy func(H)) Owned[H] {
	return Owned[H]{handle: handle, destroy: destroy}
}

// Get returns the raw handle without transferring ownership.
func (o *Owned[H]) Get() H {
	return o.handle
}

// Held reports whether o currently owns a handle.
func (o *Owned[H]) Held() bool {
	var zero H
	return o.handle != zero
}

// Release relinquishes ownership to the caller. The returned handle will no
// longer be destroyed by o; destroying it becomes the caller's problem.
func (o *Owned[H]) Release() H {
	h := o.handle
	var zero H
	o.handle = zero
	return h
}

// Move transfers ownership out of o, leaving it empty. The source's Destroy
// becomes a no-op, so there is no double-free window.
func (o *Owned[H]) Move() Owned[H] {
	moved := Owned[H]{handle: o.handle, destroy: o.destroy}
	var zero H
	o.handle = zero
	return moved
}

// Destroy invokes the destroy operation iff a handle is held, then empties o.
// Calling Destroy again is a no-op.
func (o *Owned[H]) Destroy() {
	var zero H
	if o.handle == zero {
		return
	}
	if o.destroy != nil {
		o.destroy(o.handle)
	}
	o.handle = zero
}
