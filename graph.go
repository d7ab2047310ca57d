package vks

import (
	"log"
)

// IDestructable is anything owning Vulkan state that can be torn down.
type IDestructable interface {
	Destroy()
}

// destroyFunc adapts a bare closure to IDestructable.
type destroyFunc func()

func (f destroyFunc) Destroy() { f() }

// ResourceGraph records the device object graph in construction order and
// unwinds it in exact reverse order. Dependents are pushed after the things
// they depend on (instance before surface, device before swapchain, and so
// on), which makes reverse unwind the dependency-safe teardown order.
//
// Unwind destroys each entry exactly once; a second Unwind is a no-op. A
// partially built graph (bootstrap failed halfway) unwinds just the subset
// that was pushed.
type ResourceGraph struct {
	entries []graphEntry
}

type graphEntry struct {
	name string
	res  IDestructable
}

// Push appends a constructed resource. name shows up in teardown logging.
func (g *ResourceGraph) Push(name string, res IDestructable) {
	g.entries = append(g.entries, graphEntry{name: name, res: res})
}

// PushFunc is Push for a bare destroy closure.
func (g *ResourceGraph) PushFunc(name string, destroy func()) {
	g.Push(name, destroyFunc(destroy))
}

// Len returns the number of live entries.
func (g *ResourceGraph) Len() int {
	return len(g.entries)
}

// Unwind destroys every entry in reverse push order and empties the graph.
func (g *ResourceGraph) Unwind() {
	for i := len(g.entries) - 1; i >= 0; i-- {
		g.entries[i].res.Destroy()
	}
	g.entries = nil
}

// UnwindVerbose is Unwind with per-entry logging, for teardown debugging.
func (g *ResourceGraph) UnwindVerbose() {
	for i := len(g.entries) - 1; i >= 0; i-- {
		log.Printf("vks: destroying %s", g.entries[i].name)
		g.entries[i].res.Destroy()
	}
	g.entries = nil
}
