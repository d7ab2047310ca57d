package vks

import (
	"math/rand"
	"testing"
)

func TestGraphUnwindReverseOrder(t *testing.T) {
	var g ResourceGraph
	var order []int

	for i := 0; i < 5; i++ {
		i := i
		g.PushFunc("entry", func() { order = append(order, i) })
	}

	g.Unwind()

	want := []int{4, 3, 2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("destroyed %d entries, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("destroy order %v, want %v", order, want)
			break
		}
	}
}

func TestGraphUnwindOnce(t *testing.T) {
	var g ResourceGraph
	count := 0
	g.PushFunc("entry", func() { count++ })

	g.Unwind()
	g.Unwind()

	if count != 1 {
		t.Errorf("entry destroyed %d times, want 1", count)
	}
	if g.Len() != 0 {
		t.Errorf("graph has %d entries after unwind, want 0", g.Len())
	}
}

// Partial construction: any prefix of the build sequence unwinds exactly that
// prefix, in reverse.
func TestGraphPartialConstruction(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		n := rng.Intn(10) + 1
		built := rng.Intn(n + 1)

		var g ResourceGraph
		var order []int
		for i := 0; i < built; i++ {
			i := i
			g.PushFunc("entry", func() { order = append(order, i) })
		}

		g.Unwind()

		if len(order) != built {
			t.Fatalf("trial %d: destroyed %d, want %d", trial, len(order), built)
		}
		for i := range order {
			if order[i] != built-1-i {
				t.Fatalf("trial %d: destroy order %v not reverse of construction", trial, order)
			}
		}
	}
}

func TestGraphOwnedEntries(t *testing.T) {
	var g ResourceGraph
	destroyed := 0
	o := Own(uintptr(3), func(uintptr) { destroyed++ })
	g.Push("handle", &o)

	// Destroying via the graph and then directly must still only run once.
	g.Unwind()
	o.Destroy()

	if destroyed != 1 {
		t.Errorf("handle destroyed %d times, want 1", destroyed)
	}
}
