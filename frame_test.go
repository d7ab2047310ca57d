package vks

import "testing"

func TestFrameCursorAdvance(t *testing.T) {
	c := newFrameCursor(DefaultFramesInFlight)

	if c.index() != 0 {
		t.Fatalf("fresh cursor at %d, want 0", c.index())
	}

	// Three frames with two slots land on 1, 0, 1.
	want := []int{1, 0, 1}
	for i, w := range want {
		c.advance()
		if c.index() != w {
			t.Fatalf("after frame %d cursor at %d, want %d", i+1, c.index(), w)
		}
	}
}

func TestFrameCursorStaysInRange(t *testing.T) {
	for _, slots := range []int{1, 2, 3, 5} {
		c := newFrameCursor(slots)
		prev := c.index()
		for i := 0; i < 100; i++ {
			c.advance()
			cur := c.index()
			if cur < 0 || cur >= slots {
				t.Fatalf("slots=%d: cursor %d out of range", slots, cur)
			}
			if cur != (prev+1)%slots {
				t.Fatalf("slots=%d: cursor jumped from %d to %d", slots, prev, cur)
			}
			prev = cur
		}
	}
}
