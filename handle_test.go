package vks

import (
	"testing"
)

func TestOwnedDestroyOnce(t *testing.T) {
	destroyed := 0
	o := Own(uintptr(42), func(h uintptr) {
		if h != 42 {
			t.Errorf("destroy saw handle %d, want 42", h)
		}
		destroyed++
	})

	if !o.Held() {
		t.Error("expected handle to be held")
	}
	if o.Get() != 42 {
		t.Errorf("Get returned %d, want 42", o.Get())
	}

	o.Destroy()
	o.Destroy()
	if destroyed != 1 {
		t.Errorf("destroy ran %d times, want 1", destroyed)
	}
	if o.Held() {
		t.Error("handle still held after Destroy")
	}
}

func TestOwnedMove(t *testing.T) {
	destroyed := 0
	src := Own(uintptr(7), func(uintptr) { destroyed++ })

	dst := src.Move()

	if src.Held() {
		t.Error("source still holds handle after move")
	}
	src.Destroy()
	if destroyed != 0 {
		t.Error("destroying a moved-from owner must be a no-op")
	}

	if dst.Get() != 7 {
		t.Errorf("moved handle is %d, want 7", dst.Get())
	}
	dst.Destroy()
	if destroyed != 1 {
		t.Errorf("destroy ran %d times, want 1", destroyed)
	}
}

func TestOwnedRelease(t *testing.T) {
	destroyed := 0
	o := Own(uintptr(9), func(uintptr) { destroyed++ })

	h := o.Release()
	if h != 9 {
		t.Errorf("Release returned %d, want 9", h)
	}
	o.Destroy()
	if destroyed != 0 {
		t.Error("destroy must not run after Release")
	}
}

func TestOwnedZeroValue(t *testing.T) {
	var o Owned[uintptr]
	if o.Held() {
		t.Error("zero Owned claims to hold a handle")
	}
	o.Destroy() // must not panic
}
