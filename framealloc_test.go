package vks

import (
	"errors"
	"math/rand"
	"testing"
)

func TestBumpAllocatorExactFit(t *testing.T) {
	a := newBumpAllocator(1024)

	sizes := []uint64{256, 512, 128, 128}
	var want uint64
	for _, size := range sizes {
		offset, err := a.Alloc(size)
		if err != nil {
			t.Fatalf("Alloc(%d) failed: %v", size, err)
		}
		if offset != want {
			t.Fatalf("Alloc(%d) returned offset %d, want %d", size, offset, want)
		}
		want += size
	}
	if a.Used() != a.Capacity() {
		t.Fatalf("used %d after exact fill, want %d", a.Used(), a.Capacity())
	}
}

func TestBumpAllocatorOverflow(t *testing.T) {
	a := newBumpAllocator(1024)

	if _, err := a.Alloc(1024); err != nil {
		t.Fatalf("Alloc(capacity) failed: %v", err)
	}
	if _, err := a.Alloc(1); !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("Alloc(1) on a full arena returned %v, want ErrOutOfCapacity", err)
	}
	// A failed allocation must not move the offset.
	if a.Used() != 1024 {
		t.Fatalf("used %d after rejected allocation, want 1024", a.Used())
	}
}

func TestBumpAllocatorRejectsOversized(t *testing.T) {
	a := newBumpAllocator(64)
	if _, err := a.Alloc(65); !errors.Is(err, ErrOutOfCapacity) {
		t.Fatalf("Alloc(65) with capacity 64 returned %v, want ErrOutOfCapacity", err)
	}
	if _, err := a.Alloc(64); err != nil {
		t.Fatalf("Alloc(64) after rejected oversize failed: %v", err)
	}
}

func TestBumpAllocatorNeverExceedsCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 100; trial++ {
		capacity := uint64(1 + rng.Intn(4096))
		a := newBumpAllocator(capacity)

		for i := 0; i < 64; i++ {
			size := uint64(rng.Intn(512))
			offset, err := a.Alloc(size)
			if err != nil {
				if !errors.Is(err, ErrOutOfCapacity) {
					t.Fatalf("trial %d: unexpected error: %v", trial, err)
				}
				continue
			}
			if offset+size > capacity {
				t.Fatalf("trial %d: allocation [%d, %d) exceeds capacity %d",
					trial, offset, offset+size, capacity)
			}
		}
		if a.Used() > capacity {
			t.Fatalf("trial %d: used %d exceeds capacity %d", trial, a.Used(), capacity)
		}
	}
}

func TestBumpAllocatorReset(t *testing.T) {
	a := newBumpAllocator(128)
	if _, err := a.Alloc(100); err != nil {
		t.Fatalf("Alloc(100) failed: %v", err)
	}
	a.Reset()
	if a.Used() != 0 {
		t.Fatalf("used %d after reset, want 0", a.Used())
	}
	offset, err := a.Alloc(128)
	if err != nil {
		t.Fatalf("Alloc(128) after reset failed: %v", err)
	}
	if offset != 0 {
		t.Fatalf("offset %d after reset, want 0", offset)
	}
}
