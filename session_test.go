package vks

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	vk "github.com/vulkan-go/vulkan"
)

func TestResizeTrackerIdenticalSizeIsNoop(t *testing.T) {
	var tr resizeTracker
	if !tr.observe(800, 600) {
		t.Fatal("first non-zero size should rebuild")
	}
	if tr.observe(800, 600) {
		t.Fatal("repeating the current size should not rebuild")
	}
	if !tr.observe(801, 600) {
		t.Fatal("changed size should rebuild")
	}
}

func TestResizeTrackerZeroAreaMinimizes(t *testing.T) {
	var tr resizeTracker
	tr.observe(800, 600)

	if tr.observe(0, 0) {
		t.Fatal("zero-area size must not rebuild")
	}
	if !tr.minimized {
		t.Fatal("zero-area size must mark the tracker minimized")
	}
	if tr.observe(0, 600) {
		t.Fatal("zero-width size must not rebuild")
	}
}

func TestResizeTrackerRestoreAfterMinimize(t *testing.T) {
	var tr resizeTracker
	tr.observe(1080, 1920)

	if tr.observe(0, 0) {
		t.Fatal("minimize must not rebuild")
	}

	// Restoring to the same size still rebuilds exactly once: the chain
	// may have gone stale while the surface had no area.
	if !tr.observe(1080, 1920) {
		t.Fatal("restore must rebuild")
	}
	if tr.observe(1080, 1920) {
		t.Fatal("repeated size after restore must not rebuild again")
	}

	got := tr.extent()
	if got.Width != 1080 || got.Height != 1920 {
		t.Fatalf("tracked extent %dx%d, want 1080x1920", got.Width, got.Height)
	}
}

func TestClassifyAcquire(t *testing.T) {
	cases := []struct {
		res  vk.Result
		want acquireVerdict
	}{
		{vk.Success, acquireOk},
		{vk.Suboptimal, acquireDegraded},
		{vk.ErrorOutOfDate, acquireStale},
		{vk.ErrorDeviceLost, acquireFailed},
		{vk.ErrorSurfaceLost, acquireFailed},
	}
	for _, c := range cases {
		if got := classifyAcquire(c.res); got != c.want {
			t.Errorf("classifyAcquire(%d) = %d, want %d", c.res, got, c.want)
		}
	}
}

func TestClassifyPresent(t *testing.T) {
	cases := []struct {
		res  vk.Result
		want presentVerdict
	}{
		{vk.Success, presentOk},
		// Both staleness codes schedule a rebuild; the frame still counts.
		{vk.Suboptimal, presentStale},
		{vk.ErrorOutOfDate, presentStale},
		{vk.ErrorDeviceLost, presentFailed},
	}
	for _, c := range cases {
		if got := classifyPresent(c.res); got != c.want {
			t.Errorf("classifyPresent(%d) = %d, want %d", c.res, got, c.want)
		}
	}
}

// A session that suffered a hard submit or present failure may hold slot
// fences that will never signal; it must refuse frames rather than wait.
func TestUnstableSessionRefusesFrames(t *testing.T) {
	s := &Session{unstable: true}

	if s.BeginFrame() {
		t.Fatal("unstable session must not begin a frame")
	}
	if err := s.Draw(TopologyTriangles, []Vertex{{}, {}, {}}, mgl32.Ident4()); err != nil {
		t.Fatalf("draw on unstable session returned %v, want nil no-op", err)
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("end on unstable session returned %v, want nil no-op", err)
	}
}

func TestDrawOutsideFrameIsNoop(t *testing.T) {
	s := &Session{}

	verts := []Vertex{{}, {}, {}}
	if err := s.Draw(TopologyTriangles, verts, mgl32.Ident4()); err != nil {
		t.Fatalf("draw outside a frame returned %v, want nil", err)
	}
	if err := s.EndFrame(); err != nil {
		t.Fatalf("end without begin returned %v, want nil", err)
	}
}
