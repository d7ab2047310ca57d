package vks

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormatPrefersBGRA8(t *testing.T) {
	available := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	got := chooseSurfaceFormat(available)
	if got.Format != vk.FormatB8g8r8a8Unorm {
		t.Errorf("chose format %v, want FormatB8g8r8a8Unorm", got.Format)
	}
}

func TestChooseSurfaceFormatFallsThroughDeterministically(t *testing.T) {
	// Second preference when the first is missing.
	available := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	if got := chooseSurfaceFormat(available); got.Format != vk.FormatB8g8r8a8Srgb {
		t.Errorf("chose format %v, want FormatB8g8r8a8Srgb", got.Format)
	}

	// First reported when no preference matches.
	available = []vk.SurfaceFormat{
		{Format: vk.FormatR5g6b5UnormPack16, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}
	if got := chooseSurfaceFormat(available); got.Format != vk.FormatR5g6b5UnormPack16 {
		t.Errorf("chose format %v, want first available", got.Format)
	}
}

func TestChoosePresentMode(t *testing.T) {
	withMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeMailbox, vk.PresentModeFifo}
	if got := choosePresentMode(withMailbox); got != vk.PresentModeMailbox {
		t.Errorf("chose %v, want mailbox", got)
	}

	withoutMailbox := []vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}
	if got := choosePresentMode(withoutMailbox); got != vk.PresentModeFifo {
		t.Errorf("chose %v, want fifo", got)
	}
}

func TestChooseExtent(t *testing.T) {
	// Device-reported current extent is authoritative when set.
	caps := &vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 800, Height: 600},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	got := chooseExtent(caps, vk.Extent2D{Width: 1080, Height: 1920})
	if got.Width != 800 || got.Height != 600 {
		t.Errorf("got %dx%d, want device-reported 800x600", got.Width, got.Height)
	}

	// Variable extent: requested size is clamped into range.
	caps.CurrentExtent = vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	got = chooseExtent(caps, vk.Extent2D{Width: 1080, Height: 1920})
	if got.Width != 1080 || got.Height != 1920 {
		t.Errorf("got %dx%d, want requested 1080x1920", got.Width, got.Height)
	}

	caps.MaxImageExtent = vk.Extent2D{Width: 1024, Height: 1024}
	got = chooseExtent(caps, vk.Extent2D{Width: 1080, Height: 1920})
	if got.Width != 1024 || got.Height != 1024 {
		t.Errorf("got %dx%d, want clamped 1024x1024", got.Width, got.Height)
	}
}

func TestChooseImageCount(t *testing.T) {
	caps := &vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}
	if got := chooseImageCount(caps); got != 3 {
		t.Errorf("got %d, want min+1 = 3 with unbounded max", got)
	}

	caps = &vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}
	if got := chooseImageCount(caps); got != 2 {
		t.Errorf("got %d, want clamped to max 2", got)
	}
}

func TestChooseCompositeAlpha(t *testing.T) {
	supported := vk.CompositeAlphaFlags(vk.CompositeAlphaInheritBit | vk.CompositeAlphaPostMultipliedBit)
	if got := chooseCompositeAlpha(supported); got != vk.CompositeAlphaInheritBit {
		t.Errorf("got %v, want inherit (highest supported preference)", got)
	}

	supported = vk.CompositeAlphaFlags(vk.CompositeAlphaOpaqueBit | vk.CompositeAlphaInheritBit)
	if got := chooseCompositeAlpha(supported); got != vk.CompositeAlphaOpaqueBit {
		t.Errorf("got %v, want opaque", got)
	}
}

// Scenario: a 1080x1920 surface with variable extent and min image count 2
// resolves to >= 3 images, sRGB BGRA8 and the requested extent.
func TestSwapchainSelectionScenario(t *testing.T) {
	caps := &vk.SurfaceCapabilities{
		MinImageCount:  2,
		MaxImageCount:  8,
		CurrentExtent:  vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	formats := []vk.SurfaceFormat{
		{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
	}

	if count := chooseImageCount(caps); count < caps.MinImageCount+1 {
		t.Errorf("image count %d, want >= %d", count, caps.MinImageCount+1)
	}
	f := chooseSurfaceFormat(formats)
	if f.Format != vk.FormatB8g8r8a8Unorm || f.ColorSpace != vk.ColorSpaceSrgbNonlinear {
		t.Errorf("format %v/%v, want BGRA8 with sRGB color space", f.Format, f.ColorSpace)
	}
	if e := chooseExtent(caps, vk.Extent2D{Width: 1080, Height: 1920}); e.Width != 1080 || e.Height != 1920 {
		t.Errorf("extent %dx%d, want 1080x1920", e.Width, e.Height)
	}
}
