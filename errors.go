package vks

import (
	"errors"
)

var (
	// ErrNoSuitableDevice means no physical device offers graphics plus
	// presentation to the given surface. Fatal at initialization.
	ErrNoSuitableDevice = errors.New("vks: no suitable physical device")

	// ErrOutOfCapacity is returned when a draw batch does not fit in the
	// remainder of the per-frame vertex buffer. The offending draw is
	// dropped; the frame and session stay usable.
	ErrOutOfCapacity = errors.New("vks: per-frame vertex buffer capacity exceeded")

	// ErrDeviceUnstable wraps a submit or present failure that is not a
	// staleness signal (e.g. device lost). The frame was abandoned and the
	// session refuses further frames, since a slot fence may never signal
	// again; the host decides whether to tear down.
	ErrDeviceUnstable = errors.New("vks: device submit/present failure")
)
