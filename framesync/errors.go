package framesync

import "errors"

// Sentinel errors for frame synchronization.
// These errors enable reliable error classification using errors.Is().

var (
	// ErrPendingOccupied indicates a frame was submitted into a slot whose
	// pending position is already taken. Under the one-outstanding-pull-
	// per-stream contract this is unreachable; seeing it means the upstream
	// protocol was violated.
	ErrPendingOccupied = errors.New("pending slot already occupied")

	// ErrNilFrame indicates a nil frame was submitted into a slot.
	ErrNilFrame = errors.New("frame cannot be nil")
)
