// Package framesync orders two asynchronous frame streams for compositing.
//
// The package models each upstream stream as a demand-driven Source and
// composes exactly two of them: a main stream and an overlay stream. Each
// call to Synchronizer.Advance yields the pair of frames that should be
// composited next, promoting whichever stream's queued frame carries the
// lower presentation timestamp.
package framesync

import "github.com/opd-ai/overlay/frame"

// Source produces the next frame of a stream on demand.
//
// NextFrame returns the next frame, or io.EOF once the stream is
// exhausted. After returning io.EOF a Source keeps returning io.EOF.
// Any other error is a stream failure and is propagated unchanged.
type Source interface {
	NextFrame() (*frame.Frame, error)
}

// Stream names one of the two inputs of a Synchronizer.
type Stream int

const (
	// Main is the base layer; its geometry defines the output geometry.
	Main Stream = iota
	// Overlay is the layer blended on top of the main stream.
	Overlay
)

// String returns the stream name used in logs.
func (s Stream) String() string {
	if s == Main {
		return "main"
	}
	return "overlay"
}
