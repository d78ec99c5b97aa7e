// Package source provides upstream frame producers for the overlay
// pipeline.
//
// A producer is a demand-driven "next frame or end" operation: each call
// either yields one frame or reports io.EOF, and io.EOF repeats once
// reported. Demuxing and decoding of real container formats stay outside
// this module; the producers here read raw, pre-decoded video.
package source

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/overlay/frame"
)

// Raw reads fixed-geometry raw video frames from an io.Reader, one
// tightly packed frame after another, and stamps them with monotonically
// increasing presentation timestamps.
type Raw struct {
	r       io.Reader
	width   int
	height  int
	format  frame.PixelFormat
	ptsStep int64

	nextPTS int64
	count   int64
	eof     bool
}

// NewRaw creates a raw video source. Every frame read advances the
// timestamp by ptsStep, starting at zero.
func NewRaw(r io.Reader, width, height int, format frame.PixelFormat, ptsStep int64) (*Raw, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if ptsStep <= 0 {
		return nil, fmt.Errorf("pts step must be positive, got %d", ptsStep)
	}
	// Reject unknown formats up front rather than on the first read.
	if _, err := frame.Alloc(width, height, format); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "source.NewRaw",
		"width":    width,
		"height":   height,
		"format":   format.String(),
		"pts_step": ptsStep,
	}).Debug("Creating raw video source")

	return &Raw{
		r:       r,
		width:   width,
		height:  height,
		format:  format,
		ptsStep: ptsStep,
	}, nil
}

// NextFrame reads one frame. A clean end of input before the first byte
// of a frame is io.EOF; input ending mid-frame is a truncation error.
func (s *Raw) NextFrame() (*frame.Frame, error) {
	if s.eof {
		return nil, io.EOF
	}

	f, err := frame.Alloc(s.width, s.height, s.format)
	if err != nil {
		return nil, err
	}

	for p := 0; p < s.format.PlaneCount(); p++ {
		if _, err := io.ReadFull(s.r, f.Data[p]); err != nil {
			s.eof = true
			if p == 0 && err == io.EOF {
				logrus.WithFields(logrus.Fields{
					"function": "Raw.NextFrame",
					"frames":   s.count,
				}).Debug("Raw source exhausted")
				return nil, io.EOF
			}
			return nil, fmt.Errorf("truncated frame %d: %v", s.count, err)
		}
	}

	f.PTS = s.nextPTS
	s.nextPTS += s.ptsStep
	s.count++
	return f, nil
}

// Frames is a source over a fixed, in-memory frame sequence. Useful for
// synthetic inputs and tests.
type Frames struct {
	frames []*frame.Frame
	next   int
}

// NewFrames creates a source that yields the given frames in order.
func NewFrames(frames ...*frame.Frame) *Frames {
	return &Frames{frames: frames}
}

// NextFrame yields the next queued frame or io.EOF.
func (s *Frames) NextFrame() (*frame.Frame, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}
