package framesync

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/overlay/frame"
)

// slot holds the frames of one stream: the frame currently being
// composited and at most one queued successor.
//
// Invariant: pending is occupied only if current is occupied. A stream
// primes into current before any pending may exist.
type slot struct {
	current *frame.Frame
	pending *frame.Frame
}

// submit places a frame into the slot: into current while priming,
// otherwise into pending. A second frame arriving while pending is
// occupied violates the one-outstanding-pull-per-stream contract.
func (sl *slot) submit(f *frame.Frame) error {
	if f == nil {
		return ErrNilFrame
	}
	if sl.current == nil {
		sl.current = f
		return nil
	}
	if sl.pending != nil {
		return ErrPendingOccupied
	}
	sl.pending = f
	return nil
}

// promote replaces current with pending and clears pending. The previous
// current is released here; no reference to it survives the call.
func (sl *slot) promote() {
	sl.current = sl.pending
	sl.pending = nil
}

// Synchronizer decides which of two streams advances next.
//
// Every successful Advance yields a valid (main, overlay) pair of current
// frames. End of stream is reported as io.EOF exactly when both streams
// are exhausted, or immediately if either stream ends before priming
// completes; once reported it is terminal and repeats idempotently.
type Synchronizer struct {
	mainSource    Source
	overlaySource Source

	main    slot
	overlay slot

	done bool
}

// New creates a synchronizer over the two upstream sources.
func New(mainSource, overlaySource Source) *Synchronizer {
	logrus.WithFields(logrus.Fields{
		"function": "framesync.New",
	}).Debug("Creating frame synchronizer")

	return &Synchronizer{
		mainSource:    mainSource,
		overlaySource: overlaySource,
	}
}

// Submit places a frame into the named stream's slot. It is exported for
// callers that push frames directly instead of supplying a Source; the
// synchronizer's own pulls go through the same path.
func (s *Synchronizer) Submit(stream Stream, f *frame.Frame) error {
	sl := s.slot(stream)
	if err := sl.submit(f); err != nil {
		return fmt.Errorf("submit to %s stream: %w", stream, err)
	}
	return nil
}

func (s *Synchronizer) slot(stream Stream) *slot {
	if stream == Main {
		return &s.main
	}
	return &s.overlay
}

func (s *Synchronizer) source(stream Stream) Source {
	if stream == Main {
		return s.mainSource
	}
	return s.overlaySource
}

// pull requests one frame from the stream's source and submits it.
// Returns io.EOF unchanged when the source is exhausted.
func (s *Synchronizer) pull(stream Stream) error {
	f, err := s.source(stream).NextFrame()
	if err != nil {
		return err
	}
	return s.Submit(stream, f)
}

// Advance moves the stream pair one step forward and returns the frames
// to composite.
//
// The step sequence:
//  1. Prime any stream that has no current frame with a single pull; if a
//     source ends here, no output is possible and io.EOF is returned.
//  2. Fill any empty pending with a single pull per stream.
//  3. If neither stream produced a pending frame, both are exhausted:
//     io.EOF, terminal.
//  4. Promote the stream whose pending frame has the strictly lower
//     timestamp; on a tie both streams promote in the same call. A stream
//     whose source already ended keeps its last current frame.
func (s *Synchronizer) Advance() (mainCur, overlayCur *frame.Frame, err error) {
	if s.done {
		return nil, nil, io.EOF
	}

	if s.main.current == nil || s.overlay.current == nil {
		if err := s.prime(); err != nil {
			return nil, nil, err
		}
		return s.main.current, s.overlay.current, nil
	}

	exhausted := 0
	for _, stream := range []Stream{Main, Overlay} {
		if s.slot(stream).pending != nil {
			continue
		}
		switch err := s.pull(stream); {
		case err == nil:
		case err == io.EOF:
			exhausted++
		default:
			return nil, nil, fmt.Errorf("pulling %s stream: %w", stream, err)
		}
	}

	if s.main.pending == nil && s.overlay.pending == nil {
		logrus.WithFields(logrus.Fields{
			"function": "Synchronizer.Advance",
			"streams":  exhausted,
		}).Info("Both streams exhausted, ending output")
		s.done = true
		return nil, nil, io.EOF
	}

	s.promoteNext()
	return s.main.current, s.overlay.current, nil
}

// prime fills each empty current slot with one pull. Any end of stream
// during priming terminates the synchronizer immediately.
func (s *Synchronizer) prime() error {
	for _, stream := range []Stream{Main, Overlay} {
		if s.slot(stream).current != nil {
			continue
		}
		if err := s.pull(stream); err != nil {
			if err == io.EOF {
				logrus.WithFields(logrus.Fields{
					"function": "Synchronizer.prime",
					"stream":   stream.String(),
				}).Info("Stream ended before priming, no output possible")
				s.done = true
				return io.EOF
			}
			return fmt.Errorf("priming %s stream: %w", stream, err)
		}
	}
	return nil
}

// promoteNext applies the timestamp tie-break over the pending frames.
// At least one pending frame is present when this is called.
func (s *Synchronizer) promoteNext() {
	var promoted string
	switch {
	case s.overlay.pending == nil:
		s.main.promote()
		promoted = "main"
	case s.main.pending == nil:
		s.overlay.promote()
		promoted = "overlay"
	case s.main.pending.PTS < s.overlay.pending.PTS:
		s.main.promote()
		promoted = "main"
	case s.overlay.pending.PTS < s.main.pending.PTS:
		s.overlay.promote()
		promoted = "overlay"
	default:
		// Equal timestamps: both streams step together.
		s.main.promote()
		s.overlay.promote()
		promoted = "both"
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Synchronizer.promoteNext",
		"promoted":    promoted,
		"main_pts":    s.main.current.PTS,
		"overlay_pts": s.overlay.current.PTS,
	}).Debug("Promoted pending frame")
}

// Current returns the current frame pair without advancing. Either frame
// may be nil before priming completes.
func (s *Synchronizer) Current() (mainCur, overlayCur *frame.Frame) {
	return s.main.current, s.overlay.current
}

// Done reports whether end of stream has been reached.
func (s *Synchronizer) Done() bool {
	return s.done
}
