package overlay

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/overlay/compose"
	"github.com/opd-ai/overlay/frame"
	"github.com/opd-ai/overlay/framesync"
	"github.com/opd-ai/overlay/position"
)

// state tracks the filter's pull loop. The transitions are
// priming -> steady -> done; done is terminal.
type state int

const (
	statePriming state = iota
	stateSteady
	stateDone
)

// Filter is the pull-driven output stage of the compositing pipeline.
//
// Each ReadFrame call primes missing inputs, advances the synchronizer,
// composites the current frame pair and stamps the result. The filter is
// single-threaded: one downstream request at a time, each triggering at
// most one upstream pull per stream.
type Filter struct {
	sync  *framesync.Synchronizer
	comp  *compose.Compositor
	alloc *frame.Allocator

	xExpr, yExpr string
	pos          position.Point

	state state
}

// New creates a filter over the two upstream sources. The pixel formats
// are fixed by the host's format negotiation before the filter is built;
// unsupported pairings are rejected here. The overlay position is
// resolved later, once both streams have reported their dimensions.
func New(mainSource, overlaySource framesync.Source,
	mainFormat, overlayFormat frame.PixelFormat, opts Options) (*Filter, error) {

	comp, err := compose.New(mainFormat, overlayFormat)
	if err != nil {
		return nil, err
	}

	xExpr, yExpr := parsePosition(opts.Position)

	logrus.WithFields(logrus.Fields{
		"function":       "overlay.New",
		"main_format":    mainFormat.String(),
		"overlay_format": overlayFormat.String(),
		"x_expr":         xExpr,
		"y_expr":         yExpr,
	}).Info("Overlay filter created")

	return &Filter{
		sync:  framesync.New(mainSource, overlaySource),
		comp:  comp,
		xExpr: xExpr,
		yExpr: yExpr,
	}, nil
}

// ReadFrame produces the next composited frame.
//
// It returns io.EOF once both streams are exhausted, or immediately if
// either stream ends before delivering its first frame; after that every
// call reports io.EOF. The returned frame is owned by the caller, who may
// hand it back through ReleaseFrame for recycling.
func (f *Filter) ReadFrame() (*frame.Frame, error) {
	if f.state == stateDone {
		return nil, io.EOF
	}

	mainCur, overlayCur, err := f.sync.Advance()
	if err != nil {
		f.state = stateDone
		if err == io.EOF {
			logrus.WithFields(logrus.Fields{
				"function": "Filter.ReadFrame",
			}).Info("End of stream reached")
			return nil, io.EOF
		}
		return nil, err
	}

	if f.state == statePriming {
		// Both dimensions are known now; resolve the position exactly
		// once. An unevaluable expression is fatal.
		if err := f.configure(mainCur, overlayCur); err != nil {
			f.state = stateDone
			return nil, err
		}
		f.state = stateSteady
	}

	out, err := f.alloc.Get()
	if err != nil {
		return nil, err
	}
	if err := f.comp.Compose(out, mainCur, overlayCur, f.pos.X, f.pos.Y); err != nil {
		f.alloc.Put(out)
		return nil, err
	}

	// The output carries the higher of the two current timestamps.
	out.PTS = max(mainCur.PTS, overlayCur.PTS)
	return out, nil
}

func (f *Filter) configure(mainCur, overlayCur *frame.Frame) error {
	pos, err := position.Resolve(f.xExpr, f.yExpr, position.Dimensions{
		MainW:    mainCur.Width,
		MainH:    mainCur.Height,
		OverlayW: overlayCur.Width,
		OverlayH: overlayCur.Height,
	})
	if err != nil {
		return err
	}
	f.pos = pos

	alloc, err := frame.NewAllocator(mainCur.Width, mainCur.Height, mainCur.Format)
	if err != nil {
		return err
	}
	f.alloc = alloc

	logrus.WithFields(logrus.Fields{
		"function": "Filter.configure",
		"x":        pos.X,
		"y":        pos.Y,
		"width":    mainCur.Width,
		"height":   mainCur.Height,
	}).Info("Overlay filter configured")
	return nil
}

// ReleaseFrame hands an output frame back for recycling. Calling it is
// optional; unreturned frames are collected normally.
func (f *Filter) ReleaseFrame(out *frame.Frame) {
	if f.alloc != nil {
		f.alloc.Put(out)
	}
}

// Position returns the resolved overlay offset. It is only meaningful
// after the first successful ReadFrame.
func (f *Filter) Position() position.Point {
	return f.pos
}
