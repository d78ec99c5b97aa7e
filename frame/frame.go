// Package frame provides the pixel buffer types shared by the overlay
// compositing pipeline.
//
// This file implements the Frame type and its allocation. A Frame is a
// set of byte planes with independent row strides; each plane's stride
// may exceed width times the sample size when buffers are recycled.
package frame

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaxPlanes is the largest number of planes any supported format uses.
const MaxPlanes = 4

// Frame is a single picture owned by exactly one holder at a time.
//
// Ownership moves with the pointer: whoever holds the Frame may read it,
// and only the holder may hand it to an Allocator for recycling. The
// compositor reads frames without taking ownership.
type Frame struct {
	Data   [MaxPlanes][]byte
	Stride [MaxPlanes]int
	Width  int
	Height int
	Format PixelFormat

	// PTS is the presentation timestamp: the logical display time in a
	// stream-independent unit, used to order frames across streams.
	PTS int64
}

// PlaneDims returns the sample dimensions of the given plane, accounting
// for chroma subsampling. For packed formats only plane 0 exists.
func (f *Frame) PlaneDims(plane int) (w, h int) {
	if plane >= f.Format.PlaneCount() {
		return 0, 0
	}
	w, h = f.Width, f.Height
	if plane == 1 || plane == 2 {
		hsub, vsub := f.Format.ChromaShift()
		w = chromaSize(w, hsub)
		h = chromaSize(h, vsub)
	}
	return w, h
}

// Clone returns a deep copy of the frame with tightly packed strides.
func (f *Frame) Clone() *Frame {
	out, err := Alloc(f.Width, f.Height, f.Format)
	if err != nil {
		// f was built from the same registry, so Alloc cannot reject it.
		panic(err)
	}
	out.PTS = f.PTS
	for p := 0; p < f.Format.PlaneCount(); p++ {
		w, h := f.PlaneDims(p)
		rowBytes := w * planeSampleSize(f.Format, p)
		for row := 0; row < h; row++ {
			copy(out.Data[p][row*out.Stride[p]:row*out.Stride[p]+rowBytes],
				f.Data[p][row*f.Stride[p]:])
		}
	}
	return out
}

func chromaSize(n int, shift uint) int {
	return (n + (1 << shift) - 1) >> shift
}

// planeSampleSize returns the byte width of one sample in the given plane.
func planeSampleSize(pf PixelFormat, plane int) int {
	if plane == 0 {
		return pf.BytesPerPixel()
	}
	return 1
}

// Alloc creates a frame with tightly packed planes sized for the given
// geometry and format. The caller becomes sole owner.
func Alloc(width, height int, format PixelFormat) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if !format.valid() {
		return nil, fmt.Errorf("unknown pixel format %d", int(format))
	}

	f := &Frame{Width: width, Height: height, Format: format}
	for p := 0; p < format.PlaneCount(); p++ {
		w, h := f.PlaneDims(p)
		stride := w * planeSampleSize(format, p)
		f.Data[p] = make([]byte, stride*h)
		f.Stride[p] = stride
	}
	return f, nil
}

// Size returns the total payload size of a frame with the given geometry,
// assuming tightly packed planes.
func Size(width, height int, format PixelFormat) int {
	f := Frame{Width: width, Height: height, Format: format}
	total := 0
	for p := 0; p < format.PlaneCount(); p++ {
		w, h := f.PlaneDims(p)
		total += w * h * planeSampleSize(format, p)
	}
	return total
}

// Allocator hands out frames and recycles returned ones to avoid
// re-allocating a full picture per output. It is not safe for concurrent
// use; the pipeline it serves is single-threaded by design.
type Allocator struct {
	width  int
	height int
	format PixelFormat
	free   []*Frame
}

// NewAllocator creates an allocator for frames of a fixed geometry.
func NewAllocator(width, height int, format PixelFormat) (*Allocator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions: %dx%d", width, height)
	}
	if !format.valid() {
		return nil, fmt.Errorf("unknown pixel format %d", int(format))
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewAllocator",
		"width":    width,
		"height":   height,
		"format":   format.String(),
	}).Debug("Creating frame allocator")

	return &Allocator{width: width, height: height, format: format}, nil
}

// Get returns a frame of the allocator's geometry, recycled if possible.
// Recycled frames keep their previous pixel content; callers overwrite
// every sample before handing the frame on.
func (a *Allocator) Get() (*Frame, error) {
	if n := len(a.free); n > 0 {
		f := a.free[n-1]
		a.free = a.free[:n-1]
		f.PTS = 0
		return f, nil
	}
	return Alloc(a.width, a.height, a.format)
}

// Put returns a frame to the allocator. Only frames of the allocator's
// geometry are recycled; anything else is dropped for the GC.
func (a *Allocator) Put(f *Frame) {
	if f == nil || f.Width != a.width || f.Height != a.height || f.Format != a.format {
		return
	}
	a.free = append(a.free, f)
}
