// Package frame provides the pixel buffer types shared by the overlay
// compositing pipeline.
//
// This file defines the pixel format registry: the closed set of formats
// the compositor understands, with their plane layout, chroma subsampling
// and alpha properties.
package frame

import "fmt"

// PixelFormat identifies the memory layout of a frame's pixel data.
type PixelFormat int

const (
	// YUV420P is planar YUV with 4:2:0 chroma subsampling and no alpha.
	// This is the main/output format.
	YUV420P PixelFormat = iota
	// YUVA420P is YUV420P plus a separate full-resolution alpha plane.
	// This is the overlay format.
	YUVA420P
	// RGBA is packed 8-bit RGB with the alpha sample interleaved as the
	// fourth byte of each pixel.
	RGBA
	// BGRA is packed 8-bit BGR with interleaved alpha.
	BGRA
	// RGB24 is packed 8-bit RGB without alpha.
	RGB24
	// BGR24 is packed 8-bit BGR without alpha.
	BGR24
)

// AlphaPlane is the plane index of the alpha mask in planar formats
// that carry one.
const AlphaPlane = 3

type formatDesc struct {
	name     string
	planar   bool
	hasAlpha bool
	planes   int
	hsub     uint // horizontal chroma shift
	vsub     uint // vertical chroma shift
	bpp      int  // bytes per pixel in plane 0
}

var formats = map[PixelFormat]formatDesc{
	YUV420P:  {name: "yuv420p", planar: true, planes: 3, hsub: 1, vsub: 1, bpp: 1},
	YUVA420P: {name: "yuva420p", planar: true, hasAlpha: true, planes: 4, hsub: 1, vsub: 1, bpp: 1},
	RGBA:     {name: "rgba", planes: 1, hasAlpha: true, bpp: 4},
	BGRA:     {name: "bgra", planes: 1, hasAlpha: true, bpp: 4},
	RGB24:    {name: "rgb24", planes: 1, bpp: 3},
	BGR24:    {name: "bgr24", planes: 1, bpp: 3},
}

// ParseFormat maps a format name (as used on the command line) to its
// PixelFormat value.
func ParseFormat(name string) (PixelFormat, error) {
	for pf, desc := range formats {
		if desc.name == name {
			return pf, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel format %q", name)
}

// String returns the conventional short name of the format.
func (pf PixelFormat) String() string {
	if desc, ok := formats[pf]; ok {
		return desc.name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(pf))
}

// Planar reports whether the format stores each component in its own plane.
func (pf PixelFormat) Planar() bool {
	return formats[pf].planar
}

// HasAlpha reports whether the format carries an alpha channel, either
// interleaved (packed formats) or as a separate plane (planar formats).
func (pf PixelFormat) HasAlpha() bool {
	return formats[pf].hasAlpha
}

// PlaneCount returns the number of memory planes the format uses.
func (pf PixelFormat) PlaneCount() int {
	return formats[pf].planes
}

// ChromaShift returns the horizontal and vertical subsampling shifts of
// the chroma planes relative to luma. Packed formats return (0, 0).
func (pf PixelFormat) ChromaShift() (hsub, vsub uint) {
	desc := formats[pf]
	return desc.hsub, desc.vsub
}

// BytesPerPixel returns the pixel stride of plane 0: the per-sample byte
// count for planar formats, the full packed pixel size otherwise.
func (pf PixelFormat) BytesPerPixel() int {
	return formats[pf].bpp
}

// valid reports whether pf is a member of the format registry.
func (pf PixelFormat) valid() bool {
	_, ok := formats[pf]
	return ok
}
