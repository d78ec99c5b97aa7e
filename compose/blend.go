// Package compose writes composited output frames from a (main, overlay)
// frame pair.
//
// This file implements the blend strategies. A strategy is selected once
// at configuration time from the pixel format pair; the per-pixel loops
// contain no format branching and no bounds checks beyond the loop
// conditions, relying on the region clamping done by the Compositor.
package compose

import "github.com/opd-ai/overlay/frame"

// blender blends an overlay region into dst at (x, y). The region
// (w, h) is already clamped to both frames.
type blender interface {
	blend(dst, over *frame.Frame, x, y, w, h int)
}

// planarAlphaBlender blends planar color with a separate full-resolution
// alpha plane over planar color with subsampled chroma.
type planarAlphaBlender struct {
	hsub, vsub uint
}

func (b planarAlphaBlender) blend(dst, over *frame.Frame, x, y, w, h int) {
	alpha := over.Data[frame.AlphaPlane]
	alphaStride := over.Stride[frame.AlphaPlane]

	// Luma at full resolution.
	blendPlane(dst.Data[0][y*dst.Stride[0]+x:], dst.Stride[0],
		over.Data[0], over.Stride[0],
		alpha, alphaStride, w, h, 0, 0)

	// Chroma planes sample the alpha mask nearest-neighbor: row r reads
	// alpha row r<<vsub, each column steps the alpha pointer by 1<<hsub.
	cx, cy := x>>b.hsub, y>>b.vsub
	cw, ch := w>>b.hsub, h>>b.vsub
	for p := 1; p <= 2; p++ {
		blendPlane(dst.Data[p][cy*dst.Stride[p]+cx:], dst.Stride[p],
			over.Data[p], over.Stride[p],
			alpha, alphaStride, cw, ch, b.hsub, b.vsub)
	}
}

// blendPlane applies out = (out*(255-a) + in*a + 128) >> 8 over one plane.
// The +128 rounding term makes a=255 reproduce the overlay sample exactly
// and a=0 leave the output sample untouched.
func blendPlane(dst []byte, dstStride int, src []byte, srcStride int,
	alpha []byte, alphaStride int, w, h int, hsub, vsub uint) {
	for row := 0; row < h; row++ {
		out := dst[row*dstStride:]
		in := src[row*srcStride:]
		a := alpha[(row<<vsub)*alphaStride:]
		ai := 0
		for col := 0; col < w; col++ {
			av := int(a[ai])
			out[col] = byte((int(out[col])*(255-av) + int(in[col])*av + 128) >> 8)
			ai += 1 << hsub
		}
	}
}

// packedAlphaBlender blends packed color with interleaved alpha over a
// packed main layer. The alpha sample is read from each overlay pixel's
// fourth byte and is never written to the output.
type packedAlphaBlender struct {
	outBPP int // main/output pixel size, 3 or 4 bytes
}

func (b packedAlphaBlender) blend(dst, over *frame.Frame, x, y, w, h int) {
	const inBPP = 4
	for row := 0; row < h; row++ {
		out := dst.Data[0][(y+row)*dst.Stride[0]+x*b.outBPP:]
		in := over.Data[0][row*over.Stride[0]:]
		oi, ii := 0, 0
		for col := 0; col < w; col++ {
			av := int(in[ii+3])
			out[oi+0] = byte((int(out[oi+0])*(255-av) + int(in[ii+0])*av + 128) >> 8)
			out[oi+1] = byte((int(out[oi+1])*(255-av) + int(in[ii+1])*av + 128) >> 8)
			out[oi+2] = byte((int(out[oi+2])*(255-av) + int(in[ii+2])*av + 128) >> 8)
			oi += b.outBPP
			ii += inBPP
		}
	}
}

// copyBlender overwrites the overlay region without blending, used when
// the overlay carries no alpha channel. Overlay and main share a format.
type copyBlender struct{}

func (copyBlender) blend(dst, over *frame.Frame, x, y, w, h int) {
	copyRegion(dst, x, y, over, w, h)
}

// copyRegion copies a wxh region of src into dst at (x, y), plane by
// plane, format-preserving. Chroma offsets are shifted down, chroma
// region sizes are rounded up so odd-sized regions keep their last
// chroma column and row.
func copyRegion(dst *frame.Frame, x, y int, src *frame.Frame, w, h int) {
	hsub, vsub := dst.Format.ChromaShift()
	planes := dst.Format.PlaneCount()
	if n := src.Format.PlaneCount(); n < planes {
		planes = n
	}

	for p := 0; p < planes; p++ {
		px, py, pw, ph := x, y, w, h
		sampleSize := 1
		if p == 0 {
			sampleSize = dst.Format.BytesPerPixel()
		}
		if p == 1 || p == 2 {
			px >>= hsub
			py >>= vsub
			pw = (pw + (1 << hsub) - 1) >> hsub
			ph = (ph + (1 << vsub) - 1) >> vsub
		}

		rowBytes := pw * sampleSize
		for row := 0; row < ph; row++ {
			dstOff := (py+row)*dst.Stride[p] + px*sampleSize
			srcOff := row * src.Stride[p]
			copy(dst.Data[p][dstOff:dstOff+rowBytes], src.Data[p][srcOff:])
		}
	}
}
