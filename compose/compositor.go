package compose

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/overlay/frame"
)

// Compositor writes one output frame from a (main, overlay) pair at a
// fixed pixel offset.
//
// The blend strategy is chosen once from the pixel format pair when the
// compositor is created:
//
//   - planar main + planar overlay with alpha plane: per-plane alpha
//     blend with nearest-neighbor alpha subsampling on chroma
//   - packed main + packed overlay with interleaved alpha: per-channel
//     alpha blend, alpha read but never written
//   - overlay without alpha: plain overwrite copy
type Compositor struct {
	mainFormat    frame.PixelFormat
	overlayFormat frame.PixelFormat
	blender       blender
}

// New creates a compositor for the given main/output and overlay formats.
// Unsupported pairings are rejected here so the per-pixel paths never
// branch on format.
func New(mainFormat, overlayFormat frame.PixelFormat) (*Compositor, error) {
	b, err := blenderFor(mainFormat, overlayFormat)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function":       "compose.New",
		"main_format":    mainFormat.String(),
		"overlay_format": overlayFormat.String(),
	}).Info("Compositor created")

	return &Compositor{
		mainFormat:    mainFormat,
		overlayFormat: overlayFormat,
		blender:       b,
	}, nil
}

func blenderFor(mainFormat, overlayFormat frame.PixelFormat) (blender, error) {
	if !overlayFormat.HasAlpha() {
		if overlayFormat != mainFormat {
			return nil, fmt.Errorf("overlay without alpha must match main format, got main %s, overlay %s",
				mainFormat, overlayFormat)
		}
		return copyBlender{}, nil
	}

	switch {
	case mainFormat == frame.YUV420P && overlayFormat == frame.YUVA420P:
		hsub, vsub := mainFormat.ChromaShift()
		return planarAlphaBlender{hsub: hsub, vsub: vsub}, nil
	case overlayFormat == frame.RGBA && (mainFormat == frame.RGB24 || mainFormat == frame.RGBA):
		return packedAlphaBlender{outBPP: mainFormat.BytesPerPixel()}, nil
	case overlayFormat == frame.BGRA && (mainFormat == frame.BGR24 || mainFormat == frame.BGRA):
		return packedAlphaBlender{outBPP: mainFormat.BytesPerPixel()}, nil
	}
	return nil, fmt.Errorf("unsupported format pair: main %s, overlay %s", mainFormat, overlayFormat)
}

// Compose copies the main frame into dst and blends the overlay frame on
// top at (x, y).
//
// The offset is clamped to [0, W-1] x [0, H-1]; the blended region is the
// intersection of the overlay with the output, which may be empty. Both
// input frames are read-only; dst must have the main frame's geometry and
// format and is overwritten in full.
func (c *Compositor) Compose(dst, mainFrame, overlayFrame *frame.Frame, x, y int) error {
	if dst == nil || mainFrame == nil || overlayFrame == nil {
		return fmt.Errorf("compose requires dst, main and overlay frames")
	}
	if mainFrame.Format != c.mainFormat {
		return fmt.Errorf("main frame format %s, compositor configured for %s",
			mainFrame.Format, c.mainFormat)
	}
	if overlayFrame.Format != c.overlayFormat {
		return fmt.Errorf("overlay frame format %s, compositor configured for %s",
			overlayFrame.Format, c.overlayFormat)
	}
	if dst.Format != c.mainFormat || dst.Width != mainFrame.Width || dst.Height != mainFrame.Height {
		return fmt.Errorf("output frame must be %dx%d %s, got %dx%d %s",
			mainFrame.Width, mainFrame.Height, c.mainFormat,
			dst.Width, dst.Height, dst.Format)
	}

	// Base layer: full-frame copy, no blending.
	copyRegion(dst, 0, 0, mainFrame, dst.Width, dst.Height)

	if x < 0 {
		x = 0
	} else if x > dst.Width-1 {
		x = dst.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y > dst.Height-1 {
		y = dst.Height - 1
	}

	w := min(dst.Width-x, overlayFrame.Width)
	h := min(dst.Height-y, overlayFrame.Height)
	if w <= 0 || h <= 0 {
		return nil
	}

	c.blender.blend(dst, overlayFrame, x, y, w, h)
	return nil
}
