// Command overlaymix composites two raw video files into one.
//
// The main input provides the base layer and the output geometry; the
// overlay input is blended on top at the position given with -pos. Both
// inputs are raw, headerless frame sequences (the output of e.g.
// "ffmpeg -f rawvideo"), so their geometry and pixel format must be
// stated on the command line.
//
// Usage:
//
//	overlaymix -main bg.yuv -main_size 640x480 \
//	    -overlay logo.yuva -overlay_size 128x64 \
//	    -pos "main_w-overlay_w-10:10" -o out.yuv
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/overlay"
	"github.com/opd-ai/overlay/frame"
	"github.com/opd-ai/overlay/source"
)

func main() {
	var (
		mainPath      = flag.String("main", "", "main (base) raw video file")
		mainSize      = flag.String("main_size", "", "main geometry as WxH")
		mainFormat    = flag.String("main_format", "yuv420p", "main pixel format")
		overlayPath   = flag.String("overlay", "", "overlay raw video file")
		overlaySize   = flag.String("overlay_size", "", "overlay geometry as WxH")
		overlayFormat = flag.String("overlay_format", "yuva420p", "overlay pixel format")
		pos           = flag.String("pos", "0:0", "overlay position as <x-expr>:<y-expr>")
		outPath       = flag.String("o", "-", "output file, - for stdout")
		ptsStep       = flag.Int64("pts_step", 1, "timestamp increment per input frame")
		verbose       = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	logrus.SetOutput(os.Stderr)
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	if err := run(*mainPath, *mainSize, *mainFormat,
		*overlayPath, *overlaySize, *overlayFormat,
		*pos, *outPath, *ptsStep); err != nil {
		fmt.Fprintln(os.Stderr, "overlaymix:", err)
		os.Exit(1)
	}
}

func run(mainPath, mainSize, mainFormat,
	overlayPath, overlaySize, overlayFormat,
	pos, outPath string, ptsStep int64) error {

	mainSrc, mainFmt, closeMain, err := openSource(mainPath, mainSize, mainFormat, ptsStep)
	if err != nil {
		return fmt.Errorf("main input: %v", err)
	}
	defer closeMain()

	overlaySrc, overlayFmt, closeOverlay, err := openSource(overlayPath, overlaySize, overlayFormat, ptsStep)
	if err != nil {
		return fmt.Errorf("overlay input: %v", err)
	}
	defer closeOverlay()

	filter, err := overlay.New(mainSrc, overlaySrc, mainFmt, overlayFmt,
		overlay.Options{Position: pos})
	if err != nil {
		return err
	}

	out := os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	frames := 0
	for {
		f, err := filter.ReadFrame()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := writeFrame(w, f); err != nil {
			return err
		}
		filter.ReleaseFrame(f)
		frames++
	}

	if err := w.Flush(); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "run",
		"frames":   frames,
	}).Info("Compositing finished")
	return nil
}

// openSource opens a raw video file as a frame source.
func openSource(path, size, format string, ptsStep int64) (*source.Raw, frame.PixelFormat, func(), error) {
	if path == "" {
		return nil, 0, nil, fmt.Errorf("input file not specified")
	}
	w, h, err := parseSize(size)
	if err != nil {
		return nil, 0, nil, err
	}
	pf, err := frame.ParseFormat(format)
	if err != nil {
		return nil, 0, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, nil, err
	}
	src, err := source.NewRaw(bufio.NewReader(f), w, h, pf, ptsStep)
	if err != nil {
		f.Close()
		return nil, 0, nil, err
	}
	return src, pf, func() { f.Close() }, nil
}

func parseSize(s string) (w, h int, err error) {
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, expected WxH", s)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	return w, h, nil
}

// writeFrame writes the frame's planes in order, rows tightly packed.
func writeFrame(w io.Writer, f *frame.Frame) error {
	for p := 0; p < f.Format.PlaneCount(); p++ {
		pw, ph := f.PlaneDims(p)
		rowBytes := pw
		if p == 0 {
			rowBytes = pw * f.Format.BytesPerPixel()
		}
		for row := 0; row < ph; row++ {
			off := row * f.Stride[p]
			if _, err := w.Write(f.Data[p][off : off+rowBytes]); err != nil {
				return err
			}
		}
	}
	return nil
}
