// Package overlay composites two video streams into one: a main stream
// and an overlay stream placed at a configured offset, blended per pixel
// using an alpha mask.
//
// # Architecture Overview
//
// The pipeline is pull-driven and single-threaded. Each downstream
// request walks the chain once:
//
//	Filter.ReadFrame → framesync.Synchronizer (frame selection)
//	                 → compose.Compositor     (pixel output)
//	                 → downstream
//
// Upstream streams are framesync.Source values: demand-driven "next
// frame or io.EOF" operations. The synchronizer keeps one current and at
// most one pending frame per stream and promotes whichever stream's
// pending frame carries the lower presentation timestamp, so the output
// frame rate is the union of both input rates.
//
// # Placement
//
// The overlay position is given as "<x-expr>:<y-expr>". The expressions
// may reference main_w, main_h, overlay_w and overlay_h and are resolved
// exactly once, after both streams have delivered their first frame:
//
//	filter, err := overlay.New(mainSrc, logoSrc,
//	    frame.YUV420P, frame.YUVA420P,
//	    overlay.Options{Position: "main_w-overlay_w-10:10"})
//	if err != nil {
//	    return err
//	}
//	for {
//	    out, err := filter.ReadFrame()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    sink.Write(out)
//	    filter.ReleaseFrame(out)
//	}
//
// # Formats
//
// The main stream and the output share a format. Supported pairings:
// planar yuv420p main with yuva420p overlay (per-plane alpha blend,
// nearest-neighbor alpha on subsampled chroma), packed rgb24/rgba main
// with rgba overlay and bgr24/bgra main with bgra overlay (interleaved
// alpha), and any format over itself when the overlay has no alpha
// (plain overwrite copy).
package overlay
