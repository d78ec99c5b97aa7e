package overlay

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/overlay/frame"
	"github.com/opd-ai/overlay/position"
	"github.com/opd-ai/overlay/source"
)

// makeMain creates an 8x8 yuv420p frame filled with a uniform luma value.
func makeMain(t *testing.T, pts int64, luma byte) *frame.Frame {
	t.Helper()
	f, err := frame.Alloc(8, 8, frame.YUV420P)
	require.NoError(t, err)
	for i := range f.Data[0] {
		f.Data[0][i] = luma
	}
	f.PTS = pts
	return f
}

// makeOverlay creates a 4x4 yuva420p frame with uniform luma and alpha.
func makeOverlay(t *testing.T, pts int64, luma, alpha byte) *frame.Frame {
	t.Helper()
	f, err := frame.Alloc(4, 4, frame.YUVA420P)
	require.NoError(t, err)
	for i := range f.Data[0] {
		f.Data[0][i] = luma
	}
	for i := range f.Data[frame.AlphaPlane] {
		f.Data[frame.AlphaPlane][i] = alpha
	}
	f.PTS = pts
	return f
}

func newTestFilter(t *testing.T, mainSrc, overlaySrc *source.Frames, opts Options) *Filter {
	t.Helper()
	f, err := New(mainSrc, overlaySrc, frame.YUV420P, frame.YUVA420P, opts)
	require.NoError(t, err)
	return f
}

func TestReadFrame_TimestampSequence(t *testing.T) {
	mainSrc := source.NewFrames(
		makeMain(t, 0, 100), makeMain(t, 10, 100), makeMain(t, 20, 100))
	overlaySrc := source.NewFrames(
		makeOverlay(t, 5, 60, 255), makeOverlay(t, 15, 60, 255), makeOverlay(t, 25, 60, 255))

	f := newTestFilter(t, mainSrc, overlaySrc, Options{})

	// Each output is stamped with the higher of the two current
	// timestamps; each step promotes whichever stream queued the lower
	// pending timestamp, so the outputs walk every interleaving point.
	wantPTS := []int64{5, 10, 15, 20, 25}
	for i, want := range wantPTS {
		out, err := f.ReadFrame()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, want, out.PTS, "frame %d", i)
		assert.Equal(t, 8, out.Width)
		assert.Equal(t, 8, out.Height)
		f.ReleaseFrame(out)
	}

	_, err := f.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestReadFrame_EOFIsIdempotent(t *testing.T) {
	f := newTestFilter(t,
		source.NewFrames(makeMain(t, 0, 100)),
		source.NewFrames(makeOverlay(t, 0, 60, 255)),
		Options{})

	_, err := f.ReadFrame()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.ReadFrame()
		assert.Equal(t, io.EOF, err, "call %d", i)
	}
}

func TestReadFrame_EOFBeforePriming(t *testing.T) {
	tests := []struct {
		name       string
		mainSrc    *source.Frames
		overlaySrc *source.Frames
	}{
		{"main empty", source.NewFrames(), source.NewFrames(makeOverlay(t, 0, 60, 255))},
		{"overlay empty", source.NewFrames(makeMain(t, 0, 100)), source.NewFrames()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTestFilter(t, tt.mainSrc, tt.overlaySrc, Options{})
			_, err := f.ReadFrame()
			assert.Equal(t, io.EOF, err)
			_, err = f.ReadFrame()
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestReadFrame_OverlayEndsKeepsLastFrame(t *testing.T) {
	mainSrc := source.NewFrames(
		makeMain(t, 0, 100), makeMain(t, 10, 100), makeMain(t, 20, 100))
	overlaySrc := source.NewFrames(makeOverlay(t, 5, 60, 255))

	f := newTestFilter(t, mainSrc, overlaySrc, Options{})

	wantPTS := []int64{5, 10, 20}
	for i, want := range wantPTS {
		out, err := f.ReadFrame()
		require.NoError(t, err, "frame %d", i)
		assert.Equal(t, want, out.PTS, "frame %d", i)
		// The overlay's last frame stays composited in.
		assert.Equal(t, byte(60), out.Data[0][0], "frame %d overlay pixel", i)
		f.ReleaseFrame(out)
	}

	_, err := f.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestReadFrame_PositionExpressionResolvedOnce(t *testing.T) {
	mainSrc := source.NewFrames(makeMain(t, 0, 100), makeMain(t, 10, 100))
	overlaySrc := source.NewFrames(makeOverlay(t, 0, 60, 255), makeOverlay(t, 10, 60, 255))

	f := newTestFilter(t, mainSrc, overlaySrc,
		Options{Position: "main_w-overlay_w:main_h-overlay_h"})

	out, err := f.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, position.Point{X: 4, Y: 4}, f.Position())

	// Overlay lands in the bottom-right quadrant.
	assert.Equal(t, byte(60), out.Data[0][4*out.Stride[0]+4])
	assert.Equal(t, byte(60), out.Data[0][7*out.Stride[0]+7])
	assert.Equal(t, byte(100), out.Data[0][3*out.Stride[0]+3])
	f.ReleaseFrame(out)

	out, err = f.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, position.Point{X: 4, Y: 4}, f.Position())
	f.ReleaseFrame(out)
}

func TestReadFrame_BadExpressionIsFatal(t *testing.T) {
	f := newTestFilter(t,
		source.NewFrames(makeMain(t, 0, 100)),
		source.NewFrames(makeOverlay(t, 0, 60, 255)),
		Options{Position: "10+:0"})

	_, err := f.ReadFrame()
	require.Error(t, err)

	var exprErr *position.ExpressionError
	require.ErrorAs(t, err, &exprErr)
	assert.Equal(t, "10+", exprErr.Expr)

	// Initialization cannot complete; the filter is done.
	_, err = f.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestReadFrame_ZeroAlphaShowsMainOnly(t *testing.T) {
	f := newTestFilter(t,
		source.NewFrames(makeMain(t, 0, 100)),
		source.NewFrames(makeOverlay(t, 0, 60, 0)),
		Options{})

	out, err := f.ReadFrame()
	require.NoError(t, err)
	for i := range out.Data[0] {
		assert.Equal(t, byte(100), out.Data[0][i], "luma sample %d", i)
	}
}

func TestReadFrame_RecyclesReleasedFrames(t *testing.T) {
	f := newTestFilter(t,
		source.NewFrames(makeMain(t, 0, 100), makeMain(t, 10, 100)),
		source.NewFrames(makeOverlay(t, 0, 60, 255), makeOverlay(t, 10, 60, 255)),
		Options{})

	out1, err := f.ReadFrame()
	require.NoError(t, err)
	f.ReleaseFrame(out1)

	out2, err := f.ReadFrame()
	require.NoError(t, err)
	assert.Same(t, out1, out2, "released frame should be recycled")
	assert.Equal(t, int64(10), out2.PTS)
}

func TestNew_RejectsUnsupportedFormatPair(t *testing.T) {
	_, err := New(source.NewFrames(), source.NewFrames(),
		frame.YUV420P, frame.RGBA, Options{})
	assert.Error(t, err)
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wantX string
		wantY string
	}{
		{"empty defaults to origin", "", "0", "0"},
		{"plain coordinates", "10:20", "10", "20"},
		{"expressions", "main_w-overlay_w:main_h/2", "main_w-overlay_w", "main_h/2"},
		{"missing y falls back", "10", "0", "0"},
		{"empty x falls back", ":20", "0", "0"},
		{"empty y falls back", "10:", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := parsePosition(tt.input)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}
