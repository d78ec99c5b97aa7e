package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixelFormatProperties(t *testing.T) {
	tests := []struct {
		format   PixelFormat
		name     string
		planar   bool
		hasAlpha bool
		planes   int
		bpp      int
	}{
		{YUV420P, "yuv420p", true, false, 3, 1},
		{YUVA420P, "yuva420p", true, true, 4, 1},
		{RGBA, "rgba", false, true, 1, 4},
		{BGRA, "bgra", false, true, 1, 4},
		{RGB24, "rgb24", false, false, 1, 3},
		{BGR24, "bgr24", false, false, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, tt.format.String())
			assert.Equal(t, tt.planar, tt.format.Planar())
			assert.Equal(t, tt.hasAlpha, tt.format.HasAlpha())
			assert.Equal(t, tt.planes, tt.format.PlaneCount())
			assert.Equal(t, tt.bpp, tt.format.BytesPerPixel())
		})
	}
}

func TestPixelFormatChromaShift(t *testing.T) {
	hsub, vsub := YUV420P.ChromaShift()
	assert.Equal(t, uint(1), hsub)
	assert.Equal(t, uint(1), vsub)

	hsub, vsub = RGBA.ChromaShift()
	assert.Equal(t, uint(0), hsub)
	assert.Equal(t, uint(0), vsub)
}

func TestParseFormat(t *testing.T) {
	pf, err := ParseFormat("yuva420p")
	require.NoError(t, err)
	assert.Equal(t, YUVA420P, pf)

	_, err = ParseFormat("nv12")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nv12")
}

func TestAlloc_PlaneSizes(t *testing.T) {
	tests := []struct {
		name       string
		width      int
		height     int
		format     PixelFormat
		planeSizes []int
	}{
		{
			name:   "yuv420p even dimensions",
			width:  8, height: 6,
			format:     YUV420P,
			planeSizes: []int{48, 12, 12},
		},
		{
			name:   "yuva420p has full resolution alpha",
			width:  8, height: 6,
			format:     YUVA420P,
			planeSizes: []int{48, 12, 12, 48},
		},
		{
			name:   "yuv420p odd dimensions round chroma up",
			width:  5, height: 3,
			format:     YUV420P,
			planeSizes: []int{15, 6, 6},
		},
		{
			name:   "rgba single packed plane",
			width:  4, height: 2,
			format:     RGBA,
			planeSizes: []int{32},
		},
		{
			name:   "bgr24 single packed plane",
			width:  4, height: 2,
			format:     BGR24,
			planeSizes: []int{24},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Alloc(tt.width, tt.height, tt.format)
			require.NoError(t, err)

			require.Equal(t, len(tt.planeSizes), f.Format.PlaneCount())
			for p, size := range tt.planeSizes {
				assert.Equal(t, size, len(f.Data[p]), "plane %d", p)
			}
		})
	}
}

func TestAlloc_InvalidInput(t *testing.T) {
	_, err := Alloc(0, 10, YUV420P)
	assert.Error(t, err)

	_, err = Alloc(10, -1, YUV420P)
	assert.Error(t, err)

	_, err = Alloc(10, 10, PixelFormat(99))
	assert.Error(t, err)
}

func TestSize(t *testing.T) {
	assert.Equal(t, 72, Size(8, 6, YUV420P))
	assert.Equal(t, 120, Size(8, 6, YUVA420P))
	assert.Equal(t, 64, Size(4, 4, RGBA))
}

func TestFrame_PlaneDims(t *testing.T) {
	f, err := Alloc(5, 3, YUVA420P)
	require.NoError(t, err)

	w, h := f.PlaneDims(0)
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)

	w, h = f.PlaneDims(1)
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)

	w, h = f.PlaneDims(AlphaPlane)
	assert.Equal(t, 5, w)
	assert.Equal(t, 3, h)

	w, h = f.PlaneDims(5)
	assert.Equal(t, 0, w)
	assert.Equal(t, 0, h)
}

func TestFrame_Clone(t *testing.T) {
	f, err := Alloc(4, 4, YUV420P)
	require.NoError(t, err)
	f.PTS = 42
	f.Data[0][0] = 200
	f.Data[1][0] = 100

	c := f.Clone()
	assert.Equal(t, f.PTS, c.PTS)
	assert.Equal(t, f.Data[0], c.Data[0])
	assert.Equal(t, f.Data[1], c.Data[1])

	// Deep copy: mutating the clone must not touch the original.
	c.Data[0][0] = 7
	assert.Equal(t, byte(200), f.Data[0][0])
}

func TestAllocator_Recycles(t *testing.T) {
	a, err := NewAllocator(8, 8, YUV420P)
	require.NoError(t, err)

	f1, err := a.Get()
	require.NoError(t, err)
	f1.PTS = 99

	a.Put(f1)
	f2, err := a.Get()
	require.NoError(t, err)

	assert.Same(t, f1, f2, "allocator should hand back the recycled frame")
	assert.Equal(t, int64(0), f2.PTS, "recycled frame pts should reset")
}

func TestAllocator_RejectsForeignGeometry(t *testing.T) {
	a, err := NewAllocator(8, 8, YUV420P)
	require.NoError(t, err)

	other, err := Alloc(16, 16, YUV420P)
	require.NoError(t, err)
	a.Put(other)
	a.Put(nil)

	f, err := a.Get()
	require.NoError(t, err)
	assert.Equal(t, 8, f.Width)
	assert.Equal(t, 8, f.Height)
}

func TestNewAllocator_InvalidInput(t *testing.T) {
	_, err := NewAllocator(0, 8, YUV420P)
	assert.Error(t, err)

	_, err = NewAllocator(8, 8, PixelFormat(99))
	assert.Error(t, err)
}
