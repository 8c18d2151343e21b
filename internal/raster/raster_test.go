package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/resumind/internal/raster/rastertest"
)

func TestRasterize_SinglePage(t *testing.T) {
	res := New().Rasterize("resume.pdf", rastertest.PDF(1))

	require.NoError(t, res.Err)
	require.NotEmpty(t, res.Image)
	assert.Equal(t, "resume.png", res.FileName)

	img, err := png.Decode(bytes.NewReader(res.Image))
	require.NoError(t, err)
	// US Letter is 612x792 points; at 2x that is 1224x1584 pixels.
	assert.InDelta(t, 1224, img.Bounds().Dx(), 2)
	assert.InDelta(t, 1584, img.Bounds().Dy(), 2)
	assert.Equal(t, img.Bounds().Dx(), res.Width)
}

func TestRasterize_UsesFirstPageOnly(t *testing.T) {
	res := New().Rasterize("multi.pdf", rastertest.PDF(3))

	require.NoError(t, res.Err)
	assert.NotEmpty(t, res.Image)
}

func TestRasterize_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty input", data: nil},
		{name: "zero pages", data: rastertest.PDF(0)},
		{name: "garbage", data: []byte("this is not a pdf at all")},
		{name: "truncated header", data: []byte("%PDF-1.4\n1 0 obj\n<<")},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() { res = r.Rasterize("broken.pdf", tt.data) })
			require.Error(t, res.Err)
			assert.True(t, IsParseError(res.Err), "got %T: %v", res.Err, res.Err)
			assert.Empty(t, res.Image)
		})
	}
}

func TestImageFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.png"},
		{"Resume.PDF", "Resume.png"},
		{"cv.Pdf", "cv.png"},
		{"my.resume.pdf", "my.resume.png"},
		{"noext", "noext.png"},
		{"dir/sub/cv.pdf", "cv.png"},
		{"", "document.png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ImageFileName(tt.in))
		})
	}
}
