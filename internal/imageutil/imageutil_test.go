package imageutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestResizeScalesDown(t *testing.T) {
	img, err := Resize(bytes.NewReader(encodePNG(t, 400, 200)), 100)
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 100, img.Width)
	assert.Equal(t, 50, img.Height)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 50, cfg.Height)
}

func TestResizeNeverUpscales(t *testing.T) {
	img, err := Resize(bytes.NewReader(encodePNG(t, 30, 60)), 100)
	require.NoError(t, err)
	assert.Equal(t, 30, img.Width)
	assert.Equal(t, 60, img.Height)
}

func TestResizeConvertsGIFToJPEG(t *testing.T) {
	pal := image.NewPaletted(image.Rect(0, 0, 20, 80), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, pal, nil))

	img, err := Resize(&buf, 40)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", img.Format)
	assert.Equal(t, 10, img.Width)
	assert.Equal(t, 40, img.Height)
	assert.Equal(t, ".jpg", img.Ext())
}

// pngHeader returns the signature and IHDR chunk of a w×h greyscale PNG.
// It is enough for image.DecodeConfig and costs nothing to build.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth, colour type 0 (greyscale)

	chunk := append([]byte("IHDR"), ihdr...)
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestResizeRejectsTooManyPixels(t *testing.T) {
	header := pngHeader(12000, 12000)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(header))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 12000, cfg.Width)

	_, err = Resize(bytes.NewReader(header), 1600)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestResizeRejectsGarbage(t *testing.T) {
	_, err := Resize(strings.NewReader("definitely not an image"), 100)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	img := Image{Data: []byte("data"), Format: "png"}

	name, err := Store(dir, img)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), data)

	other, err := Store(dir, img)
	require.NoError(t, err)
	assert.NotEqual(t, name, other)
}
