// Package imageutil normalises uploaded images: bounded dimensions and a
// small set of output formats.
package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// JPEGQuality is the quality of re-encoded JPEG images.
const JPEGQuality = 85

// MaxUploadBytes bounds the size of an accepted upload.
const MaxUploadBytes = 20 << 20

// MaxPixels bounds the decoded size of an accepted image. Compressed data
// can be far smaller than the pixel buffer it expands to.
const MaxPixels = 40_000_000

var (
	// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG, GIF or WebP image.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned for images with more than MaxPixels pixels.
	ErrTooLarge = errors.New("image too large")
)

// Image is an encoded image ready to be stored.
type Image struct {
	Data   []byte
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// Ext returns the file extension for the image format.
func (img Image) Ext() string {
	if img.Format == "png" {
		return ".png"
	}
	return ".jpg"
}

// Resize decodes an image and scales it down so that its longest side is at
// most maxDim pixels. Images are never upscaled. PNG input stays PNG to keep
// transparency; everything else becomes JPEG.
func Resize(r io.Reader, maxDim int) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Image{}, ErrUnsupportedFormat
		}
		return Image{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return Image{}, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Image{}, ErrUnsupportedFormat
		}
		return Image{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := fit(bounds.Dx(), bounds.Dy(), maxDim)

	var out image.Image = src
	if w != bounds.Dx() || h != bounds.Dy() {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	img := Image{Width: w, Height: h}
	if format == "png" {
		img.Format = "png"
		err = png.Encode(&buf, out)
	} else {
		img.Format = "jpeg"
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return Image{}, fmt.Errorf("failed to encode image: %w", err)
	}
	img.Data = buf.Bytes()
	return img, nil
}

// fit scales w×h to fit within maxDim×maxDim keeping the aspect ratio.
func fit(w, h, maxDim int) (int, int) {
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return w, h
	}
	if w >= h {
		nh := h * maxDim / w
		if nh < 1 {
			nh = 1
		}
		return maxDim, nh
	}
	nw := w * maxDim / h
	if nw < 1 {
		nw = 1
	}
	return nw, maxDim
}

// Store writes img into dir under a random name and returns that name.
func Store(dir string, img Image) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}
	name := uuid.NewString() + img.Ext()
	if err := os.WriteFile(filepath.Join(dir, name), img.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return name, nil
}
