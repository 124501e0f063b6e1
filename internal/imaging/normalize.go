// Package imaging turns raw captures into OCR-friendly images.
package imaging

import (
	"image"
	"image/color"
	"log/slog"

	"github.com/nfnt/resize"
)

// Config controls the normalization pipeline.
type Config struct {
	Enable        bool
	Grayscale     bool
	Threshold     int
	Invert        bool
	AutoThreshold bool
	Scale         float64
}

// Normalize applies scale, grayscale, binarize and invert in fixed order.
// The source image is never mutated. A failure inside any step falls back
// to returning the input unchanged; normalization is never fatal.
func Normalize(img image.Image, cfg Config) (out image.Image) {
	if !cfg.Enable || img == nil {
		return img
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("image normalization failed, using raw capture", "panic", r)
			out = img
		}
	}()

	out = img

	if cfg.Scale > 1.0 {
		b := out.Bounds()
		newW := uint(float64(b.Dx()) * cfg.Scale)
		newH := uint(float64(b.Dy()) * cfg.Scale)
		out = resize.Resize(newW, newH, out, resize.Lanczos3)
	}

	if cfg.Grayscale {
		out = toGray(out)
	}

	gray := toGray(out)
	threshold := -1
	if cfg.AutoThreshold {
		threshold = OtsuThreshold(gray)
	}
	if threshold < 0 {
		threshold = clamp(cfg.Threshold, 0, 255)
	}
	out = binarize(gray, uint8(threshold), cfg.Invert)

	return out
}

// toGray reduces an image to single-channel luminance.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray.Set(x, y, color.GrayModel.Convert(img.At(x, y)))
		}
	}
	return gray
}

// binarize maps pixel > threshold to white, else black. Invert flips the mapping.
func binarize(gray *image.Gray, threshold uint8, invert bool) *image.Gray {
	white, black := uint8(255), uint8(0)
	if invert {
		white, black = black, white
	}

	b := gray.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := gray.PixOffset(x, y)
			if gray.Pix[i] > threshold {
				out.Pix[out.PixOffset(x, y)] = white
			} else {
				out.Pix[out.PixOffset(x, y)] = black
			}
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
