// Package capture provides platform-agnostic region screen capture.
package capture

import (
	"image"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"

	"github.com/subreader/subreader/internal/apperr"
)

// Region is the screen rectangle to capture.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Validate checks the region dimensions.
func (r Region) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return apperr.Newf(apperr.CodeConfigInvalid, "region must have positive dimensions, got %dx%d", r.Width, r.Height)
	}
	return nil
}

// Capturer captures a screen region on demand. Grab never panics across
// the boundary; any failure is reported as an error.
type Capturer interface {
	Grab(region Region) (image.Image, error)
	Close()
}

// backend implements platform-specific raw capture into a file.
type backend interface {
	grab(region Region, outPath string) error
}

// baseCapturer handles temp file plumbing and decoding shared by backends.
type baseCapturer struct {
	backend
	tempDir string
}

func newBase(b backend, tempDir string) *baseCapturer {
	return &baseCapturer{backend: b, tempDir: tempDir}
}

func (c *baseCapturer) Grab(region Region) (image.Image, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	outPath := filepath.Join(c.tempDir, "frame.png")
	if err := c.grab(region, outPath); err != nil {
		return nil, apperr.Wrap(err, apperr.CodeCaptureFailed, "screen capture failed")
	}
	defer os.Remove(outPath)

	f, err := os.Open(outPath)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeCaptureFailed, "read captured frame")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeCaptureFailed, "decode captured frame")
	}
	return img, nil
}

func (c *baseCapturer) Close() {
	if c.tempDir != "" {
		os.RemoveAll(c.tempDir)
	}
}

func tempDirOrFallback() string {
	tmpDir, err := os.MkdirTemp("", "subreader-capture-*")
	if err != nil {
		return os.TempDir()
	}
	return tmpDir
}
