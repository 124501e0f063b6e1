//go:build darwin

package capture

import (
	"bytes"
	"fmt"
	"os/exec"
)

type darwinBackend struct{}

func (d *darwinBackend) grab(region Region, outPath string) error {
	// -x: no sound, -t png: PNG format, -R: capture rectangle
	rect := fmt.Sprintf("%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height)
	cmd := exec.Command("screencapture", "-x", "-t", "png", "-R", rect, outPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("screencapture: %w (%s)", err, stderr.String())
	}
	return nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&darwinBackend{}, tempDirOrFallback())
}
