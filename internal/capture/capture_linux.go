//go:build linux

package capture

import (
	"bytes"
	"fmt"
	"os/exec"
)

type linuxBackend struct{}

func (l *linuxBackend) grab(region Region, outPath string) error {
	// Try grim (wayland), then maim, then scrot
	var cmd *exec.Cmd
	switch {
	case commandExists("grim"):
		geom := fmt.Sprintf("%d,%d %dx%d", region.X, region.Y, region.Width, region.Height)
		cmd = exec.Command("grim", "-g", geom, outPath)
	case commandExists("maim"):
		geom := fmt.Sprintf("%dx%d+%d+%d", region.Width, region.Height, region.X, region.Y)
		cmd = exec.Command("maim", "-g", geom, outPath)
	case commandExists("scrot"):
		area := fmt.Sprintf("%d,%d,%d,%d", region.X, region.Y, region.Width, region.Height)
		cmd = exec.Command("scrot", "-a", area, "-o", outPath)
	default:
		return fmt.Errorf("no screenshot tool found (install grim, maim or scrot)")
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (%s)", cmd.Path, err, stderr.String())
	}
	return nil
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&linuxBackend{}, tempDirOrFallback())
}
