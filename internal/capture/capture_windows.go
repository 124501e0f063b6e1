//go:build windows

package capture

import (
	"bytes"
	"fmt"
	"os/exec"
)

type windowsBackend struct{}

const psTemplate = `Add-Type -AssemblyName System.Drawing;
$bmp = New-Object System.Drawing.Bitmap %d, %d;
$g = [System.Drawing.Graphics]::FromImage($bmp);
$g.CopyFromScreen(%d, %d, 0, 0, $bmp.Size);
$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png);
$g.Dispose(); $bmp.Dispose()`

func (w *windowsBackend) grab(region Region, outPath string) error {
	script := fmt.Sprintf(psTemplate, region.Width, region.Height, region.X, region.Y, outPath)
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("powershell capture: %w (%s)", err, stderr.String())
	}
	return nil
}

// New creates a platform-specific screen capturer.
func New() Capturer {
	return newBase(&windowsBackend{}, tempDirOrFallback())
}
