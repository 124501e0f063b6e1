package audio

import (
	"fmt"
	"strings"

	"github.com/subreader/subreader/internal/apperr"
)

// Windows playback goes through Media.SoundPlayer via PowerShell.
func lookupPlayerCommand() (string, func(string) []string, error) {
	path, ok := commandExists("powershell")
	if !ok {
		return "", nil, apperr.New(apperr.CodePlaybackFailed, "powershell not found")
	}
	return path, func(file string) []string {
		quoted := strings.ReplaceAll(file, "'", "''")
		script := fmt.Sprintf("(New-Object Media.SoundPlayer '%s').PlaySync()", quoted)
		return []string{"-NoProfile", "-NonInteractive", "-Command", script}
	}, nil
}
