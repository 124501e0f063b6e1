package audio

import "github.com/subreader/subreader/internal/apperr"

// afplay ships with macOS and plays every format the speech engines emit.
func lookupPlayerCommand() (string, func(string) []string, error) {
	path, ok := commandExists("afplay")
	if !ok {
		return "", nil, apperr.New(apperr.CodePlaybackFailed, "afplay not found")
	}
	return path, func(file string) []string { return []string{file} }, nil
}
