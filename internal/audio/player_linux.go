package audio

import "github.com/subreader/subreader/internal/apperr"

// ffplay and mpv handle both WAV and MP3; paplay and aplay only WAV but
// still cover setups where the device stream is unavailable.
func lookupPlayerCommand() (string, func(string) []string, error) {
	if path, ok := commandExists("ffplay"); ok {
		return path, func(file string) []string {
			return []string{"-nodisp", "-autoexit", "-loglevel", "error", file}
		}, nil
	}
	if path, ok := commandExists("mpv"); ok {
		return path, func(file string) []string {
			return []string{"--no-video", "--really-quiet", file}
		}, nil
	}
	if path, ok := commandExists("paplay"); ok {
		return path, func(file string) []string { return []string{file} }, nil
	}
	if path, ok := commandExists("aplay"); ok {
		return path, func(file string) []string { return []string{"-q", file} }, nil
	}
	return "", nil, apperr.New(apperr.CodePlaybackFailed, "no player binary found (tried ffplay, mpv, paplay, aplay)")
}
