package tts

import (
	"strconv"

	"github.com/subreader/subreader/internal/apperr"
)

// say ships with macOS and writes AIFF.
func lookupSpeechCommand(cfg Config) (speechCommand, error) {
	path, ok := commandExists("say")
	if !ok {
		return speechCommand{}, apperr.New(apperr.CodeEngineUnavailable, "say not found")
	}

	return speechCommand{
		path: path,
		ext:  "aiff",
		args: func(text, outPath string) []string {
			args := []string{"-o", outPath, "-r", strconv.Itoa(wordsPerMinute(cfg.SpeakingRate))}
			if cfg.Voice != "" {
				args = append(args, "-v", cfg.Voice)
			}
			return append(args, text)
		},
	}, nil
}
