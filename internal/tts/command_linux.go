package tts

import (
	"strconv"

	"github.com/subreader/subreader/internal/apperr"
)

// espeak-ng is preferred; plain espeak accepts the same flags.
func lookupSpeechCommand(cfg Config) (speechCommand, error) {
	path, ok := commandExists("espeak-ng")
	if !ok {
		if path, ok = commandExists("espeak"); !ok {
			return speechCommand{}, apperr.New(apperr.CodeEngineUnavailable, "espeak-ng not found")
		}
	}

	return speechCommand{
		path: path,
		ext:  "wav",
		args: func(text, outPath string) []string {
			args := []string{"-w", outPath, "-s", strconv.Itoa(wordsPerMinute(cfg.SpeakingRate))}
			if cfg.Voice != "" {
				args = append(args, "-v", cfg.Voice)
			}
			return append(args, text)
		},
	}, nil
}
