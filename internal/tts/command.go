package tts

import (
	"context"
	"os"
	"os/exec"

	"github.com/subreader/subreader/internal/apperr"
)

// defaultWordsPerMinute is the baseline rate for CLI voices; SpeakingRate
// scales it.
const defaultWordsPerMinute = 175

// speechCommand describes a platform voice binary. args builds the full
// argument list for one utterance.
type speechCommand struct {
	path string
	ext  string
	args func(text, outPath string) []string
}

// commandEngine shells out to the platform speech binary. Each platform
// file provides lookupSpeechCommand.
type commandEngine struct {
	cmd speechCommand
	cfg Config
}

func newCommandEngine(cfg Config) (*commandEngine, error) {
	cmd, err := lookupSpeechCommand(cfg)
	if err != nil {
		return nil, err
	}
	return &commandEngine{cmd: cmd, cfg: cfg}, nil
}

func (e *commandEngine) Name() string { return "command" }
func (e *commandEngine) Ext() string  { return e.cmd.ext }

func (e *commandEngine) Synthesize(ctx context.Context, text, outPath string) error {
	tmp := outPath + ".part"
	defer os.Remove(tmp)

	cmd := exec.CommandContext(ctx, e.cmd.path, e.cmd.args(text, tmp)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "speech command failed").
			WithMetadata("command", e.cmd.path).
			WithMetadata("output", string(out))
	}

	if err := os.Rename(tmp, outPath); err != nil {
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "placing audio file")
	}
	return nil
}

func wordsPerMinute(rate float64) int {
	if rate <= 0 {
		rate = 1.0
	}
	return int(defaultWordsPerMinute * rate)
}

func commandExists(name string) (string, bool) {
	path, err := exec.LookPath(name)
	return path, err == nil
}
