// Package tts synthesizes speech audio files from text.
package tts

import (
	"context"
	"log/slog"

	"github.com/subreader/subreader/internal/apperr"
)

// Engine turns text into an audio file on disk.
//
// Synthesize must be atomic from the caller's perspective: either outPath
// exists with complete audio, or an error is returned and outPath is absent.
type Engine interface {
	// Synthesize renders text as audio at outPath.
	Synthesize(ctx context.Context, text, outPath string) error
	// Ext is the audio container the engine produces, without the dot.
	Ext() string
	// Name identifies the engine in logs and status messages.
	Name() string
}

// Config selects and parameterizes an engine.
type Config struct {
	Engine          string  // "gcloud" or "command"
	Voice           string  // engine-specific voice name
	Language        string  // BCP-47, e.g. "en-US"
	SpeakingRate    float64 // 1.0 is normal speed
	Pitch           float64 // semitones, gcloud only
	CredentialsFile string  // gcloud service account JSON
}

// New constructs the engine named by cfg.Engine.
func New(cfg Config) (Engine, error) {
	switch cfg.Engine {
	case "gcloud", "":
		return newGcloudEngine(cfg)
	case "command":
		return newCommandEngine(cfg)
	default:
		slog.Warn("unknown speech engine, using command", "engine", cfg.Engine)
		return newCommandEngine(cfg)
	}
}

func unavailable(name string, cause error) error {
	return apperr.Wrap(cause, apperr.CodeEngineUnavailable, "speech engine unavailable").
		WithMetadata("engine", name)
}
