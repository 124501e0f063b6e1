package tts

import (
	"context"
	"os"
	"path/filepath"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/subreader/subreader/internal/apperr"
	"github.com/subreader/subreader/internal/resilience"
)

// gcloudEngine synthesizes MP3 audio via the Google Cloud Text-to-Speech API.
type gcloudEngine struct {
	client *texttospeech.Client
	cfg    Config
	retry  resilience.RetryConfig
}

func newGcloudEngine(cfg Config) (*gcloudEngine, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := texttospeech.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, unavailable("gcloud", err)
	}

	return &gcloudEngine{
		client: client,
		cfg:    cfg,
		retry:  resilience.SynthesisRetryConfig(),
	}, nil
}

func (e *gcloudEngine) Name() string { return "gcloud" }
func (e *gcloudEngine) Ext() string  { return "mp3" }

func (e *gcloudEngine) Synthesize(ctx context.Context, text, outPath string) error {
	req := e.buildRequest(text)

	var resp *texttospeechpb.SynthesizeSpeechResponse
	err := resilience.Retry(ctx, e.retry, func() error {
		var rpcErr error
		resp, rpcErr = e.client.SynthesizeSpeech(ctx, req)
		return rpcErr
	})
	if err != nil {
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "cloud synthesis failed").
			WithMetadata("engine", "gcloud")
	}

	return writeAtomic(outPath, resp.AudioContent)
}

func (e *gcloudEngine) buildRequest(text string) *texttospeechpb.SynthesizeSpeechRequest {
	language := e.cfg.Language
	if language == "" {
		language = "en-US"
	}
	rate := e.cfg.SpeakingRate
	if rate == 0 {
		rate = 1.0
	}

	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: language,
			Name:         e.cfg.Voice,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  rate,
			Pitch:         e.cfg.Pitch,
		},
	}
}

func (e *gcloudEngine) Close() error {
	return e.client.Close()
}

// writeAtomic writes data next to outPath and renames it into place so a
// crash never leaves a truncated audio file behind.
func writeAtomic(outPath string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".synth-*")
	if err != nil {
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "creating audio temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "writing audio file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "closing audio file")
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return apperr.Wrap(err, apperr.CodeSynthesisFailed, "placing audio file")
	}
	return nil
}
