package tts

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"

	"github.com/subreader/subreader/internal/apperr"
)

func TestBuildRequestDefaults(t *testing.T) {
	e := &gcloudEngine{cfg: Config{}}
	req := e.buildRequest("Hello.")

	if got := req.Input.GetText(); got != "Hello." {
		t.Errorf("input text = %q", got)
	}
	if req.Voice.LanguageCode != "en-US" {
		t.Errorf("language = %q, want en-US", req.Voice.LanguageCode)
	}
	if req.AudioConfig.SpeakingRate != 1.0 {
		t.Errorf("rate = %v, want 1.0", req.AudioConfig.SpeakingRate)
	}
	if req.AudioConfig.AudioEncoding != texttospeechpb.AudioEncoding_MP3 {
		t.Errorf("encoding = %v, want MP3", req.AudioConfig.AudioEncoding)
	}
}

func TestBuildRequestHonorsConfig(t *testing.T) {
	e := &gcloudEngine{cfg: Config{
		Voice:        "de-DE-Neural2-B",
		Language:     "de-DE",
		SpeakingRate: 1.3,
		Pitch:        -2,
	}}
	req := e.buildRequest("Hallo.")

	if req.Voice.Name != "de-DE-Neural2-B" || req.Voice.LanguageCode != "de-DE" {
		t.Errorf("voice = %+v", req.Voice)
	}
	if req.AudioConfig.SpeakingRate != 1.3 || req.AudioConfig.Pitch != -2 {
		t.Errorf("audio config = %+v", req.AudioConfig)
	}
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "speech.mp3")

	if err := writeAtomic(out, []byte("audio-bytes")); err != nil {
		t.Fatalf("writeAtomic: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil || string(data) != "audio-bytes" {
		t.Fatalf("read back %q, %v", data, err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestWordsPerMinute(t *testing.T) {
	if got := wordsPerMinute(1.0); got != defaultWordsPerMinute {
		t.Errorf("wordsPerMinute(1.0) = %d", got)
	}
	if got := wordsPerMinute(2.0); got != 2*defaultWordsPerMinute {
		t.Errorf("wordsPerMinute(2.0) = %d", got)
	}
	if got := wordsPerMinute(0); got != defaultWordsPerMinute {
		t.Errorf("wordsPerMinute(0) = %d, want default", got)
	}
}

func TestCommandSynthesizePlacesFile(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	e := &commandEngine{cmd: speechCommand{
		path: sh,
		ext:  "wav",
		args: func(text, outPath string) []string {
			return []string{"-c", "printf fake-audio > \"$0\"", outPath}
		},
	}}

	out := filepath.Join(t.TempDir(), "line.wav")
	if err := e.Synthesize(context.Background(), "hello", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if data, _ := os.ReadFile(out); string(data) != "fake-audio" {
		t.Errorf("audio content = %q", data)
	}
}

func TestCommandSynthesizeFailureHasCode(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	e := &commandEngine{cmd: speechCommand{
		path: sh,
		args: func(text, outPath string) []string { return []string{"-c", "exit 3"} },
	}}

	err = e.Synthesize(context.Background(), "hello", filepath.Join(t.TempDir(), "x.wav"))
	if !apperr.IsCode(err, apperr.CodeSynthesisFailed) {
		t.Errorf("error = %v, want synthesis_failed", err)
	}
}
