package audio

import (
	"context"
	"encoding/binary"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/subreader/subreader/internal/apperr"
)

// writeTestWAV writes a minimal PCM WAV file and returns its path.
func writeTestWAV(t *testing.T, channels, sampleRate int, samples []int16) string {
	t.Helper()

	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}

	var buf []byte
	appendU32 := func(v uint32) { buf = binary.LittleEndian.AppendUint32(buf, v) }
	appendU16 := func(v uint16) { buf = binary.LittleEndian.AppendUint16(buf, v) }

	buf = append(buf, "RIFF"...)
	appendU32(uint32(36 + len(data)))
	buf = append(buf, "WAVE"...)

	buf = append(buf, "fmt "...)
	appendU32(16)
	appendU16(1) // PCM
	appendU16(uint16(channels))
	appendU32(uint32(sampleRate))
	appendU32(uint32(sampleRate * channels * 2))
	appendU16(uint16(channels * 2))
	appendU16(16)

	buf = append(buf, "data"...)
	appendU32(uint32(len(data)))
	buf = append(buf, data...)

	path := filepath.Join(t.TempDir(), "test.wav")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseWAV(t *testing.T) {
	samples := []int16{0, 100, -100, 32767, -32768, 7}
	path := writeTestWAV(t, 1, 22050, samples)

	w, err := parseWAV(path)
	if err != nil {
		t.Fatalf("parseWAV: %v", err)
	}
	if w.channels != 1 || w.sampleRate != 22050 {
		t.Errorf("format = %d ch @ %d Hz", w.channels, w.sampleRate)
	}
	if len(w.samples) != len(samples) {
		t.Fatalf("got %d samples, want %d", len(w.samples), len(samples))
	}
	for i, s := range samples {
		if w.samples[i] != s {
			t.Errorf("sample %d = %d, want %d", i, w.samples[i], s)
		}
	}
}

func TestParseWAVStereo(t *testing.T) {
	path := writeTestWAV(t, 2, 44100, []int16{1, 2, 3, 4})
	w, err := parseWAV(path)
	if err != nil {
		t.Fatalf("parseWAV: %v", err)
	}
	if w.channels != 2 || w.sampleRate != 44100 {
		t.Errorf("format = %d ch @ %d Hz", w.channels, w.sampleRate)
	}
}

func TestParseWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("this is not audio at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := parseWAV(path)
	if !apperr.IsCode(err, apperr.CodePlaybackFailed) {
		t.Errorf("error = %v, want playback_failed", err)
	}
}

func TestParseWAVRejectsMissingFile(t *testing.T) {
	_, err := parseWAV(filepath.Join(t.TempDir(), "absent.wav"))
	if !apperr.IsCode(err, apperr.CodePlaybackFailed) {
		t.Errorf("error = %v, want playback_failed", err)
	}
}

func TestCommandPlayerRunsBinary(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	marker := filepath.Join(t.TempDir(), "played")
	p := &commandPlayer{
		path: sh,
		args: func(file string) []string {
			return []string{"-c", "printf played > \"$0\"", marker}
		},
	}

	if err := p.Play(context.Background(), "ignored.wav"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("player binary never ran: %v", err)
	}
}

func TestCommandPlayerStopInterrupts(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	p := &commandPlayer{
		path: sh,
		args: func(string) []string { return []string{"-c", "sleep 30"} },
	}

	done := make(chan error, 1)
	go func() { done <- p.Play(context.Background(), "x.wav") }()

	// Give the process a moment to start, then kill it.
	time.Sleep(100 * time.Millisecond)
	p.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Play did not return after Stop")
	}
}

func TestCommandPlayerReportsLookupFailure(t *testing.T) {
	p := &commandPlayer{err: apperr.New(apperr.CodePlaybackFailed, "no player binary found")}
	err := p.Play(context.Background(), "x.wav")
	if !apperr.IsCode(err, apperr.CodePlaybackFailed) {
		t.Errorf("error = %v, want playback_failed", err)
	}
}
