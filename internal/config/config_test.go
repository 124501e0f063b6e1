package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Capture.Region.Width != 800 || cfg.Capture.Region.Height != 100 {
		t.Errorf("default region = %dx%d, want 800x100", cfg.Capture.Region.Width, cfg.Capture.Region.Height)
	}
	if cfg.Capture.IntervalSeconds != 1.0 {
		t.Errorf("IntervalSeconds = %v, want 1.0", cfg.Capture.IntervalSeconds)
	}
	if cfg.OCR.Engine != "tesseract" {
		t.Errorf("OCR.Engine = %q, want %q", cfg.OCR.Engine, "tesseract")
	}
	if cfg.OCR.ConfidenceThreshold != 0.6 {
		t.Errorf("ConfidenceThreshold = %v, want 0.6", cfg.OCR.ConfidenceThreshold)
	}
	if !cfg.OCR.Preprocess.AutoThreshold {
		t.Error("AutoThreshold should default to true")
	}
	if cfg.TTS.FallbackEngine != "command" {
		t.Errorf("FallbackEngine = %q, want %q", cfg.TTS.FallbackEngine, "command")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load should tolerate a missing file: %v", err)
	}
	if cfg.OCR.Engine != "tesseract" {
		t.Errorf("OCR.Engine = %q, want default", cfg.OCR.Engine)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[capture]
interval_seconds = 0.5

[capture.region]
x = 10
y = 20
width = 640
height = 80

[ocr]
language = "jpn"
confidence_threshold = 0.4

[tts]
engine = "command"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Capture.Region.X != 10 || cfg.Capture.Region.Width != 640 {
		t.Errorf("region = %+v, want x=10 width=640", cfg.Capture.Region)
	}
	if cfg.Capture.IntervalSeconds != 0.5 {
		t.Errorf("IntervalSeconds = %v, want 0.5", cfg.Capture.IntervalSeconds)
	}
	if cfg.OCR.Language != "jpn" {
		t.Errorf("Language = %q, want %q", cfg.OCR.Language, "jpn")
	}
	// Untouched keys keep defaults.
	if cfg.OCR.PSM != 7 {
		t.Errorf("PSM = %d, want default 7", cfg.OCR.PSM)
	}
	if cfg.TTS.Engine != "command" {
		t.Errorf("TTS.Engine = %q, want %q", cfg.TTS.Engine, "command")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Capture.Region.Width = 0 }},
		{"negative height", func(c *Config) { c.Capture.Region.Height = -5 }},
		{"zero interval", func(c *Config) { c.Capture.IntervalSeconds = 0 }},
		{"confidence above one", func(c *Config) { c.OCR.ConfidenceThreshold = 1.5 }},
		{"threshold above 255", func(c *Config) { c.OCR.Preprocess.Threshold = 300 }},
		{"scale below one", func(c *Config) { c.OCR.Preprocess.Scale = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate should reject invalid config")
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("sample config should validate: %v", err)
	}

	if err := WriteSample(path); err == nil {
		t.Error("WriteSample should refuse to overwrite")
	}
}

func TestPaths(t *testing.T) {
	cfg := Default()
	cfg.Storage.DataDir = "/tmp/subreader-test"

	if cfg.AudioCacheDir() != filepath.Join("/tmp/subreader-test", "audio") {
		t.Errorf("AudioCacheDir = %q", cfg.AudioCacheDir())
	}
	if cfg.HistoryPath() != filepath.Join("/tmp/subreader-test", "history.db") {
		t.Errorf("HistoryPath = %q", cfg.HistoryPath())
	}
}
