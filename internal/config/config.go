// Package config handles application configuration loaded from TOML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Region describes the screen rectangle to capture.
type Region struct {
	X      int `toml:"x"`
	Y      int `toml:"y"`
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Capture contains screen capture settings.
type Capture struct {
	Region          Region  `toml:"region"`
	IntervalSeconds float64 `toml:"interval_seconds"`
	Method          string  `toml:"method"`
}

// Preprocess contains image normalization settings.
type Preprocess struct {
	Enable        bool    `toml:"enable"`
	Grayscale     bool    `toml:"grayscale"`
	Threshold     int     `toml:"threshold"`
	Invert        bool    `toml:"invert"`
	AutoThreshold bool    `toml:"auto_threshold"`
	Scale         float64 `toml:"scale"`
}

// OCR contains recognition engine settings.
type OCR struct {
	Engine              string     `toml:"engine"`
	Language            string     `toml:"language"`
	ConfidenceThreshold float64    `toml:"confidence_threshold"`
	TesseractPath       string     `toml:"tesseract_path"`
	PSM                 int        `toml:"psm"`
	FramePrefilter      bool       `toml:"frame_prefilter"`
	MaxHashDistance     int        `toml:"max_hash_distance"`
	Preprocess          Preprocess `toml:"preprocess"`
}

// TTS contains speech synthesis settings.
type TTS struct {
	Engine          string  `toml:"engine"`
	Voice           string  `toml:"voice"`
	Language        string  `toml:"language"`
	SpeakingRate    float64 `toml:"speaking_rate"`
	Pitch           float64 `toml:"pitch"`
	FallbackEngine  string  `toml:"fallback_engine"`
	FallbackVoice   string  `toml:"fallback_voice"`
	CredentialsFile string  `toml:"credentials_file"`
}

// Server contains the HTTP/WebSocket front end settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Storage contains data directory settings. The audio cache lives under
// DataDir/audio and the recognition history database under DataDir.
type Storage struct {
	DataDir string `toml:"data_dir"`
}

// Log contains logging settings.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// Config is the application configuration root.
type Config struct {
	Capture   Capture `toml:"capture"`
	OCR       OCR     `toml:"ocr"`
	TTS       TTS     `toml:"tts"`
	Server    Server  `toml:"server"`
	Storage   Storage `toml:"storage"`
	Log       Log     `toml:"log"`
	AutoStart bool    `toml:"auto_start"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Capture: Capture{
			Region:          Region{X: 0, Y: 0, Width: 800, Height: 100},
			IntervalSeconds: 1.0,
			Method:          "native",
		},
		OCR: OCR{
			Engine:              "tesseract",
			Language:            "eng",
			ConfidenceThreshold: 0.6,
			PSM:                 7,
			FramePrefilter:      true,
			MaxHashDistance:     3,
			Preprocess: Preprocess{
				Enable:        true,
				Grayscale:     true,
				Threshold:     160,
				AutoThreshold: true,
				Scale:         2.0,
			},
		},
		TTS: TTS{
			Engine:         "gcloud",
			Voice:          "en-US-Neural2-F",
			Language:       "en-US",
			SpeakingRate:   1.0,
			FallbackEngine: "command",
		},
		Server:  Server{Bind: ":8712"},
		Storage: Storage{DataDir: defaultDataDir()},
		Log:     Log{Level: "info", Format: "console"},
	}
}

func defaultDataDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "subreader")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(base, "subreader", "config.toml")
}

// Load reads configuration from path, applying defaults for absent keys.
// A missing file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	r := c.Capture.Region
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("capture region: width and height must be positive, got %dx%d", r.Width, r.Height)
	}
	if c.Capture.IntervalSeconds <= 0 {
		return fmt.Errorf("capture interval: must be positive, got %v", c.Capture.IntervalSeconds)
	}
	if c.OCR.ConfidenceThreshold < 0 || c.OCR.ConfidenceThreshold > 1 {
		return fmt.Errorf("ocr confidence_threshold: must be in [0,1], got %v", c.OCR.ConfidenceThreshold)
	}
	if c.OCR.Preprocess.Threshold < 0 || c.OCR.Preprocess.Threshold > 255 {
		return fmt.Errorf("preprocess threshold: must be in [0,255], got %d", c.OCR.Preprocess.Threshold)
	}
	if c.OCR.Preprocess.Scale < 1.0 {
		return fmt.Errorf("preprocess scale: must be >= 1.0, got %v", c.OCR.Preprocess.Scale)
	}
	return nil
}

// EnsureDirectories creates the data directories the application writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Storage.DataDir, c.AudioCacheDir()}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %s: %w", dir, err)
		}
	}
	return nil
}

// AudioCacheDir returns the directory for cached audio artifacts.
func (c *Config) AudioCacheDir() string {
	return filepath.Join(c.Storage.DataDir, "audio")
}

// HistoryPath returns the recognition history database path.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Storage.DataDir, "history.db")
}

// LockPath returns the single-instance lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.Storage.DataDir, "subreader.lock")
}

// WriteSample writes a commented sample configuration to path.
// Fails if the file already exists.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}
