// Package ocr provides pluggable text recognition engines.
package ocr

import (
	"bytes"
	"image"
	"image/png"
	"log/slog"
)

// Engine maps a normalized image to recognized text and a confidence score.
// Implementations must not mutate the input image.
type Engine interface {
	// Recognize extracts text from the image. Empty output means no text.
	Recognize(img image.Image) (string, error)
	// Confidence reports the engine's certainty for the image, in [0,1].
	Confidence(img image.Image) (float64, error)
}

// Config selects and parameterizes an engine.
type Config struct {
	Engine        string
	Language      string
	TesseractPath string
	PSM           int
}

// New constructs the configured engine. An unknown engine name falls back
// to the tesseract library engine.
func New(cfg Config) (Engine, error) {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.PSM == 0 {
		cfg.PSM = 7
	}

	switch cfg.Engine {
	case "tesseract", "":
		return newTesseract(cfg), nil
	case "command":
		return newCommand(cfg)
	default:
		slog.Warn("unknown ocr engine, using tesseract", "engine", cfg.Engine)
		return newTesseract(cfg), nil
	}
}

// encodePNG serializes an image for engines that consume bytes or files.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
