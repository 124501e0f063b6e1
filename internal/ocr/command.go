package ocr

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/subreader/subreader/internal/apperr"
)

// commandEngine shells out to the tesseract CLI. Used where linking
// the C library is not an option.
type commandEngine struct {
	binary   string
	language string
	psm      int
}

func newCommand(cfg Config) (*commandEngine, error) {
	binary := cfg.TesseractPath
	if binary == "" {
		binary = "tesseract"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, apperr.Wrapf(err, apperr.CodeEngineUnavailable, "tesseract binary %q not found", binary)
	}
	return &commandEngine{binary: path, language: cfg.Language, psm: cfg.PSM}, nil
}

func (c *commandEngine) run(img image.Image, format string) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeOCRFailed, "encode image")
	}

	dir, err := os.MkdirTemp("", "subreader-ocr-*")
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeOCRFailed, "temp dir")
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(inPath, data, 0o600); err != nil {
		return "", apperr.Wrap(err, apperr.CodeOCRFailed, "write frame")
	}

	args := []string{inPath, "stdout", "-l", c.language, "--psm", strconv.Itoa(c.psm)}
	if format != "" {
		args = append(args, format)
	}
	cmd := exec.Command(c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", apperr.Wrapf(err, apperr.CodeOCRFailed, "tesseract: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func (c *commandEngine) Recognize(img image.Image) (string, error) {
	out, err := c.run(img, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *commandEngine) Confidence(img image.Image) (float64, error) {
	out, err := c.run(img, "tsv")
	if err != nil {
		return 0, err
	}
	conf, err := parseTSVConfidence(out)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeOCRFailed, "parse tsv output")
	}
	return conf, nil
}

// parseTSVConfidence averages per-word confidences from tesseract TSV output.
// Rows with conf -1 are structural (page/block/line) and skipped.
func parseTSVConfidence(tsv string) (float64, error) {
	lines := strings.Split(tsv, "\n")
	if len(lines) == 0 {
		return 0, fmt.Errorf("empty tsv")
	}

	const confColumn = 10
	var sum float64
	var count int
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue // header
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= confColumn {
			continue
		}
		conf, err := strconv.ParseFloat(fields[confColumn], 64)
		if err != nil || conf < 0 {
			continue
		}
		sum += conf
		count++
	}
	if count == 0 {
		return 0, nil
	}
	return sum / float64(count) / 100.0, nil
}
