package ocr

import (
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/subreader/subreader/internal/apperr"
)

// tesseractEngine recognizes text through the Tesseract C library.
type tesseractEngine struct {
	language string
	psm      gosseract.PageSegMode
}

func newTesseract(cfg Config) *tesseractEngine {
	return &tesseractEngine{
		language: cfg.Language,
		psm:      gosseract.PageSegMode(cfg.PSM),
	}
}

// newClient builds a configured short-lived client. Clients are not safe for
// concurrent use, so each call gets its own.
func (t *tesseractEngine) newClient(img image.Image) (*gosseract.Client, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeOCRFailed, "encode image")
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(t.language); err != nil {
		client.Close()
		return nil, apperr.Wrap(err, apperr.CodeOCRFailed, "set language")
	}
	if err := client.SetPageSegMode(t.psm); err != nil {
		client.Close()
		return nil, apperr.Wrap(err, apperr.CodeOCRFailed, "set page segmentation mode")
	}
	if err := client.SetImageFromBytes(data); err != nil {
		client.Close()
		return nil, apperr.Wrap(err, apperr.CodeOCRFailed, "set image")
	}
	return client, nil
}

func (t *tesseractEngine) Recognize(img image.Image) (string, error) {
	client, err := t.newClient(img)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return "", apperr.Wrap(err, apperr.CodeOCRFailed, "tesseract recognition failed")
	}
	return strings.TrimSpace(text), nil
}

func (t *tesseractEngine) Confidence(img image.Image) (float64, error) {
	client, err := t.newClient(img)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return 0, apperr.Wrap(err, apperr.CodeOCRFailed, "tesseract confidence failed")
	}
	if len(boxes) == 0 {
		return 0, nil
	}

	var sum float64
	for _, box := range boxes {
		sum += box.Confidence
	}
	// Tesseract reports word confidence in [0,100].
	return sum / float64(len(boxes)) / 100.0, nil
}
