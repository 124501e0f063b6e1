// Package recognizer orchestrates capture, normalization, OCR and filtering
// into one recognition cycle per call.
package recognizer

import (
	"log/slog"
	"strings"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/subreader/subreader/internal/capture"
	"github.com/subreader/subreader/internal/imaging"
	"github.com/subreader/subreader/internal/ocr"
	"github.com/subreader/subreader/internal/syncx"
)

// Reason classifies the outcome of a recognition cycle.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonCaptureFailed Reason = "capture_failed"
	ReasonNoText        Reason = "no_text"
	ReasonLowConfidence Reason = "low_confidence"
	ReasonDuplicate     Reason = "duplicate"
	ReasonError         Reason = "error"
)

// Describe returns a human-readable status line for the reason.
func (r Reason) Describe() string {
	switch r {
	case ReasonOK:
		return "recognized"
	case ReasonCaptureFailed:
		return "capture failed (check region or permissions)"
	case ReasonNoText:
		return "no text detected"
	case ReasonLowConfidence:
		return "confidence too low (consider lowering the threshold)"
	case ReasonDuplicate:
		return "duplicate subtitle skipped"
	case ReasonError:
		return "recognition error (see log)"
	default:
		return string(r)
	}
}

// Result is produced exactly once per recognition cycle.
type Result struct {
	Text       string
	Confidence float64
	Skipped    bool
	Reason     Reason
}

// Config parameterizes the recognizer.
type Config struct {
	ConfidenceThreshold float64
	Preprocess          imaging.Config
	// FramePrefilter skips OCR when the captured frame is visually
	// near-identical to the last settled one.
	FramePrefilter  bool
	MaxHashDistance int
}

// state is the only cross-cycle memory: the last accepted text, when it
// was captured, and the perceptual hash of the last settled frame.
type state struct {
	lastText      string
	lastCaptureAt time.Time
	lastHash      *goimagehash.ImageHash
}

// Recognizer runs recognition cycles against a capturer and an OCR engine.
// Cycles run strictly sequentially; the caller drives cadence.
type Recognizer struct {
	capturer capture.Capturer
	engine   ocr.Engine
	cfg      Config
	st       *syncx.RWGuard[state]
}

// New creates a recognizer.
func New(capturer capture.Capturer, engine ocr.Engine, cfg Config) *Recognizer {
	return &Recognizer{
		capturer: capturer,
		engine:   engine,
		cfg:      cfg,
		st:       syncx.NewGuard(state{}),
	}
}

// Recognize runs one capture -> normalize -> recognize -> filter cycle.
// It never panics; engine failures map to ReasonError.
func (r *Recognizer) Recognize(region capture.Region) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("recognition cycle panicked", "panic", rec)
			res = Result{Skipped: true, Reason: ReasonError}
		}
	}()

	img, err := r.capturer.Grab(region)
	if err != nil || img == nil {
		slog.Debug("capture failed", "error", err)
		return Result{Skipped: true, Reason: ReasonCaptureFailed}
	}

	var frameHash *goimagehash.ImageHash
	if r.cfg.FramePrefilter {
		frameHash, _ = goimagehash.PerceptionHash(img)
		if frameHash != nil && r.sameFrame(frameHash) {
			slog.Debug("skipping recognition, frame unchanged")
			// An unchanged frame repeats its last settled outcome: a
			// duplicate of the accepted text, or still no text at all.
			if r.LastText() == "" {
				return Result{Skipped: true, Reason: ReasonNoText}
			}
			return Result{Skipped: true, Reason: ReasonDuplicate}
		}
	}

	normalized := imaging.Normalize(img, r.cfg.Preprocess)

	text, err := r.engine.Recognize(normalized)
	if err != nil {
		slog.Error("recognition failed", "error", err)
		return Result{Skipped: true, Reason: ReasonError}
	}
	confidence, err := r.engine.Confidence(normalized)
	if err != nil {
		slog.Error("confidence query failed", "error", err)
		return Result{Skipped: true, Reason: ReasonError}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		r.commitFrame(frameHash)
		return Result{Confidence: confidence, Skipped: true, Reason: ReasonNoText}
	}

	if confidence < r.cfg.ConfidenceThreshold {
		slog.Debug("low confidence result discarded", "confidence", confidence, "text", text)
		return Result{Confidence: confidence, Skipped: true, Reason: ReasonLowConfidence}
	}

	// Dedup is exact, case- and whitespace-sensitive equality against
	// the last accepted text only.
	duplicate := false
	r.st.Write(func(s *state) {
		if frameHash != nil {
			s.lastHash = frameHash
		}
		if text == s.lastText {
			duplicate = true
			return
		}
		s.lastText = text
		s.lastCaptureAt = time.Now()
	})
	if duplicate {
		slog.Debug("duplicate subtitle skipped", "text", text)
		return Result{Confidence: confidence, Skipped: true, Reason: ReasonDuplicate}
	}

	return Result{Text: text, Confidence: confidence, Reason: ReasonOK}
}

// sameFrame reports whether the frame is perceptually near-identical to the
// last settled frame. Comparison only; the stored hash advances via
// commitFrame when a cycle ends in ok, duplicate or no text, so a frame
// rejected for low confidence or an engine error is read again next cycle.
func (r *Recognizer) sameFrame(hash *goimagehash.ImageHash) bool {
	last := r.st.Get().lastHash
	if last == nil {
		return false
	}
	dist, err := last.Distance(hash)
	return err == nil && dist <= r.cfg.MaxHashDistance
}

func (r *Recognizer) commitFrame(hash *goimagehash.ImageHash) {
	if hash == nil {
		return
	}
	r.st.Write(func(s *state) { s.lastHash = hash })
}

// Reset clears the dedup state so a later session can re-announce text
// identical to the last one spoken before the stop.
func (r *Recognizer) Reset() {
	r.st.Set(state{})
}

// LastText returns the last accepted subtitle text.
func (r *Recognizer) LastText() string {
	return r.st.Get().lastText
}

// LastCaptureAt returns when the last accepted text was captured.
func (r *Recognizer) LastCaptureAt() time.Time {
	return r.st.Get().lastCaptureAt
}
