package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormat(t *testing.T) {
	err := New(CodeSynthesisFailed, "synthesis failed")
	if !strings.Contains(err.Error(), "synthesis_failed") {
		t.Errorf("Error() = %q, want code in message", err.Error())
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(cause, CodeUnavailable, "engine unreachable")

	if !errors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() = %q, want cause included", err.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeCaptureFailed, "no image")

	if !IsCode(err, CodeCaptureFailed) {
		t.Error("IsCode should match capture_failed")
	}
	if IsCode(err, CodePlaybackFailed) {
		t.Error("IsCode should not match playback_failed")
	}
	if IsCode(fmt.Errorf("plain"), CodeCaptureFailed) {
		t.Error("IsCode should not match plain errors")
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(CodeUnavailable, "down")) {
		t.Error("unavailable should be retryable")
	}
	if !IsRetryable(New(CodeTimeout, "slow")) {
		t.Error("timeout should be retryable")
	}
	if IsRetryable(New(CodeSynthesisFailed, "bad input")) {
		t.Error("synthesis_failed should not be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors should not be retryable")
	}
}

func TestWithMetadata(t *testing.T) {
	err := Newf(CodeOCRFailed, "engine %s failed", "tesseract").WithMetadata("lang", "eng")

	if err.Metadata["lang"] != "eng" {
		t.Errorf("Metadata[lang] = %q, want %q", err.Metadata["lang"], "eng")
	}
	if !strings.Contains(err.Error(), "tesseract") {
		t.Errorf("Error() = %q, want formatted message", err.Error())
	}
}
