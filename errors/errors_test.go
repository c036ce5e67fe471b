package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestCodeOf(t *testing.T) {
	err := ErrInputNotFound("/tmp/missing.mp3")
	if got := CodeOf(err); got != ErrorCode_INPUT {
		t.Fatalf("expected INPUT code, got %s", got)
	}

	// Wrapped errors still resolve to their code.
	wrapped := fmt.Errorf("pipeline run failed: %w", ErrTranscription("a.mp3", stderrors.New("boom")))
	if !IsCode(wrapped, ErrorCode_TRANSCRIPTION) {
		t.Fatalf("expected TRANSCRIPTION code through wrapping")
	}

	if got := CodeOf(stderrors.New("plain")); got != ErrorCode_INTERNAL {
		t.Fatalf("expected INTERNAL for plain errors, got %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrAnalysis("a.mp3", cause)
	if !stderrors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the cause")
	}
}

func TestWithDetail(t *testing.T) {
	err := ErrStorage("write", stderrors.New("disk full")).WithDetail("path", "/out/report.json")
	if err.Details["path"] != "/out/report.json" {
		t.Fatalf("detail not recorded: %v", err.Details)
	}
	if err.Stage != StageStorage {
		t.Fatalf("expected storage stage, got %q", err.Stage)
	}
}
