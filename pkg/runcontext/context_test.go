package runcontext

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRunBeginCarriesMetadata(t *testing.T) {
	runID := uuid.New()
	ctx, cancel := RunBegin(context.Background(), runID, "/audio/standup.mp3", 3, time.Minute)
	defer cancel()

	if got := GetRunID(ctx); got != runID {
		t.Errorf("GetRunID = %s, want %s", got, runID)
	}
	if got := GetRunFile(ctx); got != "/audio/standup.mp3" {
		t.Errorf("GetRunFile = %q", got)
	}
	if got := GetRunIndex(ctx); got != 3 {
		t.Errorf("GetRunIndex = %d, want 3", got)
	}
	if GetRunStartTime(ctx).IsZero() {
		t.Error("expected start time to be set")
	}
	if _, ok := ctx.Deadline(); !ok {
		t.Error("expected a deadline for a positive timeout")
	}
}

func TestRunBeginZeroTimeoutHasNoDeadline(t *testing.T) {
	ctx, cancel := RunBegin(context.Background(), uuid.New(), "file.mp3", 0, 0)
	defer cancel()

	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout must not set a deadline")
	}
	if err := ctx.Err(); err != nil {
		t.Errorf("zero timeout must not expire the context: %v", err)
	}
}

func TestGettersOnBareContext(t *testing.T) {
	ctx := context.Background()

	if got := GetRunID(ctx); got != uuid.Nil {
		t.Errorf("GetRunID on bare context = %s, want nil UUID", got)
	}
	if got := GetRunFile(ctx); got != "" {
		t.Errorf("GetRunFile on bare context = %q", got)
	}
	if got := Elapsed(ctx); got != 0 {
		t.Errorf("Elapsed on bare context = %v, want 0", got)
	}
}
