package runcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type KeyContext string

var (
	keyRunID    KeyContext = "run_id"
	keyRunFile  KeyContext = "run_file"
	keyRunIndex KeyContext = "run_index"
	keyRunStart KeyContext = "run_start_time"
)

// RunMetadata holds metadata for a single pipeline run
type RunMetadata struct {
	RunID     uuid.UUID
	File      string
	Index     int
	StartTime time.Time
}

// RunBegin initializes a per-file run context with metadata and a timeout.
// The timeout caps the whole run including transcription polling; zero or
// negative means no deadline.
func RunBegin(parentCtx context.Context, runID uuid.UUID, file string, index int, timeout time.Duration) (context.Context, context.CancelFunc) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parentCtx, timeout)
	} else {
		ctx, cancel = context.WithCancel(parentCtx)
	}

	ctx = context.WithValue(ctx, keyRunID, runID)
	ctx = context.WithValue(ctx, keyRunFile, file)
	ctx = context.WithValue(ctx, keyRunIndex, index)
	ctx = context.WithValue(ctx, keyRunStart, time.Now())

	return ctx, cancel
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(keyRunID).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// GetRunFile retrieves the input file path from context
func GetRunFile(ctx context.Context) string {
	if file, ok := ctx.Value(keyRunFile).(string); ok {
		return file
	}
	return ""
}

// GetRunIndex retrieves the position of this file within a batch
func GetRunIndex(ctx context.Context) int {
	if idx, ok := ctx.Value(keyRunIndex).(int); ok {
		return idx
	}
	return 0
}

// GetRunStartTime retrieves the run start time from context
func GetRunStartTime(ctx context.Context) time.Time {
	if ts, ok := ctx.Value(keyRunStart).(time.Time); ok {
		return ts
	}
	return time.Time{}
}

// Elapsed returns the wall time since the run began
func Elapsed(ctx context.Context) time.Duration {
	start := GetRunStartTime(ctx)
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}
