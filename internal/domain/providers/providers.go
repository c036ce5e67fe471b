// Package providers defines the narrow interfaces over the two external
// black-box capabilities the pipeline orchestrates. The pipeline is
// polymorphic over these so tests run against deterministic fakes.
package providers

import (
	"context"

	"github.com/insightloop-ai/insightloop/internal/domain/entities"
)

// TranscriptionResult is the complete output of the transcription
// capability: the transcript itself plus metadata derived from the audio.
type TranscriptionResult struct {
	Transcript      entities.Transcript
	Language        string
	DurationSeconds float64
}

// TranscriptionProvider converts local audio into a transcript.
// languageHint is an optional ISO language code; when empty the provider
// requests automatic language detection.
type TranscriptionProvider interface {
	Transcribe(ctx context.Context, audioPath string, languageHint string) (*TranscriptionResult, error)
}

// AnalysisProvider derives structured meaning from transcript text.
type AnalysisProvider interface {
	Summarize(ctx context.Context, transcript string, meetingTitle string) (*entities.Summary, error)
	ExtractActionItems(ctx context.Context, transcript string, participants []string) ([]entities.ActionItem, error)
}
