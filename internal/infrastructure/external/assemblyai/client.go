// Package assemblyai implements the transcription capability against the
// AssemblyAI API using the official SDK. The flow is upload, submit, poll:
// the local audio file is uploaded, a transcription job is submitted for
// the returned URL, and the job is polled until it reaches a terminal
// status.
package assemblyai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/insightloop-ai/insightloop/internal/domain/entities"
	"github.com/insightloop-ai/insightloop/internal/domain/providers"
	"github.com/insightloop-ai/insightloop/pkg/config"
)

var errStillProcessing = errors.New("transcript still processing")

// Client wraps the AssemblyAI SDK behind the TranscriptionProvider
// interface
type Client struct {
	sdk             *aai.Client
	pollInterval    time.Duration
	pollMaxInterval time.Duration
	logger          *zap.Logger
}

var _ providers.TranscriptionProvider = (*Client)(nil)

// NewClient creates a transcription client from config
func NewClient(cfg config.AssemblyAIConfig, logger *zap.Logger) *Client {
	opts := []aai.ClientOption{aai.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, aai.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		sdk:             aai.NewClientWithOptions(opts...),
		pollInterval:    cfg.PollInterval,
		pollMaxInterval: cfg.PollMaxInterval,
		logger:          logger,
	}
}

// Transcribe uploads the audio file, submits a transcription job and polls
// until completion. The ctx deadline bounds the whole operation including
// polling.
func (c *Client) Transcribe(ctx context.Context, audioPath string, languageHint string) (*providers.TranscriptionResult, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	c.logger.Info("📤 Uploading audio file",
		zap.String("file", audioPath))

	uploadURL, err := c.sdk.Upload(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	c.logger.Info("✅ Audio uploaded",
		zap.String("upload_url", uploadURL))

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(true),
	}
	if languageHint != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(languageHint)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}

	submitted, err := c.sdk.Transcripts.SubmitFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to submit transcription job: %w", err)
	}

	transcriptID := ""
	if submitted.ID != nil {
		transcriptID = *submitted.ID
	}

	c.logger.Info("🎙️ Transcription job submitted",
		zap.String("transcript_id", transcriptID),
		zap.String("status", string(submitted.Status)))

	transcript, err := c.pollUntilDone(ctx, transcriptID)
	if err != nil {
		return nil, err
	}

	return c.buildResult(transcript), nil
}

// pollUntilDone polls the transcript status with exponential backoff until
// it is completed or failed. The backoff has no elapsed-time cap; the ctx
// deadline is the only timeout.
func (c *Client) pollUntilDone(ctx context.Context, transcriptID string) (*aai.Transcript, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.pollInterval
	bo.MaxInterval = c.pollMaxInterval
	bo.MaxElapsedTime = 0

	var final aai.Transcript
	operation := func() error {
		transcript, err := c.sdk.Transcripts.Get(ctx, transcriptID)
		if err != nil {
			// Transient API errors get retried on the same schedule
			c.logger.Warn("⚠️ Failed to poll transcript status",
				zap.String("transcript_id", transcriptID),
				zap.Error(err))
			return err
		}

		switch transcript.Status {
		case aai.TranscriptStatusCompleted:
			final = transcript
			return nil
		case aai.TranscriptStatusError:
			msg := "transcription failed"
			if transcript.Error != nil {
				msg = *transcript.Error
			}
			return backoff.Permanent(fmt.Errorf("transcription job failed: %s", msg))
		default:
			c.logger.Debug("⏳ Transcript still processing",
				zap.String("transcript_id", transcriptID),
				zap.String("status", string(transcript.Status)))
			return errStillProcessing
		}
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	c.logger.Info("✅ Transcription completed",
		zap.String("transcript_id", transcriptID))

	return &final, nil
}

// buildResult maps the API transcript onto the domain transcript. Speaker
// labelled utterances become segments with times converted from
// milliseconds to seconds; when no utterances are present the full text
// becomes a single unattributed segment.
func (c *Client) buildResult(t *aai.Transcript) *providers.TranscriptionResult {
	result := &providers.TranscriptionResult{
		Transcript: *entities.NewTranscript(),
	}

	if t.Text != nil {
		result.Transcript.FullText = *t.Text
	}
	result.Language = string(t.LanguageCode)
	if t.AudioDuration != nil {
		result.DurationSeconds = float64(*t.AudioDuration)
	}

	for _, u := range t.Utterances {
		segment := entities.Segment{}
		if u.Speaker != nil {
			segment.Speaker = "Speaker " + *u.Speaker
		}
		if u.Start != nil {
			segment.StartTime = float64(*u.Start) / 1000.0
		}
		if u.End != nil {
			segment.EndTime = float64(*u.End) / 1000.0
		}
		if u.Text != nil {
			segment.Text = *u.Text
		}
		if u.Confidence != nil {
			segment.Confidence = *u.Confidence
		}
		result.Transcript.Segments = append(result.Transcript.Segments, segment)
	}

	if len(result.Transcript.Segments) == 0 && result.Transcript.FullText != "" {
		segment := entities.Segment{
			Text:    result.Transcript.FullText,
			EndTime: result.DurationSeconds,
		}
		if t.Confidence != nil {
			segment.Confidence = *t.Confidence
		}
		result.Transcript.Segments = append(result.Transcript.Segments, segment)
	}

	result.Transcript.Normalize()
	return result
}
