// Package report orchestrates the meeting report pipeline: prepare the
// input media, transcribe it, analyze the transcript and assemble the
// final report.
package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/internal/domain/entities"
	"github.com/insightloop-ai/insightloop/internal/domain/providers"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/media"
)

// DefaultMeetingTitle is used when the caller gives no title
const DefaultMeetingTitle = "Meeting"

// MediaPreparer abstracts the media package so tests can skip ffmpeg
type MediaPreparer interface {
	PrepareAudio(ctx context.Context, inputPath string) (string, func(), error)
}

// GenerateInput is one pipeline request
type GenerateInput struct {
	AudioPath    string
	Title        string
	LanguageHint string
	Participants []string
}

// Service runs the pipeline. Transcription failures abort the run;
// analysis failures degrade to a partial report that still carries the
// transcript, returned alongside the error so callers can persist it.
type Service struct {
	transcriber          providers.TranscriptionProvider
	analyzer             providers.AnalysisProvider
	media                MediaPreparer
	transcriptionTimeout time.Duration
	analysisTimeout      time.Duration
	logger               *zap.Logger
}

// NewService creates a pipeline service
func NewService(
	transcriber providers.TranscriptionProvider,
	analyzer providers.AnalysisProvider,
	mediaPreparer MediaPreparer,
	transcriptionTimeout time.Duration,
	analysisTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		transcriber:          transcriber,
		analyzer:             analyzer,
		media:                mediaPreparer,
		transcriptionTimeout: transcriptionTimeout,
		analysisTimeout:      analysisTimeout,
		logger:               logger,
	}
}

// GenerateReport runs the full pipeline for one input file.
//
// On analysis failure the returned report is non-nil with Partial set and
// the error carries the analysis failure; the caller decides whether to
// persist the flagged report. On input or transcription failure the report
// is nil.
func (s *Service) GenerateReport(ctx context.Context, input GenerateInput) (*entities.MeetingReport, error) {
	title := input.Title
	if title == "" {
		title = DefaultMeetingTitle
	}

	s.logger.Info("🚀 Starting report generation",
		zap.String("file", input.AudioPath),
		zap.String("title", title),
		zap.String("language_hint", input.LanguageHint))

	if err := s.checkInput(input.AudioPath); err != nil {
		return nil, err
	}

	audioPath, cleanup, err := s.media.PrepareAudio(ctx, input.AudioPath)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result, err := s.transcribe(ctx, input.AudioPath, audioPath, input.LanguageHint)
	if err != nil {
		return nil, err
	}

	if result.Transcript.IsEmpty() {
		s.logger.Error("❌ Transcription produced no text",
			zap.String("file", input.AudioPath))
		return nil, apperrors.ErrEmptyTranscript(input.AudioPath)
	}

	report := entities.NewMeetingReport(title, time.Now().UTC())
	report.MeetingInfo.Language = result.Language
	report.MeetingInfo.DurationMinutes = result.DurationSeconds / 60.0
	report.MeetingInfo.Participants = input.Participants
	report.Transcription = result.Transcript

	analysisErr := s.analyze(ctx, report, input)

	report.Normalize()
	report.RecomputeStats()

	if analysisErr != nil {
		report.Partial = true
		report.AnalysisError = analysisErr.Error()
		s.logger.Warn("⚠️ Returning partial report without analysis",
			zap.String("file", input.AudioPath),
			zap.Error(analysisErr))
		return report, apperrors.ErrAnalysis(input.AudioPath, analysisErr)
	}

	s.logger.Info("✅ Report generated",
		zap.String("file", input.AudioPath),
		zap.Int("segments", report.Stats.TotalSegments),
		zap.Int("action_items", report.Stats.TotalActionItems),
		zap.Int("high_priority", report.Stats.HighPriorityItems))

	return report, nil
}

func (s *Service) checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrInputNotFound(path)
		}
		return apperrors.ErrInput(err.Error())
	}
	if info.IsDir() {
		return apperrors.ErrInput("input path is a directory")
	}
	if !media.IsSupported(path) {
		return apperrors.ErrUnsupportedFormat(path, strings.ToLower(filepath.Ext(path)))
	}
	return nil
}

func (s *Service) transcribe(ctx context.Context, inputPath, audioPath, languageHint string) (*providers.TranscriptionResult, error) {
	tctx := ctx
	if s.transcriptionTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.transcriptionTimeout)
		defer cancel()
	}

	s.logger.Info("🎙️ Transcribing audio",
		zap.String("file", audioPath))

	result, err := s.transcriber.Transcribe(tctx, audioPath, languageHint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.ErrTranscriptionTimeout(inputPath, err)
		}
		return nil, apperrors.ErrTranscription(inputPath, err)
	}

	s.logger.Info("✅ Transcription done",
		zap.Int("segments", len(result.Transcript.Segments)),
		zap.String("language", result.Language),
		zap.Float64("duration_s", result.DurationSeconds))

	return result, nil
}

// analyze runs summarization and action item extraction, filling the
// report in place. The two calls share one analysis timeout; the first
// failure aborts the rest.
func (s *Service) analyze(ctx context.Context, report *entities.MeetingReport, input GenerateInput) error {
	actx := ctx
	if s.analysisTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, s.analysisTimeout)
		defer cancel()
	}

	summary, err := s.analyzer.Summarize(actx, report.Transcription.FullText, report.MeetingInfo.Title)
	if err != nil {
		return err
	}
	report.Summary = *summary

	// Summary-detected participants stand in when the caller named none,
	// both in the report metadata and for action item attribution
	participants := input.Participants
	if len(participants) == 0 && len(summary.Participants) > 0 {
		participants = summary.Participants
		report.MeetingInfo.Participants = participants
	}

	items, err := s.analyzer.ExtractActionItems(actx, report.Transcription.FullText, participants)
	if err != nil {
		return err
	}
	report.ActionItems = items

	return nil
}
