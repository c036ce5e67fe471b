// Package batch runs the report pipeline over many files with bounded
// concurrency. Files are independent: one failure never stops the rest.
package batch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/internal/domain/entities"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/storage"
	"github.com/insightloop-ai/insightloop/internal/usecase/report"
	"github.com/insightloop-ai/insightloop/pkg/runcontext"
)

// ReportGenerator is the slice of the pipeline service the runner needs
type ReportGenerator interface {
	GenerateReport(ctx context.Context, input report.GenerateInput) (*entities.MeetingReport, error)
}

// FileResult is the outcome for a single input file
type FileResult struct {
	File       string
	ReportPath string
	Err        error
}

// Result aggregates a batch run
type Result struct {
	Files     []FileResult
	Succeeded int
	Failed    int
}

// Runner fans the pipeline out over input files
type Runner struct {
	generator   ReportGenerator
	outputDir   string
	concurrency int
	fileTimeout time.Duration
	logger      *zap.Logger
}

// NewRunner creates a batch runner. concurrency values below 1 are raised
// to 1.
func NewRunner(generator ReportGenerator, outputDir string, concurrency int, fileTimeout time.Duration, logger *zap.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		generator:   generator,
		outputDir:   outputDir,
		concurrency: concurrency,
		fileTimeout: fileTimeout,
		logger:      logger,
	}
}

// Run processes every file and returns per-file outcomes in input order.
// Partial reports (transcribed but not analyzed) are still saved; their
// files count as failed.
func (r *Runner) Run(ctx context.Context, files []string, title string, languageHint string) *Result {
	r.logger.Info("🚀 Starting batch run",
		zap.Int("files", len(files)),
		zap.Int("concurrency", r.concurrency))

	results := make([]FileResult, len(files))
	sem := make(chan struct{}, r.concurrency)

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(index int, file string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[index] = r.runOne(ctx, index, file, title, languageHint)
		}(i, file)
	}
	wg.Wait()

	result := &Result{Files: results}
	for _, fr := range results {
		if fr.Err != nil {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	r.logger.Info("🏁 Batch run finished",
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed))

	return result
}

func (r *Runner) runOne(ctx context.Context, index int, file string, title string, languageHint string) FileResult {
	runID := uuid.New()
	runCtx, cancel := runcontext.RunBegin(ctx, runID, file, index, r.fileTimeout)
	defer cancel()

	r.logger.Info("▶️ Processing file",
		zap.String("run_id", runID.String()),
		zap.String("file", file),
		zap.Int("index", index))

	rep, genErr := r.generator.GenerateReport(runCtx, report.GenerateInput{
		AudioPath:    file,
		Title:        title,
		LanguageHint: languageHint,
	})

	fr := FileResult{File: file, Err: genErr}

	// A partial report still gets persisted so the transcript survives
	if rep != nil {
		path := storage.ReportPathFor(r.outputDir, file, rep.CreatedAt)
		if saveErr := storage.SaveReport(rep, path); saveErr != nil {
			r.logger.Error("❌ Failed to save report",
				zap.String("file", file),
				zap.Error(saveErr))
			if fr.Err == nil {
				fr.Err = saveErr
			}
		} else {
			fr.ReportPath = path
		}
	}

	if fr.Err != nil {
		r.logger.Error("❌ File failed",
			zap.String("file", file),
			zap.String("stage", stageOf(fr.Err)),
			zap.Duration("elapsed", runcontext.Elapsed(runCtx)),
			zap.Error(fr.Err))
	} else {
		r.logger.Info("✅ File done",
			zap.String("file", file),
			zap.String("report", fr.ReportPath),
			zap.Duration("elapsed", runcontext.Elapsed(runCtx)))
	}

	return fr
}

func stageOf(err error) string {
	var appErr apperrors.AppError
	if errors.As(err, &appErr) && appErr.Stage != "" {
		return appErr.Stage
	}
	return apperrors.CodeOf(err).String()
}
