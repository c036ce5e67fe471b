// Command insightloop turns meeting recordings into structured JSON
// reports: transcription with speaker labels, an executive summary and
// extracted action items.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/internal/domain/entities"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/external/assemblyai"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/external/openai"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/external/zoom"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/media"
	"github.com/insightloop-ai/insightloop/internal/infrastructure/storage"
	"github.com/insightloop-ai/insightloop/internal/usecase/batch"
	"github.com/insightloop-ai/insightloop/internal/usecase/report"
	"github.com/insightloop-ai/insightloop/pkg/config"
	"github.com/insightloop-ai/insightloop/pkg/executor"
)

var cli struct {
	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate a report for one recording."`
	Batch    BatchCmd    `cmd:"" help:"Generate reports for many recordings."`
	Zoom     ZoomCmd     `cmd:"" help:"Fetch Zoom cloud recordings and generate reports."`
}

// appContext carries the wired dependencies into command Run methods
type appContext struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *report.Service
	archiver *storage.Archiver
}

// GenerateCmd processes a single audio or video file
type GenerateCmd struct {
	AudioFile string `arg:"" help:"Path to the meeting audio or video file."`
	Title     string `arg:"" optional:"" help:"Meeting title."`
	Language  string `arg:"" optional:"" help:"ISO language code hint (auto-detected when omitted)."`

	Output       string   `short:"o" help:"Report output path (defaults to meeting_report_<timestamp>.json in the output dir)."`
	Participants []string `short:"p" help:"Known participant names for action item attribution."`
}

// BatchCmd processes many files with bounded concurrency
type BatchCmd struct {
	Paths []string `arg:"" help:"Recording files or directories containing them."`

	Title       string `help:"Title applied to every meeting in the batch."`
	Language    string `help:"ISO language code hint for every file."`
	Concurrency int    `help:"Parallel pipeline runs (defaults to BATCH_CONCURRENCY)."`
}

// ZoomCmd downloads cloud recordings in a date range and processes each
type ZoomCmd struct {
	From time.Time `format:"2006-01-02" help:"Start of the date range (YYYY-MM-DD, default 7 days ago)."`
	To   time.Time `format:"2006-01-02" help:"End of the date range (YYYY-MM-DD, default today)."`

	Language string `help:"ISO language code hint for every recording."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("insightloop"),
		kong.Description("AI meeting reports: transcription, summary and action items from a recording."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := buildApp(cfg, logger)
	if err != nil {
		logger.Error("❌ Failed to build application", zap.Error(err))
		os.Exit(1)
	}

	if err := kctx.Run(app); err != nil {
		logger.Error("❌ Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func buildApp(cfg *config.Config, logger *zap.Logger) (*appContext, error) {
	transcriber := assemblyai.NewClient(cfg.Assembly, logger)
	analyzer := openai.NewClient(cfg.OpenAI, logger)
	processor := media.NewProcessor(executor.New(), cfg.Pipeline.WorkDir, logger)

	service := report.NewService(
		transcriber,
		analyzer,
		processor,
		cfg.Pipeline.TranscriptionTimeout,
		cfg.Pipeline.AnalysisTimeout,
		logger,
	)

	app := &appContext{cfg: cfg, logger: logger, service: service}

	if cfg.Archive.Enabled {
		archiver, err := storage.NewArchiver(cfg.Archive, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up report archiving: %w", err)
		}
		app.archiver = archiver
	}

	return app, nil
}

// signalContext cancels on SIGINT/SIGTERM so in-flight uploads stop cleanly
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Run generates a single report
func (c *GenerateCmd) Run(app *appContext) error {
	ctx, cancel := signalContext()
	defer cancel()

	rep, genErr := app.service.GenerateReport(ctx, report.GenerateInput{
		AudioPath:    c.AudioFile,
		Title:        c.Title,
		LanguageHint: c.Language,
		Participants: c.Participants,
	})

	if rep != nil {
		path := c.Output
		if path == "" {
			path = storage.DefaultReportPath(app.cfg.Pipeline.OutputDir, rep.CreatedAt)
		}
		if err := storage.SaveReport(rep, path); err != nil {
			if genErr != nil {
				return fmt.Errorf("%w (additionally failed to save partial report: %v)", genErr, err)
			}
			return err
		}

		app.archive(ctx, path)
		printReport(rep, path)
	}

	if genErr != nil {
		if apperrors.IsCode(genErr, apperrors.ErrorCode_ANALYSIS) && rep != nil {
			fmt.Printf("\n⚠️  Analysis failed; the saved report is marked partial but keeps the full transcript.\n")
		}
		return genErr
	}
	return nil
}

// Run generates reports for every file, continuing past failures
func (c *BatchCmd) Run(app *appContext) error {
	ctx, cancel := signalContext()
	defer cancel()

	files, err := collectInputFiles(c.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported audio or video files found (supported: %s)", strings.Join(media.SupportedExtensions(), ", "))
	}

	concurrency := c.Concurrency
	if concurrency == 0 {
		concurrency = app.cfg.Pipeline.BatchConcurrency
	}

	runner := batch.NewRunner(
		app.service,
		app.cfg.Pipeline.OutputDir,
		concurrency,
		app.cfg.Pipeline.TranscriptionTimeout+app.cfg.Pipeline.AnalysisTimeout,
		app.logger,
	)

	result := runner.Run(ctx, files, c.Title, c.Language)

	fmt.Printf("\n📊 Batch finished: %d succeeded, %d failed\n", result.Succeeded, result.Failed)
	for _, fr := range result.Files {
		switch {
		case fr.Err == nil:
			fmt.Printf("  ✅ %s → %s\n", fr.File, fr.ReportPath)
			app.archive(ctx, fr.ReportPath)
		case fr.ReportPath != "":
			fmt.Printf("  ⚠️  %s → %s (partial: %v)\n", fr.File, fr.ReportPath, fr.Err)
		default:
			fmt.Printf("  ❌ %s: %v\n", fr.File, fr.Err)
		}
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, len(result.Files))
	}
	return nil
}

// collectInputFiles expands directory arguments into their supported
// recordings (non-recursive, sorted). Explicit file arguments pass through
// untouched so unsupported ones surface as per-file errors.
func collectInputFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("cannot list %s: %w", p, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			full := filepath.Join(p, entry.Name())
			if media.IsSupported(full) {
				files = append(files, full)
			}
		}
	}
	return files, nil
}

// Run fetches recordings from Zoom and pipes each through the pipeline
func (c *ZoomCmd) Run(app *appContext) error {
	if !app.cfg.ZoomConfigured() {
		return fmt.Errorf("Zoom is not configured: set ZOOM_ACCOUNT_ID, ZOOM_CLIENT_ID and ZOOM_CLIENT_SECRET")
	}

	ctx, cancel := signalContext()
	defer cancel()

	from := c.From
	to := c.To
	if to.IsZero() {
		to = time.Now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -7)
	}

	client := zoom.NewClient(app.cfg.Zoom, app.logger)
	meetings, err := client.ListRecordings(ctx, from, to)
	if err != nil {
		return fmt.Errorf("failed to list Zoom recordings: %w", err)
	}
	if len(meetings) == 0 {
		fmt.Println("No cloud recordings found in the given range.")
		return nil
	}

	downloadDir := app.cfg.Pipeline.WorkDir
	if downloadDir == "" {
		downloadDir = os.TempDir()
	}

	failed := 0
	for i := range meetings {
		meeting := &meetings[i]

		localPath, err := client.DownloadAudio(ctx, meeting, downloadDir)
		if err != nil {
			app.logger.Error("❌ Failed to download recording",
				zap.Int64("meeting_id", meeting.MeetingID),
				zap.String("topic", meeting.Topic),
				zap.Error(err))
			failed++
			continue
		}

		rep, genErr := app.service.GenerateReport(ctx, report.GenerateInput{
			AudioPath:    localPath,
			Title:        meeting.Topic,
			LanguageHint: c.Language,
		})
		if rep != nil {
			path := storage.ReportPathFor(app.cfg.Pipeline.OutputDir, localPath, rep.CreatedAt)
			if err := storage.SaveReport(rep, path); err != nil {
				app.logger.Error("❌ Failed to save report", zap.Error(err))
				failed++
				os.Remove(localPath)
				continue
			}
			app.archive(ctx, path)
			printReport(rep, path)
		}
		if genErr != nil {
			app.logger.Error("❌ Failed to process recording",
				zap.String("topic", meeting.Topic),
				zap.Error(genErr))
			failed++
		}

		os.Remove(localPath)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(meetings))
	}
	return nil
}

// archive uploads the report when archiving is enabled; failures are
// logged and never fail the run
func (app *appContext) archive(ctx context.Context, path string) {
	if app.archiver == nil || path == "" {
		return
	}
	if err := app.archiver.ArchiveReport(ctx, path, filepath.Base(path)); err != nil {
		app.logger.Warn("⚠️ Failed to archive report",
			zap.String("path", path),
			zap.Error(err))
	}
}

// printReport writes the console summary of a finished report
func printReport(rep *entities.MeetingReport, path string) {
	fmt.Printf("\n📋 %s\n", rep.MeetingInfo.Title)
	fmt.Printf("   Duration: %.1f minutes | Language: %s | Segments: %d\n",
		rep.MeetingInfo.DurationMinutes, rep.MeetingInfo.Language, rep.Stats.TotalSegments)

	if rep.Summary.ExecutiveSummary != "" {
		fmt.Printf("\n📝 Summary:\n   %s\n", rep.Summary.ExecutiveSummary)
	}

	if rep.Stats.TotalActionItems > 0 {
		fmt.Printf("\n✅ Action items: %d (%d high priority)\n",
			rep.Stats.TotalActionItems, rep.Stats.HighPriorityItems)
		top := rep.ActionItems
		if len(top) > 3 {
			top = top[:3]
		}
		for _, item := range top {
			due := "no due date"
			if item.DueDate != nil {
				due = "due " + item.DueDate.String()
			}
			fmt.Printf("   • [%s] %s (%s, %s)\n", item.Priority, item.Title, item.Assignee, due)
		}
	}

	fmt.Printf("\n💾 Report saved to %s\n", path)
}
