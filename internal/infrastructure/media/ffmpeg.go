// Package media prepares input files for transcription. Audio files pass
// through untouched; video containers get their audio track extracted with
// ffmpeg into a mono 16kHz WAV.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/pkg/executor"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
	".ogg":  true,
	".aac":  true,
	".opus": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
}

// Processor turns an arbitrary supported input file into a path that can be
// uploaded for transcription
type Processor struct {
	exec    executor.Executor
	workDir string
	logger  *zap.Logger
}

// NewProcessor creates a media processor. workDir is where extracted audio
// is written; empty means the system temp directory.
func NewProcessor(exec executor.Executor, workDir string, logger *zap.Logger) *Processor {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Processor{
		exec:    exec,
		workDir: workDir,
		logger:  logger,
	}
}

// IsSupported reports whether the file extension is a known audio or video
// format
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return audioExtensions[ext] || videoExtensions[ext]
}

// IsVideo reports whether the file extension is a known video container
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedExtensions returns the accepted extensions, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(audioExtensions)+len(videoExtensions))
	for ext := range audioExtensions {
		exts = append(exts, ext)
	}
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// PrepareAudio returns a local audio path for the given input. For audio
// inputs it returns the input path itself and a no-op cleanup. For video
// inputs it extracts the audio track and returns the extracted file plus a
// cleanup that removes it.
func (p *Processor) PrepareAudio(ctx context.Context, inputPath string) (string, func(), error) {
	noop := func() {}

	ext := strings.ToLower(filepath.Ext(inputPath))
	if audioExtensions[ext] {
		return inputPath, noop, nil
	}
	if !videoExtensions[ext] {
		return "", noop, apperrors.ErrUnsupportedFormat(inputPath, ext)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), ext)
	outputPath := filepath.Join(p.workDir, base+"_audio.wav")

	p.logger.Info("🎬 Extracting audio track from video",
		zap.String("input", inputPath),
		zap.String("output", outputPath))

	// Mono 16kHz PCM keeps uploads small without hurting transcription
	args := []string{
		"-i", inputPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	}

	if _, err := p.exec.Execute(ctx, "ffmpeg", args...); err != nil {
		return "", noop, apperrors.ErrAudioExtractionFailed(inputPath, err)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", noop, apperrors.ErrAudioExtractionFailed(inputPath, fmt.Errorf("ffmpeg produced no output: %w", err))
	}

	cleanup := func() {
		if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("⚠️ Failed to remove extracted audio",
				zap.String("path", outputPath),
				zap.Error(err))
		}
	}

	p.logger.Info("✅ Audio track extracted",
		zap.String("output", outputPath))

	return outputPath, cleanup, nil
}
