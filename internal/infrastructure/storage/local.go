// Package storage persists meeting reports: local JSON files as the
// primary artifact, with optional archival to object storage.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/internal/domain/entities"
)

const reportFilePrefix = "meeting_report_"

// DefaultReportPath returns the conventional report path inside dir for a
// report generated at t
func DefaultReportPath(dir string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s%s.json", reportFilePrefix, t.Format("20060102_150405")))
}

// ReportPathFor returns a report path derived from the input file name.
// Batch runs use this so files processed in the same second never collide.
func ReportPathFor(dir string, inputFile string, t time.Time) string {
	base := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return filepath.Join(dir, fmt.Sprintf("%s%s_%s.json", reportFilePrefix, base, t.Format("20060102_150405")))
}

// SaveReport writes the report as indented JSON. The write goes through a
// temp file and rename so a crash never leaves a truncated report at the
// target path.
func SaveReport(report *entities.MeetingReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return apperrors.ErrStorage("marshal report", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.ErrStorage("create output directory", err)
	}

	tmp, err := os.CreateTemp(dir, reportFilePrefix+"*.tmp")
	if err != nil {
		return apperrors.ErrStorage("create temp file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.ErrStorage("write report", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.ErrStorage("close report", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.ErrStorage("rename report", err)
	}
	return nil
}

// LoadReport reads a report back from disk
func LoadReport(path string) (*entities.MeetingReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrStorage("read report", err)
	}

	var report entities.MeetingReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperrors.ErrStorage("unmarshal report", err)
	}
	report.Normalize()
	return &report, nil
}
