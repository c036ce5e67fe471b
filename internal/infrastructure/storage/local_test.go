package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/insightloop-ai/insightloop/errors"
	"github.com/insightloop-ai/insightloop/internal/domain/entities"
)

func sampleReport(t *testing.T) *entities.MeetingReport {
	t.Helper()

	date := time.Date(2026, 8, 23, 9, 30, 0, 0, time.UTC)
	report := entities.NewMeetingReport("Sprint Review", date)
	report.ID = uuid.MustParse("8f14e45f-ceea-467f-a0e6-7f1a2b3c4d5e")
	report.MeetingInfo.DurationMinutes = 42.5
	report.MeetingInfo.Language = "en"
	report.MeetingInfo.Participants = []string{"Alice", "Bob"}
	report.Transcription = entities.Transcript{
		FullText: "Alice: demo went well. Bob: ship it.",
		Segments: []entities.Segment{
			{Speaker: "Speaker A", StartTime: 0, EndTime: 12.5, Text: "demo went well.", Confidence: 0.97},
			{Speaker: "Speaker B", StartTime: 12.5, EndTime: 20, Text: "ship it.", Confidence: 0.94},
		},
	}
	report.Summary = entities.Summary{
		ExecutiveSummary: "Demo approved for release.",
		KeyPoints:        []string{"Demo went well"},
		Decisions:        []string{"Ship it"},
		Participants:     []string{"Alice", "Bob"},
		FollowUpTopics:   []string{},
	}

	due := entities.NewDate(2026, 8, 30)
	item := entities.ActionItem{
		ID:        uuid.MustParse("1b9d6bcd-bbfd-4b2d-9b5d-ab8dfbbd4bed"),
		Title:     "Prepare release notes",
		Assignee:  "Alice",
		DueDate:   &due,
		Priority:  entities.PriorityHigh,
		Status:    entities.ActionItemStatusPending,
		CreatedAt: date,
	}
	report.ActionItems = []entities.ActionItem{item}
	report.RecomputeStats()
	return report
}

func TestSaveAndLoadReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	original := sampleReport(t)
	if err := SaveReport(original, path); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("LoadReport failed: %v", err)
	}

	if !reflect.DeepEqual(original, loaded) {
		t.Errorf("round trip mismatch:\noriginal: %+v\nloaded:   %+v", original, loaded)
	}
}

func TestSaveReportCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "report.json")

	if err := SaveReport(sampleReport(t), path); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected report at %s: %v", path, err)
	}
}

func TestSaveReportLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	if err := SaveReport(sampleReport(t), path); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "report.json" {
		t.Errorf("expected only report.json in dir, got %v", entries)
	}
}

func TestLoadReportErrors(t *testing.T) {
	_, err := LoadReport(filepath.Join(t.TempDir(), "missing.json"))
	if !apperrors.IsCode(err, apperrors.ErrorCode_STORAGE) {
		t.Errorf("expected storage error code for missing file, got %v", err)
	}

	badPath := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(badPath, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadReport(badPath)
	if !apperrors.IsCode(err, apperrors.ErrorCode_STORAGE) {
		t.Errorf("expected storage error code for malformed file, got %v", err)
	}
}

func TestDefaultReportPath(t *testing.T) {
	ts := time.Date(2026, 8, 23, 14, 5, 9, 0, time.UTC)
	got := DefaultReportPath("/out", ts)
	want := filepath.Join("/out", "meeting_report_20260823_140509.json")
	if got != want {
		t.Errorf("DefaultReportPath = %q, want %q", got, want)
	}
}
