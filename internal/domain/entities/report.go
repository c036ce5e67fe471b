package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrMissingTranscript marks a report that failed the well-formedness
// invariant: a MeetingReport must always contain a non-empty transcript.
var ErrMissingTranscript = errors.New("meeting report has no transcript")

// MeetingMetadata describes the meeting the report covers. Title and
// language hint come from the caller; duration and detected language come
// from the transcription result.
type MeetingMetadata struct {
	Title           string    `json:"title"`
	Date            time.Time `json:"date"`
	DurationMinutes float64   `json:"duration_minutes"`
	Language        string    `json:"language"`
	Participants    []string  `json:"participants"`
}

// ReportStats summarizes the report contents
type ReportStats struct {
	TotalSegments     int `json:"total_segments"`
	TotalActionItems  int `json:"total_action_items"`
	HighPriorityItems int `json:"high_priority_items"`
}

// MeetingReport is the aggregate produced by one pipeline run. It is
// assembled once, serialized and then discarded; nothing mutates it after
// assembly.
//
// Partial is set when transcription succeeded but analysis failed: the
// report still carries the transcript, AnalysisError records why the
// summary/action items are missing, and the artifact is never silently
// incomplete.
type MeetingReport struct {
	ID            uuid.UUID       `json:"id"`
	MeetingInfo   MeetingMetadata `json:"meeting_info"`
	Transcription Transcript      `json:"transcription"`
	Summary       Summary         `json:"summary"`
	ActionItems   []ActionItem    `json:"action_items"`
	Stats         ReportStats     `json:"stats"`
	Partial       bool            `json:"partial,omitempty"`
	AnalysisError string          `json:"analysis_error,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewMeetingReport creates a report skeleton with initialized containers
func NewMeetingReport(title string, date time.Time) *MeetingReport {
	return &MeetingReport{
		ID: uuid.New(),
		MeetingInfo: MeetingMetadata{
			Title:        title,
			Date:         date,
			Participants: make([]string, 0),
		},
		Transcription: *NewTranscript(),
		Summary:       *NewSummary(),
		ActionItems:   make([]ActionItem, 0),
		CreatedAt:     date,
	}
}

// Normalize enforces the container invariants across the whole aggregate:
// summary lists and action items are empty collections, never nil.
func (r *MeetingReport) Normalize() {
	r.Transcription.Normalize()
	r.Summary.Normalize()
	if r.ActionItems == nil {
		r.ActionItems = make([]ActionItem, 0)
	}
	for i := range r.ActionItems {
		r.ActionItems[i].Normalize()
	}
	if r.MeetingInfo.Participants == nil {
		r.MeetingInfo.Participants = make([]string, 0)
	}
}

// Validate checks the well-formedness invariant
func (r *MeetingReport) Validate() error {
	if r.Transcription.IsEmpty() {
		return ErrMissingTranscript
	}
	return nil
}

// RecomputeStats refreshes the stats block from the report contents
func (r *MeetingReport) RecomputeStats() {
	high := 0
	for _, item := range r.ActionItems {
		if item.Priority == PriorityHigh {
			high++
		}
	}
	r.Stats = ReportStats{
		TotalSegments:     len(r.Transcription.Segments),
		TotalActionItems:  len(r.ActionItems),
		HighPriorityItems: high,
	}
}
