package entities

import "strings"

// Segment represents a contiguous speech segment
type Segment struct {
	Speaker    string  `json:"speaker,omitempty"`
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcript holds the full transcription output: the complete text plus
// the ordered speaker/timing segments. It is produced entirely by the
// transcription capability and treated as opaque input afterwards.
type Transcript struct {
	FullText string    `json:"full_text"`
	Segments []Segment `json:"segments"`
}

// NewTranscript creates an empty transcript with initialized containers
func NewTranscript() *Transcript {
	return &Transcript{Segments: make([]Segment, 0)}
}

// IsEmpty reports whether the transcription produced no usable text.
func (t *Transcript) IsEmpty() bool {
	return t == nil || strings.TrimSpace(t.FullText) == ""
}

// Normalize guarantees the segments container is never nil.
func (t *Transcript) Normalize() {
	if t.Segments == nil {
		t.Segments = make([]Segment, 0)
	}
}
