package entities

// Summary is the structured output of the summarization capability.
// All list fields are ordered as returned by the capability; they may be
// empty for short or trivial meetings but are never nil.
type Summary struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyPoints        []string `json:"key_points"`
	Decisions        []string `json:"decisions"`
	Participants     []string `json:"participants"`
	FollowUpTopics   []string `json:"follow_up_topics"`
}

// NewSummary creates a Summary with initialized containers
func NewSummary() *Summary {
	return &Summary{
		KeyPoints:      make([]string, 0),
		Decisions:      make([]string, 0),
		Participants:   make([]string, 0),
		FollowUpTopics: make([]string, 0),
	}
}

// Normalize replaces nil list fields with empty slices. Downstream
// serialization must always emit containers, not absent fields.
func (s *Summary) Normalize() {
	if s.KeyPoints == nil {
		s.KeyPoints = make([]string, 0)
	}
	if s.Decisions == nil {
		s.Decisions = make([]string, 0)
	}
	if s.Participants == nil {
		s.Participants = make([]string, 0)
	}
	if s.FollowUpTopics == nil {
		s.FollowUpTopics = make([]string, 0)
	}
}
