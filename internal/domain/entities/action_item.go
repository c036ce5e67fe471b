package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActionItemPriority constants. Extraction output is normalized to these
// three values; anything unrecognized becomes Medium.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ActionItemStatus constants
const (
	ActionItemStatusPending   = "pending"
	ActionItemStatusCompleted = "completed"
)

// DefaultAssignee is used when the extraction capability cannot attribute
// an action item to a participant.
const DefaultAssignee = "Unassigned"

const dateLayout = "2006-01-02"

// Date is an ISO 8601 calendar date with no time component and no
// timezone. Action item due dates carry no more precision than this.
type Date struct {
	Year  int `json:"-"`
	Month int `json:"-"`
	Day   int `json:"-"`
}

// NewDate builds a Date from calendar components.
func NewDate(year, month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ActionItem represents a discrete task identified in meeting discussion
type ActionItem struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee"`
	DueDate     *Date     `json:"due_date"`
	Priority    string    `json:"priority"`
	Category    string    `json:"category,omitempty"`
	Context     string    `json:"context,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewActionItem creates a new ActionItem with defaults applied
func NewActionItem(title string) *ActionItem {
	return &ActionItem{
		ID:        uuid.New(),
		Title:     title,
		Assignee:  DefaultAssignee,
		Priority:  PriorityMedium,
		Status:    ActionItemStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

// NormalizePriority maps free-form priority strings from the extraction
// capability onto the High/Medium/Low enumeration.
func NormalizePriority(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "urgent", "critical":
		return PriorityHigh
	case "low", "minor":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Normalize applies the entity invariants in place: non-empty assignee,
// enumerated priority, pending status by default.
func (a *ActionItem) Normalize() {
	if strings.TrimSpace(a.Assignee) == "" {
		a.Assignee = DefaultAssignee
	}
	a.Priority = NormalizePriority(a.Priority)
	if a.Status == "" {
		a.Status = ActionItemStatusPending
	}
}
