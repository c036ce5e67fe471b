package openai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/insightloop-ai/insightloop/internal/domain/entities"
)

const maxFallbackItems = 10

// summaryEnvelope mirrors the JSON shape the summary prompt requests
type summaryEnvelope struct {
	ExecutiveSummary string   `json:"executive_summary"`
	KeyPoints        []string `json:"key_points"`
	Decisions        []string `json:"decisions"`
	Participants     []string `json:"participants"`
	FollowUpTopics   []string `json:"follow_up_topics"`
}

// actionItemEnvelope mirrors the JSON shape the extraction prompt requests.
// due_date stays a string here because models emit all kinds of values;
// parsing failures degrade to no due date rather than dropping the item.
type actionItemEnvelope struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Assignee    string `json:"assignee"`
	DueDate     string `json:"due_date"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Context     string `json:"context"`
}

// ParseSummary parses the model's summary response. When the response is
// not valid JSON the raw text becomes the executive summary, truncated,
// with all list fields empty. A summary is always produced.
func ParseSummary(content string) *entities.Summary {
	summary := entities.NewSummary()

	var envelope summaryEnvelope
	if err := json.Unmarshal([]byte(extractJSON(content)), &envelope); err != nil {
		text := strings.TrimSpace(content)
		if len(text) > 500 {
			text = text[:500] + "..."
		}
		summary.ExecutiveSummary = text
		return summary
	}

	summary.ExecutiveSummary = strings.TrimSpace(envelope.ExecutiveSummary)
	summary.KeyPoints = envelope.KeyPoints
	summary.Decisions = envelope.Decisions
	summary.Participants = envelope.Participants
	summary.FollowUpTopics = envelope.FollowUpTopics
	summary.Normalize()
	return summary
}

// ParseActionItems parses the model's action item response into domain
// entities. Returns an error when the response is not a JSON array so the
// caller can fall back to pattern extraction.
func ParseActionItems(content string) ([]entities.ActionItem, error) {
	var envelopes []actionItemEnvelope
	if err := json.Unmarshal([]byte(extractJSON(content)), &envelopes); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}

	items := make([]entities.ActionItem, 0, len(envelopes))
	for _, e := range envelopes {
		title := strings.TrimSpace(e.Title)
		if title == "" {
			continue
		}

		item := entities.NewActionItem(title)
		item.Description = strings.TrimSpace(e.Description)
		if assignee := strings.TrimSpace(e.Assignee); assignee != "" {
			item.Assignee = assignee
		}
		item.Priority = entities.NormalizePriority(e.Priority)
		item.Category = strings.TrimSpace(e.Category)
		item.Context = strings.TrimSpace(e.Context)
		if due, err := entities.ParseDate(strings.TrimSpace(e.DueDate)); err == nil {
			item.DueDate = &due
		}
		items = append(items, *item)
	}
	return items, nil
}

var fallbackPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:need to|should|must|will|going to|action item|todo|task)\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)([A-Za-z\s]+)\s+(?:will|should|needs to)\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)follow up (?:on|with)\s+(.+?)(?:\.|$)`),
}

// FallbackActionItems extracts action items from the raw transcript using
// commitment phrasing patterns. Used when the model response cannot be
// parsed. Items get a one week default due date and at most
// maxFallbackItems are returned.
func FallbackActionItems(transcript string, now time.Time) []entities.ActionItem {
	due := now.AddDate(0, 0, 7)
	dueDate := entities.NewDate(due.Year(), int(due.Month()), due.Day())

	items := make([]entities.ActionItem, 0, maxFallbackItems)
	for _, pattern := range fallbackPatterns {
		for _, match := range pattern.FindAllStringSubmatch(transcript, -1) {
			if len(items) >= maxFallbackItems {
				return items
			}

			title := strings.TrimSpace(match[1])
			if title == "" {
				title = "Follow-up Item"
			}
			if len(title) > 100 {
				title = title[:100]
			}

			item := entities.NewActionItem(title)
			item.Description = strings.TrimSpace(match[0])
			item.DueDate = &dueDate
			item.Category = "Follow-up"
			item.Context = "Extracted from transcript"
			items = append(items, *item)
		}
	}
	return items
}

// extractJSON strips markdown code fences and any surrounding prose,
// returning the innermost JSON object or array text. Models often wrap
// JSON in ```json fences or add a leading sentence.
func extractJSON(content string) string {
	s := strings.TrimSpace(content)

	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	// Trim prose around the outermost bracket pair
	objStart := strings.IndexAny(s, "{[")
	if objStart == -1 {
		return s
	}
	var closer byte
	if s[objStart] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}
	objEnd := strings.LastIndexByte(s, closer)
	if objEnd <= objStart {
		return s
	}
	return s[objStart : objEnd+1]
}
