// Package openai implements the analysis capability against any
// OpenAI-compatible chat completion API. Responses are free-form model
// output; the parser in this package turns them into domain entities and
// degrades gracefully when the model ignores the JSON instructions.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/insightloop-ai/insightloop/internal/domain/entities"
	"github.com/insightloop-ai/insightloop/internal/domain/providers"
	"github.com/insightloop-ai/insightloop/pkg/config"
)

const (
	summaryMaxTokens      = 1500
	summaryTemperature    = 0.7
	extractionMaxTokens   = 2000
	extractionTemperature = 0.3
)

// Client wraps an OpenAI-compatible chat API behind the AnalysisProvider
// interface
type Client struct {
	sdk    *gopenai.Client
	model  string
	logger *zap.Logger

	// now is injected so tests control the current date in prompts
	now func() time.Time
}

var _ providers.AnalysisProvider = (*Client)(nil)

// NewClient creates an analysis client from config. BaseURL may point at
// any OpenAI-compatible endpoint; it is normalized to end with /v1.
func NewClient(cfg config.OpenAIConfig, logger *zap.Logger) *Client {
	clientConfig := gopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") && !strings.HasSuffix(baseURL, "/v1/") {
			baseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
		}
		clientConfig.BaseURL = baseURL
	}

	return &Client{
		sdk:    gopenai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger,
		now:    time.Now,
	}
}

// Summarize asks the model for a structured meeting summary
func (c *Client) Summarize(ctx context.Context, transcript string, meetingTitle string) (*entities.Summary, error) {
	c.logger.Info("📝 Generating meeting summary",
		zap.String("title", meetingTitle),
		zap.Int("transcript_chars", len(transcript)))

	prompt := fmt.Sprintf(`Please analyze this meeting transcript and provide a comprehensive summary:

MEETING: %s
TRANSCRIPT: %s

Please provide:
1. A brief executive summary (2-3 sentences)
2. Key discussion points (bullet points)
3. Important decisions made
4. Main participants and their contributions
5. Topics that need follow-up

Format your response as JSON with these keys:
- executive_summary
- key_points (array)
- decisions (array)
- participants (array)
- follow_up_topics (array)`, meetingTitle, transcript)

	content, err := c.complete(ctx, prompt, summaryMaxTokens, summaryTemperature)
	if err != nil {
		return nil, fmt.Errorf("summary request failed: %w", err)
	}

	summary := ParseSummary(content)

	c.logger.Info("✅ Summary generated",
		zap.Int("key_points", len(summary.KeyPoints)),
		zap.Int("decisions", len(summary.Decisions)))

	return summary, nil
}

// ExtractActionItems asks the model for action items mentioned in the
// transcript. When the model response is not valid JSON the regex fallback
// extractor runs over the raw transcript instead.
func (c *Client) ExtractActionItems(ctx context.Context, transcript string, participants []string) ([]entities.ActionItem, error) {
	c.logger.Info("📋 Extracting action items",
		zap.Int("participants", len(participants)))

	participantsList := participants
	if len(participantsList) == 0 {
		participantsList = []string{"Team Member"}
	}

	prompt := fmt.Sprintf(`Analyze this meeting transcript and extract all action items, tasks, and follow-ups mentioned.

TRANSCRIPT: %s
KNOWN PARTICIPANTS: %s

For each action item, identify:
1. What needs to be done (clear, actionable description)
2. Who should do it (assign to a participant if mentioned, otherwise "Unassigned")
3. When it should be done (extract or infer deadline, default to 1 week if not specified)
4. Priority level (High/Medium/Low based on urgency indicators)
5. Category (Research, Development, Communication, Decision, etc.)

Return as JSON array with objects containing:
- title: Brief action item title
- description: Detailed description
- assignee: Person responsible
- due_date: Date in YYYY-MM-DD format
- priority: High/Medium/Low
- category: Action type
- context: Relevant meeting context

Current date: %s`, transcript, strings.Join(participantsList, ", "), c.now().Format("2006-01-02"))

	content, err := c.complete(ctx, prompt, extractionMaxTokens, extractionTemperature)
	if err != nil {
		return nil, fmt.Errorf("action item request failed: %w", err)
	}

	items, parseErr := ParseActionItems(content)
	if parseErr != nil {
		c.logger.Warn("⚠️ Model returned malformed action items, using pattern fallback",
			zap.Error(parseErr))
		items = FallbackActionItems(transcript, c.now())
	}

	c.logger.Info("✅ Action items extracted",
		zap.Int("count", len(items)))

	return items, nil
}

func (c *Client) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.sdk.CreateChatCompletion(ctx, gopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []gopenai.ChatCompletionMessage{
			{
				Role:    gopenai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
