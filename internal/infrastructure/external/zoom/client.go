// Package zoom fetches cloud recordings through the Zoom REST API using
// Server-to-Server OAuth. Tokens use the account_credentials grant, which
// the standard client-credentials flow cannot express, so the token
// exchange is a custom oauth2.TokenSource wrapped in a ReuseTokenSource
// for caching.
package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/insightloop-ai/insightloop/pkg/config"
)

// RecordingFile is a single downloadable artifact of a recorded meeting
type RecordingFile struct {
	ID          string `json:"id"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
	DownloadURL string `json:"download_url"`
}

// MeetingRecording is one recorded meeting with its artifacts
type MeetingRecording struct {
	MeetingID       int64           `json:"id"`
	UUID            string          `json:"uuid"`
	Topic           string          `json:"topic"`
	StartTime       time.Time       `json:"start_time"`
	DurationMinutes int             `json:"duration"`
	RecordingFiles  []RecordingFile `json:"recording_files"`
}

// BestAudioFile picks the artifact to transcribe: the audio-only M4A when
// present, otherwise the MP4. Returns nil when the meeting has neither.
func (m *MeetingRecording) BestAudioFile() *RecordingFile {
	var mp4 *RecordingFile
	for i := range m.RecordingFiles {
		f := &m.RecordingFiles[i]
		switch strings.ToUpper(f.FileType) {
		case "M4A":
			return f
		case "MP4":
			if mp4 == nil {
				mp4 = f
			}
		}
	}
	return mp4
}

type listRecordingsResponse struct {
	Meetings      []MeetingRecording `json:"meetings"`
	NextPageToken string             `json:"next_page_token"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accountTokenSource implements the Server-to-Server OAuth token exchange:
// a Basic-authenticated POST with grant_type=account_credentials.
type accountTokenSource struct {
	httpClient   *http.Client
	oauthURL     string
	accountID    string
	clientID     string
	clientSecret string
}

func (ts *accountTokenSource) Token() (*oauth2.Token, error) {
	form := url.Values{
		"grant_type": {"account_credentials"},
		"account_id": {ts.accountID},
	}

	req, err := http.NewRequest(http.MethodPost, ts.oauthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.SetBasicAuth(ts.clientID, ts.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token endpoint returned no access token")
	}

	// Refresh early to avoid using a token at its expiry edge. The margin
	// is clamped so short-lived tokens never come back already expired.
	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	margin := time.Minute
	if lifetime <= margin {
		margin = lifetime / 2
	}
	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      time.Now().Add(lifetime - margin),
	}, nil
}

// Client talks to the Zoom REST API
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a Zoom client from config
func NewClient(cfg config.ZoomConfig, logger *zap.Logger) *Client {
	ts := &accountTokenSource{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		oauthURL:     cfg.OAuthURL,
		accountID:    cfg.AccountID,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
	httpClient := oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(nil, ts))

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// ListRecordings returns the account's cloud recordings in the date range,
// following pagination until exhausted. Dates are inclusive calendar days.
func (c *Client) ListRecordings(ctx context.Context, from, to time.Time) ([]MeetingRecording, error) {
	c.logger.Info("🔍 Listing cloud recordings",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")))

	var meetings []MeetingRecording
	pageToken := ""
	for {
		q := url.Values{
			"from":      {from.Format("2006-01-02")},
			"to":        {to.Format("2006-01-02")},
			"page_size": {"100"},
		}
		if pageToken != "" {
			q.Set("next_page_token", pageToken)
		}

		endpoint := fmt.Sprintf("%s/users/me/recordings?%s", c.baseURL, q.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build recordings request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("recordings request failed: %w", err)
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("recordings endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		var page listRecordingsResponse
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode recordings response: %w", err)
		}
		resp.Body.Close()

		meetings = append(meetings, page.Meetings...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.Info("✅ Recordings listed",
		zap.Int("meetings", len(meetings)))

	return meetings, nil
}

// DownloadAudio downloads the best audio artifact of the meeting into
// destDir and returns the local file path
func (c *Client) DownloadAudio(ctx context.Context, meeting *MeetingRecording, destDir string) (string, error) {
	file := meeting.BestAudioFile()
	if file == nil {
		return "", fmt.Errorf("meeting %d has no downloadable audio or video file", meeting.MeetingID)
	}

	ext := strings.ToLower(file.FileType)
	name := fmt.Sprintf("zoom_%d_%s.%s", meeting.MeetingID, meeting.StartTime.Format("20060102_150405"), ext)
	destPath := filepath.Join(destDir, name)

	c.logger.Info("📥 Downloading recording",
		zap.Int64("meeting_id", meeting.MeetingID),
		zap.String("topic", meeting.Topic),
		zap.String("file_type", file.FileType),
		zap.Int64("file_size", file.FileSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.DownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("failed to write recording: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	c.logger.Info("✅ Recording downloaded",
		zap.String("path", destPath))

	return destPath, nil
}
