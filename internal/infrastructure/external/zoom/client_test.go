package zoom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightloop-ai/insightloop/pkg/config"
)

func newZoomServer(t *testing.T, tokenRequests *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenRequests != nil {
			tokenRequests.Add(1)
		}
		user, pass, ok := r.BasicAuth()
		require.True(t, ok, "token request must use basic auth")
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "account_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "acct-1", r.Form.Get("account_id"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "token-abc",
			"token_type":   "bearer",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("/v2/users/me/recordings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "2026-08-16", r.URL.Query().Get("from"))
		assert.Equal(t, "2026-08-23", r.URL.Query().Get("to"))

		if r.URL.Query().Get("next_page_token") == "" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"next_page_token": "page2",
				"meetings": []map[string]interface{}{
					{
						"id":         111,
						"uuid":       "uuid-1",
						"topic":      "Weekly Sync",
						"start_time": "2026-08-18T10:00:00Z",
						"duration":   30,
						"recording_files": []map[string]interface{}{
							{"id": "f1", "file_type": "MP4", "file_size": 1000, "download_url": "ignored"},
							{"id": "f2", "file_type": "M4A", "file_size": 500, "download_url": "ignored"},
						},
					},
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"next_page_token": "",
			"meetings": []map[string]interface{}{
				{
					"id":         222,
					"uuid":       "uuid-2",
					"topic":      "Planning",
					"start_time": "2026-08-20T14:00:00Z",
					"duration":   60,
					"recording_files": []map[string]interface{}{
						{"id": "f3", "file_type": "CHAT", "file_size": 10, "download_url": "ignored"},
					},
				},
			},
		})
	})

	mux.HandleFunc("/recording/download", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		w.Write([]byte("m4a-audio-bytes"))
	})

	return httptest.NewServer(mux)
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.ZoomConfig{
		AccountID:    "acct-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      server.URL + "/v2",
		OAuthURL:     server.URL + "/oauth/token",
	}, zap.NewNop())
}

func TestListRecordingsPaginatesAndReusesToken(t *testing.T) {
	var tokenRequests atomic.Int32
	server := newZoomServer(t, &tokenRequests)
	defer server.Close()

	client := newTestClient(server)

	from := time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	meetings, err := client.ListRecordings(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, meetings, 2)

	assert.Equal(t, int64(111), meetings[0].MeetingID)
	assert.Equal(t, "Weekly Sync", meetings[0].Topic)
	assert.Equal(t, int64(222), meetings[1].MeetingID)

	assert.Equal(t, int32(1), tokenRequests.Load(), "token should be fetched once and reused")
}

func TestBestAudioFilePrefersM4A(t *testing.T) {
	meeting := MeetingRecording{
		RecordingFiles: []RecordingFile{
			{ID: "f1", FileType: "MP4"},
			{ID: "f2", FileType: "M4A"},
		},
	}
	best := meeting.BestAudioFile()
	require.NotNil(t, best)
	assert.Equal(t, "f2", best.ID)

	videoOnly := MeetingRecording{
		RecordingFiles: []RecordingFile{
			{ID: "f1", FileType: "MP4"},
			{ID: "f3", FileType: "TRANSCRIPT"},
		},
	}
	best = videoOnly.BestAudioFile()
	require.NotNil(t, best)
	assert.Equal(t, "f1", best.ID)

	chatOnly := MeetingRecording{
		RecordingFiles: []RecordingFile{{ID: "f3", FileType: "CHAT"}},
	}
	assert.Nil(t, chatOnly.BestAudioFile())
}

func TestDownloadAudio(t *testing.T) {
	server := newZoomServer(t, nil)
	defer server.Close()

	client := newTestClient(server)
	destDir := t.TempDir()

	meeting := &MeetingRecording{
		MeetingID: 111,
		Topic:     "Weekly Sync",
		StartTime: time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC),
		RecordingFiles: []RecordingFile{
			{ID: "f2", FileType: "M4A", FileSize: 500, DownloadURL: server.URL + "/recording/download"},
		},
	}

	path, err := client.DownloadAudio(context.Background(), meeting, destDir)
	require.NoError(t, err)

	assert.Contains(t, path, "zoom_111_20260818_100000.m4a")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "m4a-audio-bytes", string(data))
}

func TestDownloadAudioNoUsableFile(t *testing.T) {
	server := newZoomServer(t, nil)
	defer server.Close()

	client := newTestClient(server)

	meeting := &MeetingRecording{
		MeetingID:      222,
		RecordingFiles: []RecordingFile{{ID: "f3", FileType: "CHAT"}},
	}

	_, err := client.DownloadAudio(context.Background(), meeting, t.TempDir())
	assert.Error(t, err)
}

func TestShortLivedTokenIsStillReused(t *testing.T) {
	var tokenRequests atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenRequests.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "short-token",
			"token_type":   "bearer",
			"expires_in":   30,
		})
	})
	mux.HandleFunc("/v2/users/me/recordings", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer short-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"meetings": []map[string]interface{}{}})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(config.ZoomConfig{
		AccountID:    "acct-1",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BaseURL:      server.URL + "/v2",
		OAuthURL:     server.URL + "/oauth/token",
	}, zap.NewNop())

	from := time.Now().AddDate(0, 0, -7)
	to := time.Now()

	_, err := client.ListRecordings(context.Background(), from, to)
	require.NoError(t, err)
	_, err = client.ListRecordings(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, int32(1), tokenRequests.Load(),
		"a 30s token must not be treated as already expired")
}

func TestTokenErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code": 4700, "message": "Invalid client"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.ZoomConfig{
		AccountID:    "acct-1",
		ClientID:     "bad",
		ClientSecret: "bad",
		BaseURL:      server.URL + "/v2",
		OAuthURL:     server.URL + "/oauth/token",
	}, zap.NewNop())

	_, err := client.ListRecordings(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid client")
}
