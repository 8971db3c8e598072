package videogen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DJIMIGA/latigue/internal/models"
)

func newTestLuma(t *testing.T, handler http.HandlerFunc) (*Luma, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	l := NewLuma("test-key")
	l.baseURL = srv.URL
	return l, srv
}

func TestLumaGenerateClip(t *testing.T) {
	var gotPayload map[string]interface{}
	l, _ := newTestLuma(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generations" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{"id": "gen-123"})
	})

	result := l.GenerateClip(context.Background(), Request{
		Prompt:      "Close-up of hands typing",
		Duration:    5,
		AspectRatio: "9:16",
	})

	if result.Status != models.SegmentStatusPending {
		t.Errorf("Status = %s, want pending", result.Status)
	}
	if result.JobID != "gen-123" {
		t.Errorf("JobID = %q, want gen-123", result.JobID)
	}
	if gotPayload["aspect_ratio"] != "vertical" {
		t.Errorf("aspect_ratio = %v, want vertical", gotPayload["aspect_ratio"])
	}
}

func TestLumaGenerateClipAPIError(t *testing.T) {
	l, _ := newTestLuma(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	result := l.GenerateClip(context.Background(), Request{Prompt: "x", Duration: 5})
	if result.Status != models.SegmentStatusFailed {
		t.Errorf("Status = %s, want failed", result.Status)
	}
	if result.ErrorMessage == "" {
		t.Error("ErrorMessage should describe the API error")
	}
}

func TestLumaGetStatus(t *testing.T) {
	tests := []struct {
		name         string
		state        string
		wantStatus   models.SegmentStatus
		wantProgress int
	}{
		{"pending", "pending", models.SegmentStatusPending, 10},
		{"processing", "processing", models.SegmentStatusProcessing, 50},
		{"completed", "completed", models.SegmentStatusCompleted, 100},
		{"failed", "failed", models.SegmentStatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLuma(t, func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]interface{}{
					"state":          tt.state,
					"assets":         map[string]string{"video": "https://cdn.example.com/clip.mp4"},
					"failure_reason": "model refused",
				})
			})

			result := l.GetStatus(context.Background(), "gen-123")
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Progress != tt.wantProgress {
				t.Errorf("Progress = %d, want %d", result.Progress, tt.wantProgress)
			}
			if tt.wantStatus == models.SegmentStatusCompleted && result.VideoURL == "" {
				t.Error("completed result should carry the video URL")
			}
			if tt.wantStatus == models.SegmentStatusFailed && result.ErrorMessage != "model refused" {
				t.Errorf("ErrorMessage = %q, want the failure reason", result.ErrorMessage)
			}
		})
	}
}
