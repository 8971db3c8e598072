package videogen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DJIMIGA/latigue/internal/models"
)

func TestStabilityGetStatusByCode(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		wantStatus models.SegmentStatus
		wantProg   int
	}{
		{"ready", http.StatusOK, models.SegmentStatusCompleted, 100},
		{"still generating", http.StatusAccepted, models.SegmentStatusProcessing, 50},
		{"not materialized", http.StatusNotFound, models.SegmentStatusProcessing, 30},
		{"server error", http.StatusInternalServerError, models.SegmentStatusFailed, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
			}))
			defer srv.Close()

			s := NewStability("test-key")
			s.baseURL = srv.URL

			result := s.GetStatus(context.Background(), "job-1")
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.Progress != tt.wantProg {
				t.Errorf("Progress = %d, want %d", result.Progress, tt.wantProg)
			}
			if tt.wantStatus == models.SegmentStatusCompleted && result.VideoURL != srv.URL+"/results/job-1" {
				t.Errorf("VideoURL = %q, want the results endpoint", result.VideoURL)
			}
		})
	}
}
