package handlers

import (
	"context"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/DJIMIGA/latigue/internal/models"
)

func TestCancelSegment(t *testing.T) {
	app, st := newTestApp(t)
	ctx := context.Background()

	resp := postJSON(t, app, "/api/v1/jobs", map[string]interface{}{"theme": "cancel me"})
	var job models.Job
	decodeData(t, resp, &job)

	segs := []models.Segment{
		{ID: "s0", JobID: job.ID, Order: 0, Selected: true, Status: models.SegmentStatusProcessing, ProviderJobID: "lm-0"},
		{ID: "s1", JobID: job.ID, Order: 1, Selected: true, Status: models.SegmentStatusCompleted, VideoURL: "https://cdn.example.com/s1.mp4"},
	}
	if err := st.CreateSegments(ctx, segs); err != nil {
		t.Fatal(err)
	}

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/segments/0/cancel", job.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("cancel status = %d, want 200", resp.StatusCode)
	}
	var result struct {
		Segment          models.Segment `json:"segment"`
		BackendCancelled bool           `json:"backend_cancelled"`
	}
	decodeData(t, resp, &result)
	if result.Segment.Status != models.SegmentStatusCancelled {
		t.Errorf("status = %s, want cancelled", result.Segment.Status)
	}

	persisted, _ := st.ListSegments(ctx, job.ID)
	if persisted[0].Status != models.SegmentStatusCancelled {
		t.Errorf("persisted status = %s, want cancelled", persisted[0].Status)
	}

	// Terminal segments cannot be cancelled.
	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/segments/1/cancel", job.ID), nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("cancel of completed segment: status = %d, want 409", resp.StatusCode)
	}
	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/segments/0/cancel", job.ID), nil)
	if resp.StatusCode != fiber.StatusConflict {
		t.Errorf("second cancel: status = %d, want 409", resp.StatusCode)
	}

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/segments/9/cancel", job.ID), nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("missing segment: status = %d, want 404", resp.StatusCode)
	}
}
