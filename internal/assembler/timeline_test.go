package assembler

import (
	"strings"
	"testing"
	"time"

	"github.com/DJIMIGA/latigue/internal/models"
)

func TestBuildTimelineOrdersByIndex(t *testing.T) {
	// Input deliberately shuffled: completion order must not leak into the
	// presentation order.
	segments := []models.Segment{
		{Order: 2, Duration: 5, Text: "third", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 0, Duration: 5, Text: "first", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 1, Duration: 4, Text: "second", Selected: true, Status: models.SegmentStatusCompleted},
	}

	tl, err := BuildTimeline(segments)
	if err != nil {
		t.Fatalf("BuildTimeline: %v", err)
	}

	wantTexts := []string{"first", "second", "third"}
	for i, seg := range tl.Segments {
		if seg.Text != wantTexts[i] {
			t.Errorf("position %d = %q, want %q", i, seg.Text, wantTexts[i])
		}
	}
	if tl.Total != 14*time.Second {
		t.Errorf("Total = %s, want 14s", tl.Total)
	}
}

func TestBuildTimelineCumulativeWindows(t *testing.T) {
	segments := []models.Segment{
		{Order: 0, Duration: 5, Text: "a", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 1, Duration: 3, Text: "b", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 2, Duration: 7, Text: "c", Selected: true, Status: models.SegmentStatusCompleted},
	}

	tl, err := BuildTimeline(segments)
	if err != nil {
		t.Fatal(err)
	}

	wantWindows := []struct{ start, end time.Duration }{
		{0, 5 * time.Second},
		{5 * time.Second, 8 * time.Second},
		{8 * time.Second, 15 * time.Second},
	}
	for i, w := range tl.Captions {
		if w.Start != wantWindows[i].start || w.End != wantWindows[i].end {
			t.Errorf("window %d = %s-%s, want %s-%s", i, w.Start, w.End, wantWindows[i].start, wantWindows[i].end)
		}
	}
}

func TestBuildTimelineSkipsUnusable(t *testing.T) {
	segments := []models.Segment{
		{Order: 0, Duration: 5, Text: "keep", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 1, Duration: 5, Text: "deselected", Selected: false, Status: models.SegmentStatusCompleted},
		{Order: 2, Duration: 5, Text: "failed", Selected: true, Status: models.SegmentStatusFailed},
	}

	tl, err := BuildTimeline(segments)
	if err != nil {
		t.Fatal(err)
	}
	if len(tl.Segments) != 1 || tl.Segments[0].Text != "keep" {
		t.Errorf("timeline should only include selected completed segments, got %d", len(tl.Segments))
	}
}

func TestBuildTimelineEmpty(t *testing.T) {
	if _, err := BuildTimeline(nil); err == nil {
		t.Error("expected error with no completed segments")
	}
	failed := []models.Segment{{Order: 0, Selected: true, Status: models.SegmentStatusFailed}}
	if _, err := BuildTimeline(failed); err == nil {
		t.Error("expected error when no segment completed")
	}
}

func TestSRTFormat(t *testing.T) {
	segments := []models.Segment{
		{Order: 0, Duration: 5, Text: "Hello there", Selected: true, Status: models.SegmentStatusCompleted},
		{Order: 1, Duration: 61, Text: "A long scene", Selected: true, Status: models.SegmentStatusCompleted},
	}
	tl, err := BuildTimeline(segments)
	if err != nil {
		t.Fatal(err)
	}

	srt := tl.SRT()
	if !strings.Contains(srt, "1\n00:00:00,000 --> 00:00:05,000\nHello there") {
		t.Errorf("first entry malformed:\n%s", srt)
	}
	if !strings.Contains(srt, "2\n00:00:05,000 --> 00:01:06,000\nA long scene") {
		t.Errorf("second entry malformed:\n%s", srt)
	}
}
