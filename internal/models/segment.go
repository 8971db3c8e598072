package models

import (
	"encoding/json"
	"time"
)

// SegmentStatus is the per-segment generation state.
type SegmentStatus string

const (
	SegmentStatusDraft      SegmentStatus = "draft"
	SegmentStatusPending    SegmentStatus = "pending"
	SegmentStatusProcessing SegmentStatus = "processing"
	SegmentStatusCompleted  SegmentStatus = "completed"
	SegmentStatusFailed     SegmentStatus = "failed"
	SegmentStatusCancelled  SegmentStatus = "cancelled"
)

// Terminal reports whether no further polling can change the status.
func (s SegmentStatus) Terminal() bool {
	switch s {
	case SegmentStatusCompleted, SegmentStatusFailed, SegmentStatusCancelled:
		return true
	}
	return false
}

// ValidSegmentTransition enforces the segment state graph:
// draft -> pending -> processing -> {completed|failed}, with cancelled
// reachable from any non-terminal state. A poll may report completed or
// failed straight from pending.
func ValidSegmentTransition(from, to SegmentStatus) bool {
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	switch from {
	case SegmentStatusDraft:
		return to == SegmentStatusPending || to == SegmentStatusFailed || to == SegmentStatusCancelled
	case SegmentStatusPending:
		return to == SegmentStatusProcessing || to == SegmentStatusCompleted ||
			to == SegmentStatusFailed || to == SegmentStatusCancelled
	case SegmentStatusProcessing:
		return to == SegmentStatusCompleted || to == SegmentStatusFailed || to == SegmentStatusCancelled
	}
	return false
}

// Segment is one narration/video chunk inside a job. Order is unique and
// contiguous per job; the assembler reads presentation order from it, never
// from completion order.
type Segment struct {
	ID              string          `json:"id"`
	JobID           string          `json:"job_id"`
	Order           int             `json:"order"`
	Text            string          `json:"text"`
	Prompt          string          `json:"prompt"`
	Duration        int             `json:"duration"`
	AspectRatio     string          `json:"aspect_ratio,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	ProviderJobID   string          `json:"provider_job_id,omitempty"`
	Status          SegmentStatus   `json:"status"`
	ProgressPercent int             `json:"progress_percent"`
	VideoURL        string          `json:"video_url,omitempty"`
	LocalPath       string          `json:"local_path,omitempty"`
	Selected        bool            `json:"selected"`
	Cost            float64         `json:"cost"`
	ErrorMessage    string          `json:"error_message,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}
