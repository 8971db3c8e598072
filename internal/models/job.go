package models

import (
	"encoding/json"
	"time"
)

// JobStatus is the lifecycle state of a production job.
type JobStatus string

const (
	JobStatusDraft              JobStatus = "draft"
	JobStatusScriptPending      JobStatus = "script_pending"
	JobStatusScriptReady        JobStatus = "script_ready"
	JobStatusSegmentsGenerating JobStatus = "segments_generating"
	JobStatusSegmentsCompleted  JobStatus = "segments_completed"
	JobStatusAssembly           JobStatus = "assembly"
	JobStatusCompleted          JobStatus = "completed"
	JobStatusError              JobStatus = "error"
	JobStatusPaused             JobStatus = "paused"
)

// jobStatusRank orders the forward-only stages. Error and paused sit outside
// the ladder and are reachable from any active stage.
var jobStatusRank = map[JobStatus]int{
	JobStatusDraft:              0,
	JobStatusScriptPending:      1,
	JobStatusScriptReady:        2,
	JobStatusSegmentsGenerating: 3,
	JobStatusSegmentsCompleted:  4,
	JobStatusAssembly:           5,
	JobStatusCompleted:          6,
}

// ValidJobTransition reports whether a status change is allowed. Stages only
// advance; error and paused are the two permitted exits, and a paused job can
// resume at any later stage.
func ValidJobTransition(from, to JobStatus) bool {
	if from == to {
		return true
	}
	switch to {
	case JobStatusError, JobStatusPaused:
		return from != JobStatusCompleted
	}
	if from == JobStatusPaused || from == JobStatusError {
		_, ok := jobStatusRank[to]
		return ok
	}
	fromRank, okFrom := jobStatusRank[from]
	toRank, okTo := jobStatusRank[to]
	return okFrom && okTo && toRank > fromRank
}

// Job is one production run, created on submission and mutated by every
// pipeline stage.
type Job struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Theme           string          `json:"theme"`
	Pillar          string          `json:"pillar"`
	TemplateName    *string         `json:"template_name,omitempty"`
	Config          JobConfig       `json:"config"`
	Status          JobStatus       `json:"status"`
	ProgressPercent int             `json:"progress_percent"`
	ScriptJSON      json.RawMessage `json:"script_json,omitempty"`
	Caption         string          `json:"caption,omitempty"`
	Hashtags        string          `json:"hashtags,omitempty"`
	DurationSeconds *int            `json:"duration_seconds,omitempty"`
	EstimatedCost   float64         `json:"estimated_cost"`
	ActualCost      float64         `json:"actual_cost"`
	FinalVideoURL   *string         `json:"final_video_url,omitempty"`
	StoragePath     *string         `json:"storage_path,omitempty"`
	FileSizeMB      *float64        `json:"file_size_mb,omitempty"`
	VideoMetadata   json.RawMessage `json:"video_metadata,omitempty"`
	ErrorMessage    *string         `json:"error_message,omitempty"`
	CreatedBy       *string         `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at,omitempty"`
	StartedAt       *time.Time      `json:"started_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
}

// ContentPillar values accepted by the script generator.
var ContentPillars = []string{"education", "demo", "story", "tips"}

// ValidPillar reports whether a pillar name is one of the known set.
func ValidPillar(p string) bool {
	for _, known := range ContentPillars {
		if p == known {
			return true
		}
	}
	return false
}
