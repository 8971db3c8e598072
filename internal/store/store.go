// Package store persists job, segment, asset and publication records. The
// pipeline mutates rows through this interface only; each stage writes its
// own fields, so row-level last-write-wins is the consistency model.
package store

import (
	"context"
	"errors"

	"github.com/DJIMIGA/latigue/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInvalidTransition is returned when a status update would move a record
// backwards through its lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// Store is the persistence contract shared by the HTTP server, the CLI and
// the pipeline stages.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	// UpdateJob overwrites mutable job fields. Status changes must satisfy
	// models.ValidJobTransition.
	UpdateJob(ctx context.Context, job *models.Job) error
	// SetJobStatus updates status and error text only.
	SetJobStatus(ctx context.Context, id string, status models.JobStatus, errorMessage string) error

	// CreateSegments replaces a job's segment rows. A restarted job writes a
	// fresh generation; keeping stale rows would duplicate order indices.
	CreateSegments(ctx context.Context, segments []models.Segment) error
	// ListSegments returns a job's segments sorted by order index.
	ListSegments(ctx context.Context, jobID string) ([]models.Segment, error)
	UpdateSegment(ctx context.Context, segment *models.Segment) error

	UpsertAsset(ctx context.Context, asset *models.SegmentAsset) error
	// GetAsset returns the reference asset for one segment index, or
	// ErrNotFound when the segment has none.
	GetAsset(ctx context.Context, jobID string, segmentIndex int) (*models.SegmentAsset, error)
	ListAssets(ctx context.Context, jobID string) ([]models.SegmentAsset, error)

	CreatePublication(ctx context.Context, pub *models.Publication) error
	ListPublications(ctx context.Context, jobID string) ([]models.Publication, error)
	UpdatePublication(ctx context.Context, pub *models.Publication) error
}
