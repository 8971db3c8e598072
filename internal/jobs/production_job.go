// Package jobs defines the work units the dispatcher runs.
package jobs

import (
	"context"
	"time"

	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/pipeline"
)

// ProductionJob drives one already-created job record through the pipeline
// stages on a worker goroutine.
type ProductionJob struct {
	Job      *models.Job
	Request  pipeline.Request
	Pipeline *pipeline.Pipeline
	// Timeout bounds the whole run. Zero means one hour.
	Timeout time.Duration
}

// ID returns the production job record id.
func (j *ProductionJob) ID() string {
	return j.Job.ID
}

// Execute runs the pipeline stages. Errors are already recorded on the job
// record by the pipeline; they are returned here for worker logging only.
func (j *ProductionJob) Execute() error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return j.Pipeline.RunJob(ctx, j.Job, j.Request)
}
