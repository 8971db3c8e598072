// Package segments drives per-segment video generation against a single
// backend: submission, fixed-interval polling, timeouts and cost tracking.
package segments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/script"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/videogen"
)

const (
	// DefaultPollInterval is the fixed cadence between status polls.
	DefaultPollInterval = 5 * time.Second
	// DefaultSegmentTimeout bounds one segment's wait in sequential mode.
	DefaultSegmentTimeout = 300 * time.Second
	// DefaultJobTimeout bounds the shared polling loop in parallel mode.
	DefaultJobTimeout = 600 * time.Second
)

// ErrJobPaused is returned when a paused job blocks further submissions.
// In-flight polling is not aborted; pause is advisory for new work only.
var ErrJobPaused = errors.New("job is paused")

// Processor generates all of a job's segments with one provider, either
// sequentially or with client-side fan-out plus a shared polling loop.
type Processor struct {
	store    store.Store
	provider videogen.Provider

	// Poll cadence and timeouts, overridable for tests.
	PollInterval   time.Duration
	SegmentTimeout time.Duration
	JobTimeout     time.Duration
}

// NewProcessor wires a processor to a store and a video backend.
func NewProcessor(st store.Store, provider videogen.Provider) *Processor {
	return &Processor{
		store:          st,
		provider:       provider,
		PollInterval:   DefaultPollInterval,
		SegmentTimeout: DefaultSegmentTimeout,
		JobTimeout:     DefaultJobTimeout,
	}
}

// CreateSegments materializes a parsed script into segment records: one per
// script segment, indices 0..N-1, every one starting in draft and selected.
func (p *Processor) CreateSegments(ctx context.Context, job *models.Job, scr *script.Script) ([]models.Segment, error) {
	cfg := job.Config
	segments := make([]models.Segment, 0, len(scr.Segments))
	for i, s := range scr.Segments {
		duration := s.Duration
		if duration <= 0 {
			duration = cfg.SegmentDuration
		}
		segments = append(segments, models.Segment{
			ID:          uuid.NewString(),
			JobID:       job.ID,
			Order:       i,
			Text:        s.Text,
			Prompt:      s.Prompt,
			Duration:    duration,
			AspectRatio: cfg.AspectRatio,
			Status:      models.SegmentStatusDraft,
			Selected:    true,
		})
	}
	if err := p.store.CreateSegments(ctx, segments); err != nil {
		return nil, fmt.Errorf("create segments: %w", err)
	}
	return segments, nil
}

// GenerateAll runs generation for every selected segment. The job ends in
// segments_completed only when every selected segment completed; any other
// outcome is error.
func (p *Processor) GenerateAll(ctx context.Context, job *models.Job, parallel bool) ([]models.Segment, error) {
	segments, err := p.store.ListSegments(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	selected := selectedOnly(segments)
	if len(selected) == 0 {
		config.Log.WithField("job_id", job.ID).Warn("No selected segments to generate")
		return nil, nil
	}

	if paused, err := p.jobPaused(ctx, job.ID); err != nil {
		return nil, err
	} else if paused {
		return nil, ErrJobPaused
	}

	if err := p.store.SetJobStatus(ctx, job.ID, models.JobStatusSegmentsGenerating, ""); err != nil {
		return nil, err
	}

	config.Log.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"segments": len(selected),
		"provider": p.provider.Name(),
		"parallel": parallel,
	}).Info("Starting segment generation")

	if parallel {
		err = p.generateParallel(ctx, job.ID, selected)
	} else {
		err = p.generateSequential(ctx, job.ID, selected)
	}
	// Re-read for final statuses; completion order does not matter here,
	// only terminal states.
	final, listErr := p.store.ListSegments(ctx, job.ID)
	if listErr != nil {
		return nil, listErr
	}
	finalSelected := selectedOnly(final)

	if errors.Is(err, ErrJobPaused) {
		// The job stays paused; unsubmitted segments stay in draft.
		return finalSelected, ErrJobPaused
	}
	if err != nil {
		return nil, err
	}

	jobStatus := models.JobStatusSegmentsCompleted
	var jobError string
	for _, seg := range finalSelected {
		if seg.Status != models.SegmentStatusCompleted {
			jobStatus = models.JobStatusError
			jobError = fmt.Sprintf("segment %d ended in status %s: %s", seg.Order, seg.Status, seg.ErrorMessage)
			break
		}
	}
	if err := p.store.SetJobStatus(ctx, job.ID, jobStatus, jobError); err != nil {
		return nil, err
	}
	return finalSelected, nil
}

func (p *Processor) generateSequential(ctx context.Context, jobID string, segments []models.Segment) error {
	for i := range segments {
		seg := &segments[i]
		if paused, err := p.jobPaused(ctx, jobID); err != nil {
			return err
		} else if paused {
			config.Log.WithField("job_id", jobID).Info("Job paused, skipping remaining submissions")
			return ErrJobPaused
		}

		result := p.startSegment(ctx, seg)
		if result.Status == models.SegmentStatusFailed {
			config.Log.WithFields(map[string]interface{}{
				"job_id": jobID,
				"order":  seg.Order,
				"error":  result.ErrorMessage,
			}).Error("Segment submission failed")
			continue
		}
		p.waitForCompletion(ctx, seg)
	}
	return nil
}

func (p *Processor) generateParallel(ctx context.Context, jobID string, segments []models.Segment) error {
	// Fan out all submissions first.
	submitted := 0
	for i := range segments {
		seg := &segments[i]
		if paused, err := p.jobPaused(ctx, jobID); err != nil {
			return err
		} else if paused {
			return ErrJobPaused
		}
		result := p.startSegment(ctx, seg)
		if result.Status != models.SegmentStatusFailed {
			submitted++
		}
	}
	config.Log.WithFields(map[string]interface{}{
		"job_id":    jobID,
		"submitted": submitted,
	}).Info("Segments submitted in parallel")

	// One shared polling loop updates every non-terminal segment each pass.
	deadline := time.Now().Add(p.JobTimeout)
	for time.Now().Before(deadline) {
		allDone := true
		for i := range segments {
			seg := &segments[i]
			if seg.Status.Terminal() || seg.ProviderJobID == "" {
				continue
			}
			result := p.provider.GetStatus(ctx, seg.ProviderJobID)
			p.applyResult(ctx, seg, result)
			if !seg.Status.Terminal() {
				allDone = false
			}
		}
		if allDone {
			return nil
		}
		if err := sleepCtx(ctx, p.PollInterval); err != nil {
			return err
		}
	}

	// Bound hit: everything still in flight fails with a timeout. Completed
	// siblings keep their results.
	for i := range segments {
		seg := &segments[i]
		if !seg.Status.Terminal() && seg.ProviderJobID != "" {
			p.failSegment(ctx, seg, "timeout waiting for video generation")
		}
	}
	return nil
}

// startSegment submits one generation request, attaching the segment's
// reference asset when one exists, and records the backend job id.
func (p *Processor) startSegment(ctx context.Context, seg *models.Segment) videogen.Result {
	seg.Status = models.SegmentStatusPending
	seg.Provider = p.provider.Name()
	now := time.Now().UTC()
	seg.StartedAt = &now
	p.persist(ctx, seg)

	req := videogen.Request{
		Prompt:      seg.Prompt,
		Duration:    seg.Duration,
		AspectRatio: seg.AspectRatio,
	}
	if asset, err := p.store.GetAsset(ctx, seg.JobID, seg.Order); err == nil {
		req.Extra = map[string]interface{}{
			"reference_image_url": asset.URL,
		}
		if asset.AnimationPrompt != "" {
			req.Extra["animation_prompt"] = asset.AnimationPrompt
		}
	}

	result := p.provider.GenerateClip(ctx, req)
	seg.ProviderJobID = result.JobID
	if result.Status == models.SegmentStatusFailed {
		seg.Status = models.SegmentStatusFailed
		seg.ErrorMessage = result.ErrorMessage
	}
	p.persist(ctx, seg)
	return result
}

// waitForCompletion polls one segment to a terminal state or the per-segment
// timeout, whichever comes first.
func (p *Processor) waitForCompletion(ctx context.Context, seg *models.Segment) {
	deadline := time.Now().Add(p.SegmentTimeout)
	for time.Now().Before(deadline) {
		result := p.provider.GetStatus(ctx, seg.ProviderJobID)
		p.applyResult(ctx, seg, result)
		if seg.Status.Terminal() {
			return
		}
		if err := sleepCtx(ctx, p.PollInterval); err != nil {
			p.failSegment(ctx, seg, err.Error())
			return
		}
	}
	p.failSegment(ctx, seg, "timeout waiting for video generation")
}

// applyResult folds one poll into the segment. The latest observed progress
// always wins; there is no smoothing. Cost is the backend estimate for the
// segment duration, computed once at completion.
func (p *Processor) applyResult(ctx context.Context, seg *models.Segment, result videogen.Result) {
	seg.ProgressPercent = result.Progress
	if result.Metadata != nil {
		if raw, err := marshalMetadata(result.Metadata); err == nil {
			seg.Metadata = raw
		}
	}

	target := result.Status
	if target == models.SegmentStatusCompleted && result.VideoURL == "" {
		// A completed segment must have a clip location.
		target = models.SegmentStatusFailed
		result.ErrorMessage = "backend reported completed without a video URL"
	}

	if models.ValidSegmentTransition(seg.Status, target) {
		seg.Status = target
	}
	switch seg.Status {
	case models.SegmentStatusCompleted:
		seg.VideoURL = result.VideoURL
		seg.Cost = p.provider.EstimateCost(seg.Duration)
		seg.ProgressPercent = 100
		now := time.Now().UTC()
		seg.CompletedAt = &now
	case models.SegmentStatusFailed:
		seg.ErrorMessage = result.ErrorMessage
	}
	p.persist(ctx, seg)
}

func (p *Processor) failSegment(ctx context.Context, seg *models.Segment, message string) {
	if models.ValidSegmentTransition(seg.Status, models.SegmentStatusFailed) {
		seg.Status = models.SegmentStatusFailed
	}
	seg.ErrorMessage = message
	p.persist(ctx, seg)
}

// CancelSegment best-effort cancels one segment's backend job and marks the
// record cancelled when the segment was still in flight.
func (p *Processor) CancelSegment(ctx context.Context, seg *models.Segment) bool {
	cancelled := false
	if seg.ProviderJobID != "" {
		cancelled = p.provider.CancelJob(ctx, seg.ProviderJobID)
	}
	if models.ValidSegmentTransition(seg.Status, models.SegmentStatusCancelled) {
		seg.Status = models.SegmentStatusCancelled
		p.persist(ctx, seg)
	}
	return cancelled
}

// Regenerate re-runs a single segment, optionally with a new prompt, and
// polls it to a terminal state.
func (p *Processor) Regenerate(ctx context.Context, jobID string, order int, newPrompt string) (*models.Segment, error) {
	segments, err := p.store.ListSegments(ctx, jobID)
	if err != nil {
		return nil, err
	}
	var seg *models.Segment
	for i := range segments {
		if segments[i].Order == order {
			seg = &segments[i]
			break
		}
	}
	if seg == nil {
		return nil, fmt.Errorf("segment %d not found on job %s: %w", order, jobID, store.ErrNotFound)
	}

	if newPrompt != "" {
		seg.Prompt = newPrompt
	}
	seg.Status = models.SegmentStatusDraft
	seg.ProviderJobID = ""
	seg.VideoURL = ""
	seg.ErrorMessage = ""
	seg.ProgressPercent = 0
	seg.CompletedAt = nil
	p.persist(ctx, seg)

	result := p.startSegment(ctx, seg)
	if result.Status != models.SegmentStatusFailed {
		p.waitForCompletion(ctx, seg)
	}
	return seg, nil
}

// EstimateTotalCost sums the backend estimate over every selected segment.
// Pure: no network calls.
func (p *Processor) EstimateTotalCost(segments []models.Segment) float64 {
	total := 0.0
	for _, seg := range segments {
		if seg.Selected {
			total += p.provider.EstimateCost(seg.Duration)
		}
	}
	return total
}

// Progress aggregates segment counts for a job.
type Progress struct {
	Total      int    `json:"total"`
	Completed  int    `json:"completed"`
	Failed     int    `json:"failed"`
	Processing int    `json:"processing"`
	Percent    int    `json:"progress"`
	Status     string `json:"status"`
}

// CheckProgress computes the job-level progress summary.
func (p *Processor) CheckProgress(ctx context.Context, jobID string) (*Progress, error) {
	return CheckProgress(ctx, p.store, jobID)
}

// CheckProgress aggregates segment states for a job. It needs only the store,
// so status endpoints can call it without constructing a video backend.
func CheckProgress(ctx context.Context, st store.Store, jobID string) (*Progress, error) {
	job, err := st.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	segments, err := st.ListSegments(ctx, jobID)
	if err != nil {
		return nil, err
	}

	prog := &Progress{Status: string(job.Status)}
	for _, seg := range segments {
		if !seg.Selected {
			continue
		}
		prog.Total++
		switch seg.Status {
		case models.SegmentStatusCompleted:
			prog.Completed++
		case models.SegmentStatusFailed:
			prog.Failed++
		case models.SegmentStatusPending, models.SegmentStatusProcessing:
			prog.Processing++
		}
	}
	if prog.Total > 0 {
		prog.Percent = prog.Completed * 100 / prog.Total
	}
	return prog, nil
}

func (p *Processor) jobPaused(ctx context.Context, jobID string) (bool, error) {
	job, err := p.store.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	return job.Status == models.JobStatusPaused, nil
}

func (p *Processor) persist(ctx context.Context, seg *models.Segment) {
	if err := p.store.UpdateSegment(ctx, seg); err != nil {
		config.Log.WithFields(map[string]interface{}{
			"segment_id": seg.ID,
			"error":      err.Error(),
		}).Error("Failed to persist segment")
	}
}

func selectedOnly(segments []models.Segment) []models.Segment {
	out := make([]models.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Selected {
			out = append(out, seg)
		}
	}
	return out
}

func marshalMetadata(meta map[string]interface{}) ([]byte, error) {
	return json.Marshal(meta)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
