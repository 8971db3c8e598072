package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/DJIMIGA/latigue/internal/jobs"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/pipeline"
	"github.com/DJIMIGA/latigue/internal/segments"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/utils"
)

// CreateJobRequest is the request body for creating a production job.
type CreateJobRequest struct {
	Title           string `json:"title"`
	Theme           string `json:"theme" validate:"required"`
	Pillar          string `json:"pillar" validate:"omitempty,oneof=education demo story tips"`
	Template        string `json:"template"`
	Duration        int    `json:"duration" validate:"omitempty,min=5,max=180"`
	SegmentDuration int    `json:"segment_duration" validate:"omitempty,min=2,max=15"`
	Provider        string `json:"provider"`
	AIProvider      string `json:"ai_provider" validate:"omitempty,oneof=anthropic openai"`
	Parallel        *bool  `json:"parallel"`
	Voiceover       *bool  `json:"voiceover"`
	Subtitles       *bool  `json:"subtitles"`
}

func (h *ApplicationHandler) pipelineRequest(req *CreateJobRequest) pipeline.Request {
	return pipeline.Request{
		Title:           utils.SanitizeInput(req.Title),
		Theme:           utils.SanitizeInput(req.Theme),
		Pillar:          req.Pillar,
		TemplateName:    req.Template,
		Duration:        req.Duration,
		SegmentDuration: req.SegmentDuration,
		Provider:        req.Provider,
		AIProvider:      req.AIProvider,
		Parallel:        req.Parallel,
		Voiceover:       req.Voiceover,
		Subtitles:       req.Subtitles,
	}
}

// CreateJob creates a draft production job with its cost estimate.
// POST /api/v1/jobs
func (h *ApplicationHandler) CreateJob(c *fiber.Ctx) error {
	req := new(CreateJobRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse job JSON: %v", err))
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	job, err := h.Pipeline.CreateJob(c.Context(), h.pipelineRequest(req))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, job)
}

// ListJobs returns all jobs, newest first.
// GET /api/v1/jobs
func (h *ApplicationHandler) ListJobs(c *fiber.Ctx) error {
	list, err := h.Store.ListJobs(c.Context())
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not list jobs: %v", err))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}

// GetJob returns one job record.
// GET /api/v1/jobs/:jobId
func (h *ApplicationHandler) GetJob(c *fiber.Ctx) error {
	job, err := h.Store.GetJob(c.Context(), c.Params("jobId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not retrieve job: %v", err))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// StartJob queues an existing draft job for asynchronous production.
// POST /api/v1/jobs/:jobId/start
func (h *ApplicationHandler) StartJob(c *fiber.Ctx) error {
	job, err := h.Store.GetJob(c.Context(), c.Params("jobId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	if job.Status != models.JobStatusDraft && job.Status != models.JobStatusPaused && job.Status != models.JobStatusError {
		return utils.RespondWithError(c, fiber.StatusConflict, fmt.Sprintf("Job is %s, only draft, paused or error jobs can be started", job.Status))
	}

	queued := h.Dispatcher.Submit(&jobs.ProductionJob{
		Job:      job,
		Pipeline: h.Pipeline,
	})
	if !queued {
		return utils.RespondWithError(c, fiber.StatusServiceUnavailable, "Job queue is full, try again later")
	}
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"job_id": job.ID, "queued": true})
}

// PauseJob marks a job paused. Segments already submitted to a backend keep
// running; pause only blocks new submissions.
// POST /api/v1/jobs/:jobId/pause
func (h *ApplicationHandler) PauseJob(c *fiber.Ctx) error {
	return h.setStatus(c, models.JobStatusPaused)
}

// ResumeJob moves a paused job back to draft so it can be started again.
// POST /api/v1/jobs/:jobId/resume
func (h *ApplicationHandler) ResumeJob(c *fiber.Ctx) error {
	return h.setStatus(c, models.JobStatusDraft)
}

func (h *ApplicationHandler) setStatus(c *fiber.Ctx, status models.JobStatus) error {
	jobID := c.Params("jobId")
	if err := h.Store.SetJobStatus(c.Context(), jobID, status, ""); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		case errors.Is(err, store.ErrInvalidTransition):
			return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
		default:
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
	}
	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, job)
}

// GetJobProgress returns the aggregated segment progress for a job.
// GET /api/v1/jobs/:jobId/progress
func (h *ApplicationHandler) GetJobProgress(c *fiber.Ctx) error {
	prog, err := segments.CheckProgress(c.Context(), h.Store, c.Params("jobId"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, prog)
}
