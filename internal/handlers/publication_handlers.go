package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/utils"
)

// CreatePublicationRequest records the final video being posted to a
// platform.
type CreatePublicationRequest struct {
	Platform       string     `json:"platform" validate:"required,oneof=tiktok instagram facebook youtube"`
	PlatformPostID string     `json:"platform_post_id"`
	PlatformURL    string     `json:"platform_url" validate:"omitempty,url"`
	ScheduledFor   *time.Time `json:"scheduled_for"`
}

// CreatePublication records one platform post of a completed job.
// POST /api/v1/jobs/:jobId/publications
func (h *ApplicationHandler) CreatePublication(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	if job.Status != models.JobStatusCompleted {
		return utils.RespondWithError(c, fiber.StatusConflict, "Only completed jobs can be published")
	}

	req := new(CreatePublicationRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse publication JSON: %v", err))
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	now := time.Now().UTC()
	pub := &models.Publication{
		ID:             uuid.NewString(),
		JobID:          jobID,
		Platform:       req.Platform,
		PlatformPostID: req.PlatformPostID,
		PlatformURL:    req.PlatformURL,
		ScheduledFor:   req.ScheduledFor,
	}
	if req.ScheduledFor == nil {
		pub.PublishedAt = &now
	}
	if err := h.Store.CreatePublication(c.Context(), pub); err != nil {
		return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, pub)
}

// ListPublications returns a job's platform posts.
// GET /api/v1/jobs/:jobId/publications
func (h *ApplicationHandler) ListPublications(c *fiber.Ctx) error {
	list, err := h.Store.ListPublications(c.Context(), c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}

// UpdateAnalyticsRequest refreshes the engagement counters of a publication.
type UpdateAnalyticsRequest struct {
	Views    *int `json:"views" validate:"omitempty,min=0"`
	Likes    *int `json:"likes" validate:"omitempty,min=0"`
	Comments *int `json:"comments" validate:"omitempty,min=0"`
	Shares   *int `json:"shares" validate:"omitempty,min=0"`
}

// UpdatePublication updates a publication's analytics counters.
// PATCH /api/v1/jobs/:jobId/publications/:pubId
func (h *ApplicationHandler) UpdatePublication(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	pubID := c.Params("pubId")

	req := new(UpdateAnalyticsRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse analytics JSON: %v", err))
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	list, err := h.Store.ListPublications(c.Context(), jobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	for i := range list {
		if list[i].ID != pubID {
			continue
		}
		pub := &list[i]
		if req.Views != nil {
			pub.Views = *req.Views
		}
		if req.Likes != nil {
			pub.Likes = *req.Likes
		}
		if req.Comments != nil {
			pub.Comments = *req.Comments
		}
		if req.Shares != nil {
			pub.Shares = *req.Shares
		}
		now := time.Now().UTC()
		pub.LastAnalyticsUpdate = &now
		if err := h.Store.UpdatePublication(c.Context(), pub); err != nil {
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
		return utils.RespondWithJSON(c, fiber.StatusOK, pub)
	}
	return utils.RespondWithError(c, fiber.StatusNotFound, "Publication not found")
}
