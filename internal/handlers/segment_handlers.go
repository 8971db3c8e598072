package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/DJIMIGA/latigue/internal/segments"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/utils"
	"github.com/DJIMIGA/latigue/internal/videogen"
)

// ListSegments returns a job's segments in presentation order.
// GET /api/v1/jobs/:jobId/segments
func (h *ApplicationHandler) ListSegments(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if _, err := h.Store.GetJob(c.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	list, err := h.Store.ListSegments(c.Context(), jobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not list segments: %v", err))
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}

// UpdateSegmentRequest carries the editable segment fields.
type UpdateSegmentRequest struct {
	Selected *bool   `json:"selected"`
	Prompt   *string `json:"prompt"`
	Text     *string `json:"text"`
}

// UpdateSegment edits a segment's selection flag, prompt or text.
// PATCH /api/v1/jobs/:jobId/segments/:order
func (h *ApplicationHandler) UpdateSegment(c *fiber.Ctx) error {
	order, err := strconv.Atoi(c.Params("order"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid segment order")
	}

	req := new(UpdateSegmentRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse segment JSON: %v", err))
	}

	list, err := h.Store.ListSegments(c.Context(), c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	for i := range list {
		if list[i].Order != order {
			continue
		}
		seg := &list[i]
		if req.Selected != nil {
			seg.Selected = *req.Selected
		}
		if req.Prompt != nil {
			seg.Prompt = *req.Prompt
		}
		if req.Text != nil {
			seg.Text = *req.Text
		}
		if err := h.Store.UpdateSegment(c.Context(), seg); err != nil {
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
		return utils.RespondWithJSON(c, fiber.StatusOK, seg)
	}
	return utils.RespondWithError(c, fiber.StatusNotFound, "Segment not found")
}

// CancelSegment cancels one in-flight segment. The backend cancellation is
// best-effort; the record is marked cancelled regardless.
// POST /api/v1/jobs/:jobId/segments/:order/cancel
func (h *ApplicationHandler) CancelSegment(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	order, err := strconv.Atoi(c.Params("order"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid segment order")
	}

	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	list, err := h.Store.ListSegments(c.Context(), jobID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	for i := range list {
		if list[i].Order != order {
			continue
		}
		seg := &list[i]
		if seg.Status.Terminal() {
			return utils.RespondWithError(c, fiber.StatusConflict, fmt.Sprintf("Segment is already %s", seg.Status))
		}

		provider, err := videogen.New(job.Config.Provider, h.Cfg.ProviderKey(job.Config.Provider))
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		}
		proc := segments.NewProcessor(h.Store, provider)
		backendCancelled := proc.CancelSegment(c.Context(), seg)
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
			"segment":           seg,
			"backend_cancelled": backendCancelled,
		})
	}
	return utils.RespondWithError(c, fiber.StatusNotFound, "Segment not found")
}

// RegenerateSegmentRequest optionally replaces the prompt before the re-run.
type RegenerateSegmentRequest struct {
	Prompt string `json:"prompt"`
}

// RegenerateSegment re-runs generation for one segment. Blocks until the
// segment reaches a terminal state.
// POST /api/v1/jobs/:jobId/segments/:order/regenerate
func (h *ApplicationHandler) RegenerateSegment(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	order, err := strconv.Atoi(c.Params("order"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid segment order")
	}

	req := new(RegenerateSegmentRequest)
	if err := c.BodyParser(req); err != nil && len(c.Body()) > 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse request JSON: %v", err))
	}

	job, err := h.Store.GetJob(c.Context(), jobID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	provider, err := videogen.New(job.Config.Provider, h.Cfg.ProviderKey(job.Config.Provider))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	proc := segments.NewProcessor(h.Store, provider)
	seg, err := proc.Regenerate(c.Context(), jobID, order, req.Prompt)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Segment not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, seg)
}
