package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/DJIMIGA/latigue/internal/imagegen"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/utils"
)

// UpsertAssetRequest binds a reference asset to one segment index.
type UpsertAssetRequest struct {
	SegmentIndex    int    `json:"segment_index" validate:"min=0"`
	AssetType       string `json:"asset_type" validate:"required,oneof=image video screenshot generated"`
	URL             string `json:"url" validate:"required,url"`
	AnimationPrompt string `json:"animation_prompt"`
}

// UpsertAsset creates or replaces the reference asset for a segment index.
// POST /api/v1/jobs/:jobId/assets
func (h *ApplicationHandler) UpsertAsset(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if _, err := h.Store.GetJob(c.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	req := new(UpsertAssetRequest)
	if err := c.BodyParser(req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse asset JSON: %v", err))
	}
	if err := h.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Validation failed",
			"errors":  utils.FormatValidationErrors(err),
		})
	}

	asset := &models.SegmentAsset{
		ID:              uuid.NewString(),
		JobID:           jobID,
		SegmentIndex:    req.SegmentIndex,
		AssetType:       models.AssetType(req.AssetType),
		URL:             req.URL,
		AnimationPrompt: req.AnimationPrompt,
	}
	if err := h.Store.UpsertAsset(c.Context(), asset); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, asset)
}

// GenerateAssetRequest overrides the image prompt; empty falls back to the
// segment's video prompt.
type GenerateAssetRequest struct {
	Prompt          string `json:"prompt"`
	AnimationPrompt string `json:"animation_prompt"`
}

// GenerateSegmentAsset renders a reference image for one segment and stores
// it as that segment's asset, replacing any previous one.
// POST /api/v1/jobs/:jobId/segments/:order/image
func (h *ApplicationHandler) GenerateSegmentAsset(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	order, err := strconv.Atoi(c.Params("order"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid segment order")
	}

	req := new(GenerateAssetRequest)
	if err := c.BodyParser(req); err != nil && len(c.Body()) > 0 {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse request JSON: %v", err))
	}

	if _, err := h.Store.GetJob(c.Context(), jobID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Job not found")
		}
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}

	prompt := req.Prompt
	if prompt == "" {
		list, err := h.Store.ListSegments(c.Context(), jobID)
		if err != nil {
			return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
		}
		for _, seg := range list {
			if seg.Order == order {
				prompt = seg.Prompt
				break
			}
		}
		if prompt == "" {
			return utils.RespondWithError(c, fiber.StatusBadRequest, "No prompt given and the segment has none")
		}
	}

	client, err := imagegen.NewClient(h.Cfg.OpenAIAPIKey)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}
	url, err := client.Generate(c.Context(), prompt)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadGateway, fmt.Sprintf("Image generation failed: %v", err))
	}

	meta, _ := json.Marshal(map[string]interface{}{
		"prompt": prompt,
		"cost":   imagegen.EstimateCost(1),
	})
	asset := &models.SegmentAsset{
		ID:              uuid.NewString(),
		JobID:           jobID,
		SegmentIndex:    order,
		AssetType:       models.AssetTypeGenerated,
		URL:             url,
		AnimationPrompt: req.AnimationPrompt,
		Metadata:        meta,
	}
	if err := h.Store.UpsertAsset(c.Context(), asset); err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, asset)
}

// ListAssets returns a job's reference assets ordered by segment index.
// GET /api/v1/jobs/:jobId/assets
func (h *ApplicationHandler) ListAssets(c *fiber.Ctx) error {
	list, err := h.Store.ListAssets(c.Context(), c.Params("jobId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusInternalServerError, err.Error())
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}
