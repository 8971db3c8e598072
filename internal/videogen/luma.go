package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DJIMIGA/latigue/internal/models"
)

const lumaBaseURL = "https://api.lumalabs.ai/v1"

// Luma drives the Luma Dream Machine API. Native vertical output, mid-range
// pricing.
type Luma struct {
	noCancel
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewLuma creates a Luma provider.
func NewLuma(apiKey string) *Luma {
	return &Luma{
		apiKey:     apiKey,
		baseURL:    lumaBaseURL,
		httpClient: newHTTPClient(),
	}
}

func (l *Luma) Name() string { return "luma" }

func (l *Luma) EstimateCost(durationSeconds int) float64 {
	return float64(durationSeconds) * lumaRatePerSecond
}

// lumaAspect maps generic ratios onto Luma's orientation names.
var lumaAspect = map[string]string{
	"9:16": "vertical",
	"16:9": "horizontal",
	"1:1":  "square",
}

func (l *Luma) GenerateClip(ctx context.Context, req Request) Result {
	aspect, ok := lumaAspect[req.AspectRatio]
	if !ok {
		aspect = "vertical"
	}

	payload := map[string]interface{}{
		"prompt":       req.Prompt,
		"aspect_ratio": aspect,
		"duration":     req.Duration,
	}
	for k, v := range req.Extra {
		payload[k] = v
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := l.doJSON(ctx, http.MethodPost, "/generations", payload, &resp); err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("luma API error: %v", err)}
	}

	return Result{
		JobID:    resp.ID,
		Status:   models.SegmentStatusPending,
		Metadata: map[string]interface{}{"provider": "luma", "prompt": req.Prompt},
	}
}

func (l *Luma) GetStatus(ctx context.Context, jobID string) Result {
	var resp struct {
		State  string `json:"state"`
		Assets struct {
			Video string `json:"video"`
		} `json:"assets"`
		FailureReason string `json:"failure_reason"`
	}
	if err := l.doJSON(ctx, http.MethodGet, "/generations/"+jobID, nil, &resp); err != nil {
		return Result{JobID: jobID, Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("status check error: %v", err)}
	}

	status := normalizeLumaState(resp.State)
	result := Result{
		JobID:    jobID,
		Status:   status,
		Progress: lumaProgress(resp.State),
		Metadata: map[string]interface{}{"state": resp.State},
	}
	if status == models.SegmentStatusCompleted {
		result.VideoURL = resp.Assets.Video
	}
	if status == models.SegmentStatusFailed {
		result.ErrorMessage = resp.FailureReason
	}
	return result
}

func normalizeLumaState(state string) models.SegmentStatus {
	switch state {
	case "processing":
		return models.SegmentStatusProcessing
	case "completed":
		return models.SegmentStatusCompleted
	case "failed":
		return models.SegmentStatusFailed
	default:
		return models.SegmentStatusPending
	}
}

func lumaProgress(state string) int {
	switch state {
	case "pending":
		return 10
	case "processing":
		return 50
	case "completed":
		return 100
	}
	return 0
}

func (l *Luma) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+l.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
