package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DJIMIGA/latigue/internal/models"
)

const runwayBaseURL = "https://api.runwayml.com/v1"

// Runway drives the Runway Gen-3 API. Highest per-second rate of the four
// backends; the only one that reports fractional progress and supports
// cancellation.
type Runway struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewRunway creates a Runway provider.
func NewRunway(apiKey string) *Runway {
	return &Runway{
		apiKey:     apiKey,
		baseURL:    runwayBaseURL,
		httpClient: newHTTPClient(),
	}
}

func (r *Runway) Name() string { return "runway" }

func (r *Runway) EstimateCost(durationSeconds int) float64 {
	return float64(durationSeconds) * runwayRatePerSecond
}

func (r *Runway) GenerateClip(ctx context.Context, req Request) Result {
	payload := map[string]interface{}{
		"prompt":       req.Prompt,
		"duration":     req.Duration,
		"resolution":   "1080p",
		"aspect_ratio": req.AspectRatio,
		"model":        "gen3",
	}
	for k, v := range req.Extra {
		payload[k] = v
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := r.doJSON(ctx, http.MethodPost, "/generate", payload, &resp); err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("runway API error: %v", err)}
	}

	return Result{
		JobID:    resp.ID,
		Status:   models.SegmentStatusPending,
		Metadata: map[string]interface{}{"provider": "runway", "prompt": req.Prompt},
	}
}

func (r *Runway) GetStatus(ctx context.Context, jobID string) Result {
	var resp struct {
		Status   string `json:"status"`
		Progress int    `json:"progress"`
		Output   []struct {
			URL string `json:"url"`
		} `json:"output"`
		Error string `json:"error"`
	}
	if err := r.doJSON(ctx, http.MethodGet, "/tasks/"+jobID, nil, &resp); err != nil {
		return Result{JobID: jobID, Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("status check error: %v", err)}
	}

	status := normalizeRunwayStatus(resp.Status)
	result := Result{
		JobID:    jobID,
		Status:   status,
		Progress: resp.Progress,
		Metadata: map[string]interface{}{"status": resp.Status},
	}
	if status == models.SegmentStatusCompleted && len(resp.Output) > 0 {
		result.VideoURL = resp.Output[0].URL
	}
	if status == models.SegmentStatusFailed {
		result.ErrorMessage = resp.Error
	}
	return result
}

// CancelJob aborts a running Runway task. Returns false on any error; the
// caller only treats true as a confirmed cancellation.
func (r *Runway) CancelJob(ctx context.Context, jobID string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.baseURL+"/tasks/"+jobID, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func normalizeRunwayStatus(status string) models.SegmentStatus {
	switch status {
	case "RUNNING":
		return models.SegmentStatusProcessing
	case "SUCCEEDED":
		return models.SegmentStatusCompleted
	case "FAILED":
		return models.SegmentStatusFailed
	default:
		return models.SegmentStatusPending
	}
}

func (r *Runway) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
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

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
