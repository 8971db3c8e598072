package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DJIMIGA/latigue/internal/models"
)

const stabilityBaseURL = "https://api.stability.ai/v2beta"

// Stability drives the Stability AI video API. Cheapest backend. Unlike the
// others it has no status field in the poll response: 200 means the result is
// ready, 202 means still generating, 404 means the job is not ready yet.
type Stability struct {
	noCancel
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewStability creates a Stability provider.
func NewStability(apiKey string) *Stability {
	return &Stability{
		apiKey:     apiKey,
		baseURL:    stabilityBaseURL,
		httpClient: newHTTPClient(),
	}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) EstimateCost(durationSeconds int) float64 {
	return float64(durationSeconds) * stabilityRatePerSecond
}

func (s *Stability) GenerateClip(ctx context.Context, req Request) Result {
	payload := map[string]interface{}{
		"text_prompts":     []map[string]interface{}{{"text": req.Prompt, "weight": 1}},
		"cfg_scale":        7,
		"motion_bucket_id": 127,
		"seed":             0,
	}
	for k, v := range req.Extra {
		payload[k] = v
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("stability API error: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/image-to-video", bytes.NewReader(raw))
	if err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("stability API error: %v", err)}
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("stability API error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("stability API error: unexpected status %d", resp.StatusCode)}
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("stability API error: %v", err)}
	}

	return Result{
		JobID:    body.ID,
		Status:   models.SegmentStatusPending,
		Metadata: map[string]interface{}{"provider": "stability", "prompt": req.Prompt},
	}
}

func (s *Stability) GetStatus(ctx context.Context, jobID string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/results/"+jobID, nil)
	if err != nil {
		return Result{JobID: jobID, Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("status check error: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Result{JobID: jobID, Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("status check error: %v", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// The result endpoint itself serves the finished clip.
		return Result{
			JobID:    jobID,
			Status:   models.SegmentStatusCompleted,
			VideoURL: s.baseURL + "/results/" + jobID,
			Progress: 100,
		}
	case http.StatusAccepted:
		return Result{JobID: jobID, Status: models.SegmentStatusProcessing, Progress: 50}
	case http.StatusNotFound:
		// Job not materialized yet.
		return Result{JobID: jobID, Status: models.SegmentStatusProcessing, Progress: 30}
	default:
		return Result{
			JobID:        jobID,
			Status:       models.SegmentStatusFailed,
			ErrorMessage: fmt.Sprintf("status check error: unexpected status %d", resp.StatusCode),
		}
	}
}
