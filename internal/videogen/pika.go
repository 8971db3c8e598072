package videogen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/DJIMIGA/latigue/internal/models"
)

const pikaBaseURL = "https://api.pika.art/v1"

// Pika drives the Pika Labs API.
type Pika struct {
	noCancel
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewPika creates a Pika provider.
func NewPika(apiKey string) *Pika {
	return &Pika{
		apiKey:     apiKey,
		baseURL:    pikaBaseURL,
		httpClient: newHTTPClient(),
	}
}

func (p *Pika) Name() string { return "pika" }

func (p *Pika) EstimateCost(durationSeconds int) float64 {
	return float64(durationSeconds) * pikaRatePerSecond
}

func (p *Pika) GenerateClip(ctx context.Context, req Request) Result {
	payload := map[string]interface{}{
		"prompt":       req.Prompt,
		"duration":     req.Duration,
		"aspect_ratio": req.AspectRatio,
		"fps":          24,
	}
	for k, v := range req.Extra {
		payload[k] = v
	}

	var resp struct {
		VideoID string `json:"video_id"`
	}
	if err := p.doJSON(ctx, http.MethodPost, "/videos", payload, &resp); err != nil {
		return Result{Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("pika API error: %v", err)}
	}

	return Result{
		JobID:    resp.VideoID,
		Status:   models.SegmentStatusPending,
		Metadata: map[string]interface{}{"provider": "pika", "prompt": req.Prompt},
	}
}

func (p *Pika) GetStatus(ctx context.Context, jobID string) Result {
	var resp struct {
		Status       string `json:"status"`
		VideoURL     string `json:"video_url"`
		ErrorMessage string `json:"error_message"`
	}
	if err := p.doJSON(ctx, http.MethodGet, "/videos/"+jobID, nil, &resp); err != nil {
		return Result{JobID: jobID, Status: models.SegmentStatusFailed, ErrorMessage: fmt.Sprintf("status check error: %v", err)}
	}

	status := normalizePikaStatus(resp.Status)
	result := Result{
		JobID:    jobID,
		Status:   status,
		Progress: pikaProgress(resp.Status),
		Metadata: map[string]interface{}{"status": resp.Status},
	}
	if status == models.SegmentStatusCompleted {
		result.VideoURL = resp.VideoURL
	}
	if status == models.SegmentStatusFailed {
		result.ErrorMessage = resp.ErrorMessage
	}
	return result
}

func normalizePikaStatus(status string) models.SegmentStatus {
	switch status {
	case "generating":
		return models.SegmentStatusProcessing
	case "completed":
		return models.SegmentStatusCompleted
	case "error":
		return models.SegmentStatusFailed
	default: // queued and anything unknown
		return models.SegmentStatusPending
	}
}

func pikaProgress(status string) int {
	switch status {
	case "queued":
		return 10
	case "generating":
		return 50
	case "completed":
		return 100
	}
	return 0
}

func (p *Pika) doJSON(ctx context.Context, method, path string, payload, out interface{}) error {
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

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
