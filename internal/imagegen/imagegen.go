// Package imagegen renders reference images for image-to-video segment
// generation through the OpenAI images API.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "dall-e-3"

	// Vertical format matching the 9:16 output profile.
	imageSize = "1024x1792"

	// Published flat rate for one image at this size.
	costPerImage = 0.08
)

// Client calls the image generation endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds an image generation client. A missing key fails here, not
// mid-run.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key for image generation: set OPENAI_API_KEY")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// Generate renders one image for a prompt and returns its hosted URL. The URL
// is short-lived; callers persist or re-upload it promptly.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("empty prompt for image generation")
	}

	payload := map[string]interface{}{
		"model":  defaultModel,
		"prompt": prompt,
		"n":      1,
		"size":   imageSize,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal image request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/images/generations", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("image request: status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode image response: %w", err)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("image response carries no URL")
	}
	return result.Data[0].URL, nil
}

// EstimateCost is the flat price for n images, rounded to cents. Pure, no
// network call.
func EstimateCost(n int) float64 {
	return math.Round(float64(n)*costPerImage*100) / 100
}
