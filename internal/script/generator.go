package script

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	openaiBaseURL    = "https://api.openai.com"

	anthropicModel = "claude-3-5-sonnet-20241022"
	openaiModel    = "gpt-4o"
)

// ErrMalformedResponse means the generation backend returned text that could
// not be parsed as the expected JSON, even after fence stripping. Not retried.
var ErrMalformedResponse = errors.New("malformed generation response")

// ErrBusy surfaces an HTTP 429 from the generation backend as a user-facing
// condition instead of an automatic retry.
var ErrBusy = errors.New("generation service is busy, try again later")

// Segment is one narration/visual chunk of a generated script.
type Segment struct {
	Order    int    `json:"order"`
	Duration int    `json:"duration"`
	Text     string `json:"text"`
	Prompt   string `json:"prompt"`
	Timing   string `json:"timing,omitempty"`
}

// Script is the full structured output of one generation call.
type Script struct {
	Theme         string    `json:"theme,omitempty"`
	TotalDuration int       `json:"total_duration,omitempty"`
	Segments      []Segment `json:"segments"`
	Voiceover     string    `json:"voiceover"`
	Hashtags      []string  `json:"hashtags"`
	Caption       string    `json:"caption"`
}

// Generator produces segmented video scripts through a text-generation API.
// Pure request/response; callers persist the result.
type Generator struct {
	provider   string // anthropic | openai
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGenerator builds a Generator for the named text backend. A missing API
// key fails here, before any request is made.
func NewGenerator(provider, apiKey string) (*Generator, error) {
	g := &Generator{
		provider:   strings.ToLower(provider),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	switch g.provider {
	case "anthropic":
		g.model = anthropicModel
		g.baseURL = anthropicBaseURL
	case "openai":
		g.model = openaiModel
		g.baseURL = openaiBaseURL
	default:
		return nil, fmt.Errorf("unsupported AI provider %q (anthropic or openai)", provider)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key for AI provider %q", g.provider)
	}
	return g, nil
}

var pillarContext = map[string]string{
	"education": "educational format, technical knowledge sharing",
	"demo":      "product demo of BoliBana Stock (inventory management for small retailers)",
	"story":     "storytelling, personal journey, inspiration",
	"tips":      "quick dev/tech tips, practical tricks",
}

// Create generates a segmented script for the given pillar and theme. The
// segment count is totalDuration divided by segmentDuration; the backend is
// instructed to return strict JSON matching the Script shape.
func (g *Generator) Create(ctx context.Context, pillar, theme string, totalDuration, segmentDuration int) (*Script, error) {
	if segmentDuration <= 0 {
		segmentDuration = 5
	}
	numSegments := totalDuration / segmentDuration

	prompt := buildPrompt(pillar, theme, numSegments, segmentDuration)

	var raw string
	var err error
	switch g.provider {
	case "anthropic":
		raw, err = g.generateWithAnthropic(ctx, prompt)
	default:
		raw, err = g.generateWithOpenAI(ctx, prompt)
	}
	if err != nil {
		return nil, err
	}

	var result Script
	if err := decodeScriptJSON(raw, &result); err != nil {
		return nil, err
	}
	if len(result.Segments) == 0 {
		return nil, fmt.Errorf("%w: no segments in response", ErrMalformedResponse)
	}

	result.Theme = theme
	result.TotalDuration = totalDuration
	return &result, nil
}

func buildPrompt(pillar, theme string, numSegments, segmentDuration int) string {
	context := pillarContext[pillar]
	if context == "" {
		context = "tech/dev content"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate a script for a %d second Reels/TikTok video.\n\n", numSegments*segmentDuration)
	fmt.Fprintf(&sb, "Pillar: %s (%s)\n", pillar, context)
	fmt.Fprintf(&sb, "Theme: %s\n\n", theme)
	fmt.Fprintf(&sb, "Requirements:\n")
	fmt.Fprintf(&sb, "- Split into exactly %d segments of %d seconds each\n", numSegments, segmentDuration)
	sb.WriteString("- Each segment must be coherent and visual\n")
	sb.WriteString("- Narrative structure: Hook -> Problem/Context -> Solution/Demo -> CTA\n\n")
	sb.WriteString("For EACH segment provide:\n")
	fmt.Fprintf(&sb, "1. \"text\": the words to speak (at most %d seconds of speech)\n", segmentDuration)
	sb.WriteString("2. \"prompt\": a video-generation prompt (concrete cinematic visual description;\n")
	sb.WriteString("   avoid on-screen text or code; prefer faces, gestures, objects, environments;\n")
	sb.WriteString("   style like \"Close-up of...\", \"Dynamic shot of...\", \"Cinematic view of...\")\n\n")
	sb.WriteString("Respond with ONLY this JSON, no markdown, no explanation:\n")
	fmt.Fprintf(&sb, `{
  "segments": [
    {"order": 1, "duration": %d, "text": "...", "prompt": "...", "timing": "0-%ds"}
  ],
  "voiceover": "full voice-over text, all segments joined",
  "hashtags": ["#python", "#dev", "#tips"],
  "caption": "engaging Instagram/TikTok caption"
}`, segmentDuration, segmentDuration)
	return sb.String()
}

func (g *Generator) generateWithAnthropic(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model":      g.model,
		"max_tokens": 2000,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         g.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := g.post(ctx, "/v1/messages", headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrMalformedResponse)
	}
	return resp.Content[0].Text, nil
}

func (g *Generator) generateWithOpenAI(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "system", "content": "You are an expert viral short-video scriptwriter. Respond only with valid JSON."},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + g.apiKey}
	if err := g.post(ctx, "/v1/chat/completions", headers, payload, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Generator) post(ctx context.Context, path string, headers map[string]string, payload, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrBusy
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("generation request: unexpected status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeScriptJSON parses the backend text. Models sometimes wrap the JSON in
// markdown fences or preamble; one extraction attempt is made before giving
// up. No retry beyond that.
func decodeScriptJSON(raw string, out *Script) error {
	text := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(text), out); err == nil {
		return nil
	}

	extracted := extractJSON(text)
	if extracted == "" {
		return fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(extracted), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// extractJSON pulls a JSON object out of surrounding text: fenced code block
// first, then outermost braces.
func extractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return text[start : end+1]
	}
	return ""
}
