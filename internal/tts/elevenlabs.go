// Package tts synthesizes voice-over audio through the ElevenLabs API.
package tts

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
	defaultBaseURL = "https://api.elevenlabs.io"
	defaultModelID = "eleven_multilingual_v2"

	// Flat published rate used for pre-flight cost estimates.
	costPerThousandChars = 0.30
)

// Known voice names mapped to ElevenLabs voice ids. Unknown names are passed
// through unchanged so raw voice ids keep working.
var voiceIDs = map[string]string{
	"Adam":   "pNInz6obpgDQGcFmaJgB",
	"Rachel": "21m00Tcm4TlvDq8ikWAM",
	"Antoni": "ErXwobaYiN019PkySvjV",
	"Bella":  "EXAVITQu4vr4xnSDxMaL",
	"Josh":   "TxGEqnHWrfWFTfGW9XjX",
}

// Client calls the ElevenLabs text-to-speech endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a TTS client. A missing key fails immediately so a job
// never reaches the voice-over stage unconfigured.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing ElevenLabs API key: set ELEVENLABS_API_KEY")
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Synthesize converts text to MP3 audio with the named voice and returns the
// raw bytes. The caller decides where to write them.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text for voice synthesis")
	}

	voiceID := voiceIDs[voice]
	if voiceID == "" {
		voiceID = voice
	}

	payload := map[string]interface{}{
		"text":     text,
		"model_id": defaultModelID,
		"voice_settings": map[string]float64{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts request: status %d: %s", resp.StatusCode, string(body))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("tts returned empty audio")
	}
	return audio, nil
}

// EstimateCost is a pure character-count estimate in dollars, rounded to
// cents. No network call.
func EstimateCost(text string) float64 {
	cost := float64(len(text)) / 1000 * costPerThousandChars
	return math.Round(cost*100) / 100
}
