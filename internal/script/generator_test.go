package script

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const sampleJSON = `{
  "segments": [
    {"order": 1, "duration": 5, "text": "Hook line", "prompt": "Close-up of a laptop", "timing": "0-5s"},
    {"order": 2, "duration": 5, "text": "Payoff line", "prompt": "Dynamic shot of code review", "timing": "5-10s"}
  ],
  "voiceover": "Hook line Payoff line",
  "hashtags": ["#dev", "#tips"],
  "caption": "A quick dev tip"
}`

func TestDecodeScriptJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain JSON", sampleJSON},
		{"json fence", "Here is the script:\n```json\n" + sampleJSON + "\n```\nEnjoy!"},
		{"bare fence", "```\n" + sampleJSON + "\n```"},
		{"surrounding prose", "Sure! " + sampleJSON + " Let me know if you need edits."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out Script
			if err := decodeScriptJSON(tt.raw, &out); err != nil {
				t.Fatalf("decodeScriptJSON: %v", err)
			}
			if len(out.Segments) != 2 {
				t.Errorf("segments = %d, want 2", len(out.Segments))
			}
			if out.Caption != "A quick dev tip" {
				t.Errorf("caption = %q", out.Caption)
			}
		})
	}
}

func TestDecodeScriptJSONMalformed(t *testing.T) {
	var out Script
	err := decodeScriptJSON("I cannot generate that script, sorry.", &out)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	if _, err := NewGenerator("gemini", "key"); err == nil {
		t.Error("expected error for unsupported provider")
	}
	if _, err := NewGenerator("anthropic", ""); err == nil {
		t.Error("expected error for missing key")
	}
	g, err := NewGenerator("OpenAI", "key")
	if err != nil {
		t.Fatalf("NewGenerator(OpenAI): %v", err)
	}
	if g.model != openaiModel {
		t.Errorf("model = %q, want %q", g.model, openaiModel)
	}
}

func TestCreateWithAnthropic(t *testing.T) {
	var gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		gotVersion = r.Header.Get("anthropic-version")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": "```json\n" + sampleJSON + "\n```"}},
		})
	}))
	defer srv.Close()

	g, err := NewGenerator("anthropic", "test-key")
	if err != nil {
		t.Fatal(err)
	}
	g.baseURL = srv.URL

	scr, err := g.Create(context.Background(), "tips", "code review habits", 10, 5)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotVersion == "" {
		t.Error("anthropic-version header missing")
	}
	if len(scr.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(scr.Segments))
	}
	if scr.Theme != "code review habits" {
		t.Errorf("Theme = %q", scr.Theme)
	}
	if scr.TotalDuration != 10 {
		t.Errorf("TotalDuration = %d, want 10", scr.TotalDuration)
	}
}

func TestCreateBusy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g, err := NewGenerator("anthropic", "test-key")
	if err != nil {
		t.Fatal(err)
	}
	g.baseURL = srv.URL

	_, err = g.Create(context.Background(), "tips", "anything", 30, 5)
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("err = %v, want ErrBusy", err)
	}
}

func TestCreateEmptySegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"text": `{"segments": [], "voiceover": "", "hashtags": [], "caption": ""}`}},
		})
	}))
	defer srv.Close()

	g, err := NewGenerator("anthropic", "test-key")
	if err != nil {
		t.Fatal(err)
	}
	g.baseURL = srv.URL

	_, err = g.Create(context.Background(), "tips", "anything", 30, 5)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestBuildPromptSegmentCount(t *testing.T) {
	prompt := buildPrompt("education", "goroutines", 6, 5)
	if !strings.Contains(prompt, "exactly 6 segments of 5 seconds") {
		t.Errorf("prompt should pin the segment split:\n%s", prompt)
	}
	if !strings.Contains(prompt, "goroutines") {
		t.Error("prompt should include the theme")
	}
}
