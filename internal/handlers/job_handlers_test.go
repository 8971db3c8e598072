package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/pipeline"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/worker"
)

func newTestApp(t *testing.T) (*fiber.App, store.Store) {
	t.Helper()
	cfg := &config.Settings{
		VideoProvider:   "luma",
		AIProvider:      "anthropic",
		DefaultVoice:    "Adam",
		ProviderAPIKeys: map[string]string{"luma": "key"},
	}
	st := store.NewMemory()
	pl := pipeline.New(cfg, st, nil, map[string]models.ProjectTemplate{})
	dispatcher := worker.NewDispatcher(1, 4)
	h := NewApplicationHandler(cfg, st, pl, dispatcher, map[string]models.ProjectTemplate{})

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	apiV1.Post("/jobs", h.CreateJob)
	apiV1.Get("/jobs", h.ListJobs)
	apiV1.Get("/jobs/:jobId", h.GetJob)
	apiV1.Post("/jobs/:jobId/pause", h.PauseJob)
	apiV1.Post("/jobs/:jobId/resume", h.ResumeJob)
	apiV1.Get("/jobs/:jobId/progress", h.GetJobProgress)
	apiV1.Get("/jobs/:jobId/segments", h.ListSegments)
	apiV1.Post("/jobs/:jobId/segments/:order/cancel", h.CancelSegment)
	apiV1.Get("/providers", h.ListProviders)
	return app, st
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatal(err)
	}
	if envelope.Status != "success" {
		t.Fatalf("status = %q, want success", envelope.Status)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatal(err)
	}
}

func TestCreateJobEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/jobs", map[string]interface{}{
		"theme":  "goroutines explained",
		"pillar": "education",
	})
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	var job models.Job
	decodeData(t, resp, &job)
	if job.Status != models.JobStatusDraft {
		t.Errorf("new job status = %s, want draft", job.Status)
	}
	if job.EstimatedCost <= 0 {
		t.Error("estimate should be computed at creation")
	}
	if job.Config.Provider != "luma" {
		t.Errorf("provider = %q, want the configured default", job.Config.Provider)
	}
}

func TestCreateJobValidation(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/jobs", map[string]interface{}{"pillar": "education"})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("missing theme: status = %d, want 400", resp.StatusCode)
	}

	resp = postJSON(t, app, "/api/v1/jobs", map[string]interface{}{
		"theme":  "x",
		"pillar": "gaming",
	})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad pillar: status = %d, want 400", resp.StatusCode)
	}
}

func TestGetJobNotFound(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/nope", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPauseResume(t *testing.T) {
	app, _ := newTestApp(t)

	resp := postJSON(t, app, "/api/v1/jobs", map[string]interface{}{"theme": "pause me"})
	var job models.Job
	decodeData(t, resp, &job)

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/pause", job.ID), nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("pause status = %d", resp.StatusCode)
	}
	var paused models.Job
	decodeData(t, resp, &paused)
	if paused.Status != models.JobStatusPaused {
		t.Errorf("status = %s, want paused", paused.Status)
	}

	resp = postJSON(t, app, fmt.Sprintf("/api/v1/jobs/%s/resume", job.ID), nil)
	var resumed models.Job
	decodeData(t, resp, &resumed)
	if resumed.Status != models.JobStatusDraft {
		t.Errorf("status = %s, want draft after resume", resumed.Status)
	}
}

func TestListProviders(t *testing.T) {
	app, _ := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/providers", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	var providers []ProviderInfo
	decodeData(t, resp, &providers)
	if len(providers) != 4 {
		t.Fatalf("providers = %d, want 4", len(providers))
	}
	for _, p := range providers {
		if p.Name == "luma" && !p.Configured {
			t.Error("luma should report configured with a key set")
		}
		if p.Name == "runway" && p.Configured {
			t.Error("runway should report unconfigured")
		}
		if p.RatePerSecond <= 0 {
			t.Errorf("%s rate = %v", p.Name, p.RatePerSecond)
		}
	}
}
