// Package pipeline runs the full production flow: script, segments, assembly,
// upload, persisted job record. It is shared by the CLI and the job worker.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DJIMIGA/latigue/internal/assembler"
	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/script"
	"github.com/DJIMIGA/latigue/internal/segments"
	"github.com/DJIMIGA/latigue/internal/storage"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/tts"
	"github.com/DJIMIGA/latigue/internal/videogen"
)

// Request describes one production run. Zero values fall back to the job
// config merge chain (request overrides template overrides defaults).
type Request struct {
	Title           string
	Theme           string
	Pillar          string
	TemplateName    string
	Duration        int // total seconds
	SegmentDuration int
	Provider        string
	AIProvider      string
	Parallel        *bool // nil leaves the template/default choice in place
	Voiceover       *bool
	Subtitles       *bool
	OutputDir       string
	CreatedBy       string
}

// Pipeline wires the production stages together. Storage may be nil; the
// final video then stays on local disk only.
type Pipeline struct {
	cfg       *config.Settings
	store     store.Store
	storage   *storage.Client
	templates map[string]models.ProjectTemplate

	// Overridable for tests.
	NewProcessor func(st store.Store, provider videogen.Provider) *segments.Processor
	NewAssembler func(st store.Store, ttsClient *tts.Client) *assembler.Assembler
}

// New builds a pipeline over the given store and optional object storage.
func New(cfg *config.Settings, st store.Store, objStore *storage.Client, templates map[string]models.ProjectTemplate) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		store:     st,
		storage:   objStore,
		templates: templates,
	}
	p.NewProcessor = segments.NewProcessor
	p.NewAssembler = assembler.New
	return p
}

// Run executes the whole production flow and returns the finished job record.
// The job is persisted at every stage boundary, so a crash leaves a record in
// the stage it died in.
func (p *Pipeline) Run(ctx context.Context, req Request) (*models.Job, error) {
	job, err := p.CreateJob(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.RunJob(ctx, job, req); err != nil {
		return job, err
	}
	return job, nil
}

// CreateJob validates the request, resolves configuration and persists the
// initial draft record with its cost estimate.
func (p *Pipeline) CreateJob(ctx context.Context, req Request) (*models.Job, error) {
	if req.Theme == "" {
		return nil, fmt.Errorf("theme is required")
	}
	if req.Pillar != "" && !models.ValidPillar(req.Pillar) {
		return nil, fmt.Errorf("unknown pillar %q (one of: %v)", req.Pillar, models.ContentPillars)
	}

	var tmpl *models.ProjectTemplate
	if req.TemplateName != "" {
		t, ok := p.templates[req.TemplateName]
		if !ok {
			return nil, fmt.Errorf("unknown template %q", req.TemplateName)
		}
		tmpl = &t
		if req.Pillar == "" {
			req.Pillar = t.Pillar
		}
	}
	if req.Pillar == "" {
		req.Pillar = "education"
	}

	jobCfg := p.buildJobConfig(req).Resolve(tmpl, p.settingsConfig())

	duration := req.Duration
	if duration <= 0 {
		duration = jobCfg.TotalDuration()
	} else {
		jobCfg.SegmentsCount = duration / jobCfg.SegmentDuration
	}

	title := req.Title
	if title == "" {
		title = req.Theme
	}

	job := &models.Job{
		ID:              uuid.NewString(),
		Title:           title,
		Theme:           req.Theme,
		Pillar:          req.Pillar,
		Config:          jobCfg,
		Status:          models.JobStatusDraft,
		DurationSeconds: &duration,
		EstimatedCost:   videogen.EstimateJobCost(jobCfg.Provider, jobCfg.SegmentsCount, jobCfg.SegmentDuration),
	}
	if req.TemplateName != "" {
		job.TemplateName = &req.TemplateName
	}
	if req.CreatedBy != "" {
		job.CreatedBy = &req.CreatedBy
	}

	if err := p.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	config.Log.WithFields(map[string]interface{}{
		"job_id":         job.ID,
		"theme":          job.Theme,
		"pillar":         job.Pillar,
		"estimated_cost": job.EstimatedCost,
	}).Info("Created production job")
	return job, nil
}

// RunJob drives an already-created job through every remaining stage.
func (p *Pipeline) RunJob(ctx context.Context, job *models.Job, req Request) error {
	scr, err := p.generateScript(ctx, job)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	provider, err := p.resolveProvider(job.Config.Provider)
	if err != nil {
		return p.fail(ctx, job, err)
	}

	proc := p.NewProcessor(p.store, provider)
	if _, err := proc.CreateSegments(ctx, job, scr); err != nil {
		return p.fail(ctx, job, err)
	}

	parallel := job.Config.Parallel != nil && *job.Config.Parallel
	finished, err := proc.GenerateAll(ctx, job, parallel)
	if errors.Is(err, segments.ErrJobPaused) {
		// Not a failure; the job keeps its paused status for a later resume.
		return err
	}
	if err != nil {
		return p.fail(ctx, job, err)
	}
	for _, seg := range finished {
		if seg.Status != models.SegmentStatusCompleted {
			// GenerateAll already moved the job to error.
			return fmt.Errorf("segment generation failed: segment %d is %s", seg.Order, seg.Status)
		}
	}

	voiceover := job.Config.Voiceover == nil || *job.Config.Voiceover
	subtitles := job.Config.Subtitles == nil || *job.Config.Subtitles

	var ttsClient *tts.Client
	if voiceover {
		ttsClient, err = tts.NewClient(p.cfg.ElevenLabsAPIKey)
		if err != nil {
			return p.fail(ctx, job, err)
		}
	}
	asm := p.NewAssembler(p.store, ttsClient)
	out, err := asm.Assemble(ctx, job, assembler.Options{
		Voiceover: voiceover,
		Subtitles: subtitles,
		Voice:     job.Config.Voice,
		OutputDir: req.OutputDir,
	})
	if err != nil {
		// Assemble already recorded the error on the job.
		return err
	}

	return p.finalize(ctx, job, out, finished)
}

func (p *Pipeline) generateScript(ctx context.Context, job *models.Job) (*script.Script, error) {
	if err := p.store.SetJobStatus(ctx, job.ID, models.JobStatusScriptPending, ""); err != nil {
		return nil, err
	}

	gen, err := script.NewGenerator(job.Config.AIProvider, p.aiKey(job.Config.AIProvider))
	if err != nil {
		return nil, err
	}

	duration := job.Config.TotalDuration()
	if job.DurationSeconds != nil && *job.DurationSeconds > 0 {
		duration = *job.DurationSeconds
	}
	scr, err := gen.Create(ctx, job.Pillar, job.Theme, duration, job.Config.SegmentDuration)
	if err != nil {
		return nil, fmt.Errorf("script generation: %w", err)
	}

	raw, err := json.Marshal(scr)
	if err != nil {
		return nil, fmt.Errorf("marshal script: %w", err)
	}
	job.ScriptJSON = raw
	job.Caption = scr.Caption
	job.Hashtags = strings.Join(scr.Hashtags, " ")
	job.Status = models.JobStatusScriptReady
	if err := p.store.UpdateJob(ctx, job); err != nil {
		return nil, err
	}

	config.Log.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"segments": len(scr.Segments),
	}).Info("Script ready")
	return scr, nil
}

// resolveProvider constructs the configured backend, falling back to the
// secondary backend when the primary has no key or is unknown.
func (p *Pipeline) resolveProvider(name string) (videogen.Provider, error) {
	provider, err := videogen.New(name, p.cfg.ProviderKey(name))
	if err == nil {
		return provider, nil
	}
	if fb := p.cfg.VideoProviderFallback; fb != "" && fb != name {
		config.Log.WithFields(map[string]interface{}{
			"primary":  name,
			"fallback": fb,
			"error":    err.Error(),
		}).Warn("Primary video backend unavailable, using fallback")
		return videogen.New(fb, p.cfg.ProviderKey(fb))
	}
	return nil, err
}

func (p *Pipeline) finalize(ctx context.Context, job *models.Job, out *assembler.Output, finished []models.Segment) error {
	videoCost := 0.0
	for _, seg := range finished {
		videoCost += seg.Cost
	}
	actual := videoCost + videogen.ScriptFlatCost() + out.VoiceCost

	if p.storage != nil {
		key, err := p.storage.UploadFile(ctx, job.ID, storage.CategoryFinal, out.Path)
		if err != nil {
			return p.fail(ctx, job, fmt.Errorf("upload final video: %w", err))
		}
		job.StoragePath = &key
		url, err := p.storage.PresignedURL(ctx, key, 7*24*time.Hour)
		if err == nil {
			job.FinalVideoURL = &url
		}
	} else {
		job.FinalVideoURL = &out.Path
	}

	seconds := int(out.Duration.Seconds())
	job.DurationSeconds = &seconds
	job.FileSizeMB = &out.FileSizeMB
	if out.Metadata != nil {
		if raw, err := json.Marshal(out.Metadata); err == nil {
			job.VideoMetadata = raw
		}
	}
	job.ActualCost = actual
	job.ProgressPercent = 100
	job.Status = models.JobStatusCompleted
	if err := p.store.UpdateJob(ctx, job); err != nil {
		return err
	}

	config.Log.WithFields(map[string]interface{}{
		"job_id":      job.ID,
		"actual_cost": actual,
		"duration_s":  seconds,
	}).Info("Production complete")
	return nil
}

func (p *Pipeline) fail(ctx context.Context, job *models.Job, cause error) error {
	if err := p.store.SetJobStatus(ctx, job.ID, models.JobStatusError, cause.Error()); err != nil {
		config.Log.WithFields(map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		}).Error("Failed to record job error")
	}
	return cause
}

func (p *Pipeline) buildJobConfig(req Request) models.JobConfig {
	return models.JobConfig{
		Provider:        req.Provider,
		AIProvider:      req.AIProvider,
		SegmentDuration: req.SegmentDuration,
		Parallel:        req.Parallel,
		Voiceover:       req.Voiceover,
		Subtitles:       req.Subtitles,
	}
}

// settingsConfig is the environment-level default layer; it sits below
// templates in the override chain.
func (p *Pipeline) settingsConfig() models.JobConfig {
	return models.JobConfig{
		Provider:   p.cfg.VideoProvider,
		AIProvider: p.cfg.AIProvider,
		Voice:      p.cfg.DefaultVoice,
	}
}

func (p *Pipeline) aiKey(provider string) string {
	switch provider {
	case "openai":
		return p.cfg.OpenAIAPIKey
	default:
		return p.cfg.AnthropicAPIKey
	}
}
