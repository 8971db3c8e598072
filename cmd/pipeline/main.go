// Command pipeline runs one full production end to end from the terminal:
// script, segment generation, assembly, upload.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/pipeline"
	"github.com/DJIMIGA/latigue/internal/storage"
	"github.com/DJIMIGA/latigue/internal/store"
)

func main() {
	theme := flag.String("theme", "", "video theme (required)")
	pillar := flag.String("pillar", "education", "content pillar: education, demo, story, tips")
	duration := flag.Int("duration", 30, "total video duration in seconds")
	segmentDuration := flag.Int("segment-duration", 5, "duration of each segment in seconds")
	provider := flag.String("provider", "", "video backend: luma, runway, pika, stability")
	aiProvider := flag.String("ai-provider", "", "script backend: anthropic or openai")
	template := flag.String("template", "", "project template name")
	parallel := flag.Bool("parallel", false, "submit all segments before polling")
	noVoiceover := flag.Bool("no-voiceover", false, "skip voice-over synthesis")
	noSubtitles := flag.Bool("no-subtitles", false, "skip caption overlay")
	output := flag.String("output", "output", "directory for the final video")
	flag.Parse()

	if *theme == "" {
		fmt.Fprintln(os.Stderr, "error: -theme is required")
		flag.Usage()
		os.Exit(2)
	}

	// Only flags the user actually passed override the template config.
	var parallelOpt, voiceoverOpt, subtitlesOpt *bool
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "parallel":
			parallelOpt = parallel
		case "no-voiceover":
			v := !*noVoiceover
			voiceoverOpt = &v
		case "no-subtitles":
			v := !*noSubtitles
			subtitlesOpt = &v
		}
	})

	_ = godotenv.Load()
	cfg := config.LoadSettings()
	ctx := context.Background()

	var st store.Store
	if err := cfg.RequireSupabase(); err == nil {
		pg, err := store.NewPostgrest(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			fatal(err)
		}
		st = pg
	} else {
		config.Log.Warn("Supabase credentials missing, job records stay in memory")
		st = store.NewMemory()
	}

	var objStore *storage.Client
	if client, err := storage.NewClient(ctx, *cfg); err != nil {
		config.Log.WithField("error", err.Error()).Warn("Object storage unavailable, keeping final video on local disk")
	} else {
		objStore = client
	}

	templatesPath := os.Getenv("TEMPLATES_FILE")
	if templatesPath == "" {
		templatesPath = "templates.yaml"
	}
	templates, err := config.LoadTemplates(templatesPath)
	if err != nil {
		fatal(err)
	}

	pl := pipeline.New(cfg, st, objStore, templates)

	fmt.Printf("Producing %q (%s, %ds)...\n", *theme, *pillar, *duration)
	job, err := pl.Run(ctx, pipeline.Request{
		Theme:           *theme,
		Pillar:          *pillar,
		TemplateName:    *template,
		Duration:        *duration,
		SegmentDuration: *segmentDuration,
		Provider:        *provider,
		AIProvider:      *aiProvider,
		Parallel:        parallelOpt,
		Voiceover:       voiceoverOpt,
		Subtitles:       subtitlesOpt,
		OutputDir:       *output,
	})
	if err != nil {
		if job != nil {
			fmt.Fprintf(os.Stderr, "production failed (job %s): %v\n", job.ID, err)
		} else {
			fmt.Fprintf(os.Stderr, "production failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Done: job %s is %s\n", job.ID, job.Status)
	if job.Status == models.JobStatusCompleted {
		if job.FinalVideoURL != nil {
			fmt.Printf("  video: %s\n", *job.FinalVideoURL)
		}
		fmt.Printf("  estimated cost: $%.2f, actual cost: $%.2f\n", job.EstimatedCost, job.ActualCost)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
