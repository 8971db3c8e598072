package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/handlers"
	"github.com/DJIMIGA/latigue/internal/middleware"
	"github.com/DJIMIGA/latigue/internal/pipeline"
	"github.com/DJIMIGA/latigue/internal/storage"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/worker"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.LoadSettings()
	log := config.Log

	var st store.Store
	if err := cfg.RequireSupabase(); err == nil {
		pg, err := store.NewPostgrest(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			log.Fatalf("Failed to initialize persistence: %v", err)
		}
		st = pg
	} else {
		log.Warn("Supabase credentials missing, using in-memory store (records are lost on restart)")
		st = store.NewMemory()
	}

	ctx := context.Background()
	var objStore *storage.Client
	if client, err := storage.NewClient(ctx, *cfg); err != nil {
		log.WithField("error", err.Error()).Warn("Object storage unavailable, final videos stay on local disk")
	} else {
		objStore = client
	}

	templatesPath := os.Getenv("TEMPLATES_FILE")
	if templatesPath == "" {
		templatesPath = "templates.yaml"
	}
	templates, err := config.LoadTemplates(templatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	pl := pipeline.New(cfg, st, objStore, templates)

	dispatcher := worker.NewDispatcher(2, 16)
	dispatcher.Run()

	h := handlers.NewApplicationHandler(cfg, st, pl, dispatcher, templates)

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Video production service is healthy",
		})
	})

	apiV1 := app.Group("/api/v1")

	apiV1.Post("/jobs", h.CreateJob)
	apiV1.Get("/jobs", h.ListJobs)
	apiV1.Get("/jobs/:jobId", h.GetJob)
	apiV1.Post("/jobs/:jobId/start", h.StartJob)
	apiV1.Post("/jobs/:jobId/pause", h.PauseJob)
	apiV1.Post("/jobs/:jobId/resume", h.ResumeJob)
	apiV1.Get("/jobs/:jobId/progress", h.GetJobProgress)

	apiV1.Get("/jobs/:jobId/segments", h.ListSegments)
	apiV1.Patch("/jobs/:jobId/segments/:order", h.UpdateSegment)
	apiV1.Post("/jobs/:jobId/segments/:order/regenerate", h.RegenerateSegment)
	apiV1.Post("/jobs/:jobId/segments/:order/cancel", h.CancelSegment)
	apiV1.Post("/jobs/:jobId/segments/:order/image", h.GenerateSegmentAsset)

	apiV1.Post("/jobs/:jobId/assets", h.UpsertAsset)
	apiV1.Get("/jobs/:jobId/assets", h.ListAssets)

	apiV1.Post("/jobs/:jobId/publications", h.CreatePublication)
	apiV1.Get("/jobs/:jobId/publications", h.ListPublications)
	apiV1.Patch("/jobs/:jobId/publications/:pubId", h.UpdatePublication)

	apiV1.Get("/templates", h.ListTemplates)
	apiV1.Get("/providers", h.ListProviders)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	log.WithField("addr", cfg.ListenAddr).Info("Starting video production service")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
