// Package handlers exposes the production pipeline over HTTP.
package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/pipeline"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/worker"
)

// ApplicationHandler holds the shared dependencies for all routes.
type ApplicationHandler struct {
	Cfg        *config.Settings
	Store      store.Store
	Pipeline   *pipeline.Pipeline
	Dispatcher *worker.Dispatcher
	Templates  map[string]models.ProjectTemplate
	Logger     *logrus.Logger
	Validate   *validator.Validate
}

// NewApplicationHandler wires the handler dependencies.
func NewApplicationHandler(cfg *config.Settings, st store.Store, pl *pipeline.Pipeline, d *worker.Dispatcher, templates map[string]models.ProjectTemplate) *ApplicationHandler {
	return &ApplicationHandler{
		Cfg:        cfg,
		Store:      st,
		Pipeline:   pl,
		Dispatcher: d,
		Templates:  templates,
		Logger:     config.Log,
		Validate:   validator.New(),
	}
}
