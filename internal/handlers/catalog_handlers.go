package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/DJIMIGA/latigue/internal/utils"
	"github.com/DJIMIGA/latigue/internal/videogen"
)

// ListTemplates returns the configured project templates.
// GET /api/v1/templates
func (h *ApplicationHandler) ListTemplates(c *fiber.Ctx) error {
	names := make([]string, 0, len(h.Templates))
	for name := range h.Templates {
		names = append(names, name)
	}
	sort.Strings(names)

	list := make([]interface{}, 0, len(names))
	for _, name := range names {
		list = append(list, h.Templates[name])
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}

// ProviderInfo describes one registered video backend.
type ProviderInfo struct {
	Name          string  `json:"name"`
	RatePerSecond float64 `json:"rate_per_second"`
	Configured    bool    `json:"configured"`
}

// ListProviders returns the registered video backends with their rates and
// whether an API key is configured.
// GET /api/v1/providers
func (h *ApplicationHandler) ListProviders(c *fiber.Ctx) error {
	list := make([]ProviderInfo, 0)
	for _, name := range videogen.Names() {
		list = append(list, ProviderInfo{
			Name:          name,
			RatePerSecond: videogen.RatePerSecond(name),
			Configured:    h.Cfg.ProviderKey(name) != "",
		})
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, list)
}
