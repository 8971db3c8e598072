package videogen

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/DJIMIGA/latigue/internal/models"
)

// Result is the normalized answer from any video backend. Submission and
// polling failures are carried in Status/ErrorMessage rather than a Go error:
// the segment processor treats them as terminal segment states, not as
// conditions to bubble up.
type Result struct {
	JobID        string
	Status       models.SegmentStatus
	VideoURL     string
	Progress     int // 0-100, last observed value
	ErrorMessage string
	Metadata     map[string]interface{}
}

// Request describes one clip to generate.
type Request struct {
	Prompt      string
	Duration    int    // seconds
	AspectRatio string // e.g. "9:16"
	// Extra carries provider-specific parameters, e.g. a reference image URL
	// and animation prompt for image-to-video generation.
	Extra map[string]interface{}
}

// Provider is the uniform capability contract every video backend implements.
type Provider interface {
	// Name returns the registry name of the backend.
	Name() string
	// GenerateClip submits one generation request without blocking for
	// completion. On failure the result has Status failed and an error text.
	GenerateClip(ctx context.Context, req Request) Result
	// GetStatus polls the backend. Safe to call repeatedly.
	GetStatus(ctx context.Context, jobID string) Result
	// EstimateCost is a pure function of duration and the backend's
	// per-second rate. No network call.
	EstimateCost(durationSeconds int) float64
	// CancelJob is best effort; backends without cancellation return false.
	CancelJob(ctx context.Context, jobID string) bool
}

// Constructor builds a provider from its API key.
type Constructor func(apiKey string) Provider

var registry = map[string]Constructor{
	"luma":      func(key string) Provider { return NewLuma(key) },
	"runway":    func(key string) Provider { return NewRunway(key) },
	"pika":      func(key string) Provider { return NewPika(key) },
	"stability": func(key string) Provider { return NewStability(key) },
}

// Register adds a backend constructor under a name. Existing names are
// overwritten, which tests rely on.
func Register(name string, c Constructor) {
	registry[strings.ToLower(name)] = c
}

// Names lists the registered backend names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates a registered backend. A missing API key is a configuration
// error and fails here, before any segment is submitted.
func New(name, apiKey string) (Provider, error) {
	name = strings.ToLower(name)
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown video provider %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key for video provider %q: set %s_API_KEY", name, strings.ToUpper(name))
	}
	return ctor(apiKey), nil
}

// noCancel provides the default best-effort cancellation: none.
type noCancel struct{}

func (noCancel) CancelJob(ctx context.Context, jobID string) bool { return false }

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
