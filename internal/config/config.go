package config

import (
	"fmt"
	"os"
	"strings"
)

// Settings holds everything the pipeline reads from the environment.
// API keys stay empty when unset; components that need one fail fast at
// construction time instead of mid-run.
type Settings struct {
	// Video generation backends.
	VideoProvider         string // default backend name (luma|runway|pika|stability)
	VideoProviderFallback string
	ProviderAPIKeys       map[string]string // backend name -> API key

	// Text generation.
	AIProvider      string // anthropic | openai
	AnthropicAPIKey string
	OpenAIAPIKey    string

	// Voice synthesis.
	ElevenLabsAPIKey string
	DefaultVoice     string

	// Object storage (S3 compatible).
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// Job/segment persistence.
	SupabaseURL        string
	SupabaseServiceKey string

	// HTTP server.
	ListenAddr string
}

// LoadSettings reads the environment into a Settings struct. Only defaults are
// applied here; credential presence is validated by the components that use
// them.
func LoadSettings() *Settings {
	s := &Settings{
		VideoProvider:         getenv("VIDEO_PROVIDER", "luma"),
		VideoProviderFallback: os.Getenv("VIDEO_PROVIDER_FALLBACK"),
		ProviderAPIKeys: map[string]string{
			"luma":      os.Getenv("LUMA_API_KEY"),
			"runway":    os.Getenv("RUNWAY_API_KEY"),
			"pika":      os.Getenv("PIKA_API_KEY"),
			"stability": os.Getenv("STABILITY_API_KEY"),
		},
		AIProvider:         getenv("AI_PROVIDER", "anthropic"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		ElevenLabsAPIKey:   os.Getenv("ELEVENLABS_API_KEY"),
		DefaultVoice:       getenv("ELEVENLABS_VOICE", "Adam"),
		MinioEndpoint:      getenv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey:     getenv("MINIO_ROOT_USER", "minioadmin"),
		MinioSecretKey:     getenv("MINIO_ROOT_PASSWORD", "minioadmin123"),
		MinioBucket:        getenv("MINIO_BUCKET_VIDEOS", "marketing-videos"),
		MinioUseSSL:        strings.EqualFold(os.Getenv("MINIO_USE_SSL"), "true"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
	}
	return s
}

// ProviderKey returns the API key configured for a video backend.
func (s *Settings) ProviderKey(name string) string {
	return s.ProviderAPIKeys[strings.ToLower(name)]
}

// RequireSupabase errors when persistence credentials are missing.
func (s *Settings) RequireSupabase() error {
	if s.SupabaseURL == "" || s.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY must be set")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
