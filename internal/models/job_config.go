package models

// JobConfig carries per-run generation options. Zero values mean "not set";
// Resolve fills the gaps from the template config and the hard defaults, so
// callers never look at a half-populated struct.
type JobConfig struct {
	Provider        string `json:"provider,omitempty" yaml:"provider,omitempty"`
	AIProvider      string `json:"ai_provider,omitempty" yaml:"ai_provider,omitempty"`
	SegmentsCount   int    `json:"segments_count,omitempty" yaml:"segments_count,omitempty"`
	SegmentDuration int    `json:"segment_duration,omitempty" yaml:"segment_duration,omitempty"`
	AspectRatio     string `json:"aspect_ratio,omitempty" yaml:"aspect_ratio,omitempty"`
	Voice           string `json:"voice,omitempty" yaml:"voice,omitempty"`
	Parallel        *bool  `json:"parallel,omitempty" yaml:"parallel,omitempty"`
	Voiceover       *bool  `json:"voiceover,omitempty" yaml:"voiceover,omitempty"`
	Subtitles       *bool  `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
}

// DefaultJobConfig is the hard default at the bottom of the override chain.
func DefaultJobConfig() JobConfig {
	on := true
	off := false
	return JobConfig{
		Provider:        "luma",
		AIProvider:      "anthropic",
		SegmentsCount:   6,
		SegmentDuration: 5,
		AspectRatio:     "9:16",
		Voice:           "Adam",
		Parallel:        &off,
		Voiceover:       &on,
		Subtitles:       &on,
	}
}

// Resolve merges the config chain: job overrides template, template overrides
// the base layers (environment defaults, then the hard defaults).
func (c JobConfig) Resolve(tmpl *ProjectTemplate, base ...JobConfig) JobConfig {
	out := DefaultJobConfig()
	for _, b := range base {
		out = out.overlay(b)
	}
	if tmpl != nil {
		out = out.overlay(tmpl.DefaultConfig)
		if tmpl.SegmentsCount > 0 {
			out.SegmentsCount = tmpl.SegmentsCount
		}
		if tmpl.SegmentDuration > 0 {
			out.SegmentDuration = tmpl.SegmentDuration
		}
	}
	return out.overlay(c)
}

func (c JobConfig) overlay(over JobConfig) JobConfig {
	if over.Provider != "" {
		c.Provider = over.Provider
	}
	if over.AIProvider != "" {
		c.AIProvider = over.AIProvider
	}
	if over.SegmentsCount > 0 {
		c.SegmentsCount = over.SegmentsCount
	}
	if over.SegmentDuration > 0 {
		c.SegmentDuration = over.SegmentDuration
	}
	if over.AspectRatio != "" {
		c.AspectRatio = over.AspectRatio
	}
	if over.Voice != "" {
		c.Voice = over.Voice
	}
	if over.Parallel != nil {
		c.Parallel = over.Parallel
	}
	if over.Voiceover != nil {
		c.Voiceover = over.Voiceover
	}
	if over.Subtitles != nil {
		c.Subtitles = over.Subtitles
	}
	return c
}

// TotalDuration is the target length implied by the resolved config.
func (c JobConfig) TotalDuration() int {
	return c.SegmentsCount * c.SegmentDuration
}
