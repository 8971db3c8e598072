package models

// ProjectTemplate is a reusable project definition: segment structure plus a
// default config that jobs can override field by field.
type ProjectTemplate struct {
	Name            string    `json:"name" yaml:"name"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	Pillar          string    `json:"pillar" yaml:"pillar"`
	SegmentsCount   int       `json:"segments_count" yaml:"segments_count"`
	SegmentDuration int       `json:"segment_duration" yaml:"segment_duration"`
	DefaultConfig   JobConfig `json:"default_config" yaml:"default_config"`
	IsActive        bool      `json:"is_active" yaml:"is_active"`
}
