package models

import "time"

// Platform names accepted for publications.
var Platforms = []string{"tiktok", "instagram", "facebook", "youtube"}

// ValidPlatform reports whether a platform name is supported.
func ValidPlatform(p string) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Publication records the final video posted to one external platform,
// with analytics counters. One publication per (job, platform).
type Publication struct {
	ID                  string     `json:"id"`
	JobID               string     `json:"job_id"`
	Platform            string     `json:"platform"`
	PlatformPostID      string     `json:"platform_post_id,omitempty"`
	PlatformURL         string     `json:"platform_url,omitempty"`
	Views               int        `json:"views"`
	Likes               int        `json:"likes"`
	Comments            int        `json:"comments"`
	Shares              int        `json:"shares"`
	LastAnalyticsUpdate *time.Time `json:"last_analytics_update,omitempty"`
	ScheduledFor        *time.Time `json:"scheduled_for,omitempty"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
}
