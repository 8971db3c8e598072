package models

import (
	"encoding/json"
	"time"
)

// AssetType classifies a user-supplied reference asset.
type AssetType string

const (
	AssetTypeImage      AssetType = "image"
	AssetTypeVideo      AssetType = "video"
	AssetTypeScreenshot AssetType = "screenshot"
	AssetTypeGenerated  AssetType = "generated"
)

// SegmentAsset is an optional reference image/video bound to one segment
// index, used for image-to-video style generation. At most one asset exists
// per (job, segment index).
type SegmentAsset struct {
	ID              string          `json:"id"`
	JobID           string          `json:"job_id"`
	SegmentIndex    int             `json:"segment_index"`
	AssetType       AssetType       `json:"asset_type"`
	URL             string          `json:"url"`
	AnimationPrompt string          `json:"animation_prompt,omitempty"`
	Metadata        json.RawMessage `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at,omitempty"`
}
