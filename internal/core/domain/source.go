package domain

import "time"

// MediaKind is the format of a primary source.
type MediaKind string

// Media kinds known to the catalog.
const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
	MediaVideo    MediaKind = "video"
)

// IsValid returns true if the media kind is recognised.
func (k MediaKind) IsValid() bool {
	switch k {
	case MediaImage, MediaDocument, MediaVideo:
		return true
	default:
		return false
	}
}

// SourceRecord is catalog metadata for one primary source.
// ID is the catalog identifier, unique within a catalog.
type SourceRecord struct {
	ID              string    `json:"id"`
	Kind            MediaKind `json:"kind"`
	DenshoID        string    `json:"densho_id,omitempty"`
	Caption         string    `json:"caption,omitempty"`
	CaptionExtended string    `json:"caption_extended,omitempty"`
	Courtesy        string    `json:"courtesy,omitempty"`
	DisplayURL      string    `json:"display_url,omitempty"`
	OriginalURL     string    `json:"original_url,omitempty"`
	StreamingURL    string    `json:"streaming_url,omitempty"`
	ExternalURL     string    `json:"external_url,omitempty"`
	AspectRatio     string    `json:"aspect_ratio,omitempty"`
	CreativeCommons bool      `json:"creative_commons"`
	Published       bool      `json:"published"`
	Modified        time.Time `json:"modified"`
}
