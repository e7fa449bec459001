package models

import "time"

// Video is the durable record for one processed upload. Path fields are
// stored relative to the media root; handlers substitute absolute URLs when
// responding. Thumbnail and preview paths are empty when generation was
// skipped or failed.
type Video struct {
	ID                string    `json:"id"`
	OriginalName      string    `json:"original_name"`
	OriginalExt       string    `json:"original_ext"`
	MimeType          string    `json:"mime_type"`
	SizeBytes         int64     `json:"size_bytes"`
	DurationSec       float64   `json:"duration_sec"`
	FPS               float64   `json:"fps"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Filter            Filter    `json:"filter"`
	CreatedAt         time.Time `json:"created_at"`
	PathOriginal      string    `json:"path_original"`
	PathProcessed     string    `json:"path_processed"`
	ChecksumMD5       string    `json:"checksum_md5"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	ThumbnailPath     string    `json:"thumbnail_path,omitempty"`
	PreviewGIFPath    string    `json:"preview_gif_path,omitempty"`
}
