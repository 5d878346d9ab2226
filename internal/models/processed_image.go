package models

import "time"

type ProcessedImage struct {
	ID          string    `json:"id"`
	OriginalURL string    `json:"original_url"`
	ProcessedAt time.Time `json:"processed_at"`
	URL         string    `json:"url"`
	FileSize    int64     `json:"file_size"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Format      string    `json:"format"`
	Watermarked bool      `json:"watermarked"`
}

const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)
