package models

import "time"

type BatchImage struct {
	Data     []byte `json:"-"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
	Applied  bool   `json:"applied"`
	Error    string `json:"error,omitempty"`
}

type ImageResponse struct {
	Filename    string    `json:"filename"`
	Image       string    `json:"image,omitempty"`
	URL         string    `json:"url,omitempty"`
	FileSize    int64     `json:"file_size"`
	Applied     bool      `json:"applied"`
	ProcessedAt time.Time `json:"processed_at"`
	Error       string    `json:"error,omitempty"`
}

type BatchResponse struct {
	Images []ImageResponse `json:"images"`
	Failed int             `json:"failed"`
}

type UploadFile struct {
	Data        []byte
	Filename    string
	ContentType string
}
