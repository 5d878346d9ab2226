package models

import "time"

type WatermarkJobRequest struct {
	ImageURL    string                 `json:"image_url"`
	StoragePath string                 `json:"storage_path"`
	Options     *WatermarkOptionsInput `json:"options,omitempty"`
	PlanID      string                 `json:"plan_id,omitempty"`
}

type ProcessingJob struct {
	ID          string           `json:"id"`
	ImageURL    string           `json:"image_url,omitempty"`
	StoragePath string           `json:"storage_path,omitempty"`
	Options     WatermarkOptions `json:"options"`
	PlanID      string           `json:"plan_id,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	Result      *ProcessedImage  `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Source returns the location the job reads its image from.
func (j *ProcessingJob) Source() string {
	if j.StoragePath != "" {
		return j.StoragePath
	}
	return j.ImageURL
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
