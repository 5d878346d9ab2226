package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/internal/services/storage"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

// encodeResult serializes results for the cache.
var encodeResult = json.Marshal

func (q *QueueService) processJob(ctx context.Context, job *models.ProcessingJob) (*models.ProcessedImage, error) {
	stamp := job.PlanID == "" || processor.ShouldWatermark(job.PlanID)

	cacheKey := storage.GenerateCacheKey(fmt.Sprintf("%s|stamp=%t", job.Source(), stamp), job.Options)

	cachedData, err := q.store.GetFromCache(ctx, cacheKey)
	if err == nil && cachedData != nil {
		var cachedResult models.ProcessedImage
		if err := json.Unmarshal(cachedData, &cachedResult); err != nil {
			q.logger.Warn("Failed to unmarshal cached data", zap.Error(err))
		} else {
			q.logger.Info("Cache hit", zap.String("job_id", job.ID))
			cachedResult.ID = job.ID
			return &cachedResult, nil
		}
	}

	imageData, err := q.loadSource(ctx, job)
	if err != nil {
		return nil, err
	}

	out := processor.Output{Data: imageData}
	if stamp {
		out = q.processor.Apply(imageData, job.Options)
	}
	if out.MimeType == "" {
		out.MimeType = processor.SniffMimeType(imageData)
	}

	filename := utils.GenerateFilename(job.ID, utils.ExtensionFor(out.MimeType))
	processedURL, err := q.store.Upload(ctx, out.Data, filename, out.MimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to save watermarked image: %w", err)
	}

	result := &models.ProcessedImage{
		ID:          job.ID,
		OriginalURL: job.Source(),
		ProcessedAt: time.Now(),
		URL:         processedURL,
		FileSize:    int64(len(out.Data)),
		Width:       out.Width,
		Height:      out.Height,
		Format:      utils.ExtensionFor(out.MimeType),
		Watermarked: out.Applied,
	}

	resultBytes, err := encodeResult(result)
	if err != nil {
		q.logger.Warn("Failed to marshal result for cache", zap.String("job_id", job.ID), zap.Error(err))
		return result, nil
	}
	if err := q.store.SetCache(ctx, cacheKey, resultBytes); err != nil {
		q.logger.Warn("Failed to cache result", zap.Error(err))
	}

	return result, nil
}

func (q *QueueService) loadSource(ctx context.Context, job *models.ProcessingJob) ([]byte, error) {
	if job.StoragePath != "" {
		data, err := q.store.Download(ctx, job.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to download image: %w", err)
		}
		return data, nil
	}

	src, err := q.processor.ResolveSource(ctx, job.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	return src.Data, nil
}
