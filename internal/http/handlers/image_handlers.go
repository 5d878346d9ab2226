package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/internal/services/storage"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

const (
	imageParamKey  = "image"
	imagesParamKey = "images"
	maxBatchSize   = 20
)

// ResultStore persists watermarked outputs and job state.
type ResultStore interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
	UploadMultiple(ctx context.Context, files []models.UploadFile) ([]string, error)
	SaveJob(ctx context.Context, job *models.ProcessingJob) error
	GetJob(ctx context.Context, id string) (*models.ProcessingJob, error)
	HealthCheck(ctx context.Context) map[string]string
	GetCacheStats(ctx context.Context) (map[string]interface{}, error)
}

// JobPublisher hands jobs to the asynchronous workers.
type JobPublisher interface {
	PublishJob(ctx context.Context, job *models.ProcessingJob) error
	GetQueueStats() (map[string]interface{}, error)
	HealthCheck() string
}

type ImageHandler struct {
	processor *processor.ImageProcessor
	storage   ResultStore
	queue     JobPublisher
	logger    *zap.Logger
	config    *config.Config
}

// NewImageHandler wires the handler. storage and queue may be nil, in which
// case the endpoints depending on them answer 503.
func NewImageHandler(
	processor *processor.ImageProcessor,
	storage ResultStore,
	queue JobPublisher,
	logger *zap.Logger,
	config *config.Config,
) *ImageHandler {
	return &ImageHandler{
		processor: processor,
		storage:   storage,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

// Watermark stamps an inline data URL or remote image and answers with an
// inline data URL.
func (h *ImageHandler) Watermark(c *gin.Context) {
	var req models.WatermarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if err := validateOptions(req.Options); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	opts := h.processor.Options(req.Options)

	ctx := c.Request.Context()

	var (
		out processor.Output
		err error
	)
	if req.PlanID != "" && !processor.ShouldWatermark(req.PlanID) {
		out, err = h.passThrough(ctx, req.Image)
	} else {
		out, err = h.processor.Process(ctx, req.Image, opts)
	}
	if err != nil {
		h.respondSourceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.WatermarkResponse{
			Image:   utils.ToInline(out.Data, out.MimeType),
			Applied: out.Applied,
			Width:   out.Width,
			Height:  out.Height,
			Format:  utils.ExtensionFor(out.MimeType),
		},
	})
}

// UploadWatermark stamps a single multipart upload. The image bytes are
// returned directly unless ?upload=true asks for a stored copy.
func (h *ImageHandler) UploadWatermark(c *gin.Context) {
	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No image file provided")
		return
	}
	defer file.Close()

	data, err := h.readUpload(file)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid image: "+err.Error())
		return
	}

	in, err := parseFormOptions(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	opts := h.processor.Options(in)

	out := processor.Output{Data: data, MimeType: processor.SniffMimeType(data)}
	if planID := c.PostForm("plan_id"); planID == "" || processor.ShouldWatermark(planID) {
		out = h.processor.Apply(data, opts)
	}

	if c.Query("upload") != "true" {
		c.Header("X-Watermark-Applied", boolHeader(out.Applied))
		c.Data(http.StatusOK, out.MimeType, out.Data)
		return
	}

	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Storage is not configured")
		return
	}

	filename := utils.ReplaceExtension(header.Filename, utils.ExtensionFor(out.MimeType))
	url, err := h.storage.Upload(c.Request.Context(), out.Data, filename, out.MimeType)
	if err != nil {
		h.logger.Error("Failed to upload watermarked image", zap.Error(err))
		h.respondError(c, http.StatusBadGateway, "Failed to store image")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.ProcessedImage{
			ID:          uuid.New().String(),
			OriginalURL: header.Filename,
			ProcessedAt: time.Now(),
			URL:         url,
			FileSize:    int64(len(out.Data)),
			Width:       out.Width,
			Height:      out.Height,
			Format:      utils.ExtensionFor(out.MimeType),
			Watermarked: out.Applied,
		},
	})
}

// BatchWatermark stamps several uploads concurrently with the same options.
func (h *ImageHandler) BatchWatermark(c *gin.Context) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	in, err := parseFormOptions(c)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	opts := h.processor.Options(in)

	sources, err := h.readFiles(files)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid image: "+err.Error())
		return
	}

	upload := c.Query("upload") == "true"
	if upload && h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Storage is not configured")
		return
	}

	outputs := h.processor.BatchWatermark(sources, opts)
	response := h.buildBatchResponse(c.Request.Context(), outputs, files, upload)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    response,
	})
}

// CreateJob queues an asynchronous watermark of a remote or stored image.
func (h *ImageHandler) CreateJob(c *gin.Context) {
	var req models.WatermarkJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	if utils.IsInline(req.ImageURL) {
		h.respondError(c, http.StatusBadRequest, "Inline images cannot be queued, use POST /api/v1/watermark instead")
		return
	}
	if req.StoragePath == "" && !utils.IsRemote(req.ImageURL) {
		h.respondError(c, http.StatusBadRequest, "image_url must be an http(s) URL or storage_path must be set")
		return
	}
	if err := validateOptions(req.Options); err != nil {
		h.respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.queue == nil || h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	job := &models.ProcessingJob{
		ID:          uuid.New().String(),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		StoragePath: req.StoragePath,
		Options:     h.processor.Options(req.Options),
		PlanID:      req.PlanID,
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}

	ctx := c.Request.Context()
	if err := h.storage.SaveJob(ctx, job); err != nil {
		h.logger.Error("Failed to save job", zap.String("job_id", job.ID), zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Failed to create job")
		return
	}

	if err := h.queue.PublishJob(ctx, job); err != nil {
		h.logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))
		job.Status = models.StatusFailed
		job.Error = "failed to enqueue job"
		if saveErr := h.storage.SaveJob(ctx, job); saveErr != nil {
			h.logger.Warn("Failed to record job failure", zap.String("job_id", job.ID), zap.Error(saveErr))
		}
		h.respondError(c, http.StatusServiceUnavailable, "Failed to enqueue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// GetJob reports the state of a queued job.
func (h *ImageHandler) GetJob(c *gin.Context) {
	if h.storage == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job store is not available")
		return
	}

	job, err := h.storage.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			h.respondError(c, http.StatusNotFound, "Job not found")
			return
		}
		h.logger.Error("Failed to load job", zap.String("job_id", c.Param("id")), zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// HealthCheck
func (h *ImageHandler) HealthCheck(c *gin.Context) {
	services := map[string]string{
		"redis":    "not configured",
		"supabase": "not configured",
		"rabbitmq": "not configured",
	}
	if h.storage != nil {
		for name, status := range h.storage.HealthCheck(c.Request.Context()) {
			services[name] = status
		}
	}
	if h.queue != nil {
		services["rabbitmq"] = h.queue.HealthCheck()
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

// GetStats reports cache and queue statistics for whichever backends are
// configured.
func (h *ImageHandler) GetStats(c *gin.Context) {
	stats := gin.H{}

	if h.storage != nil {
		cacheStats, err := h.storage.GetCacheStats(c.Request.Context())
		if err != nil {
			h.logger.Warn("Failed to get cache stats", zap.Error(err))
		} else {
			stats["cache"] = cacheStats
		}
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Warn("Failed to get queue stats", zap.Error(err))
		} else {
			stats["queue"] = queueStats
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}
