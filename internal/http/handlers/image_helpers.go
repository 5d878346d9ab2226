package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

var errInvalidAnchor = errors.New("anchor must be one of bottom-left, bottom-right, top-left, top-right")

// === REQUEST PARSING ===

func validateOptions(in *models.WatermarkOptionsInput) error {
	if in != nil && in.Anchor != nil && !in.Anchor.Valid() {
		return errInvalidAnchor
	}
	return nil
}

// parseFormOptions reads watermark options from multipart form fields. Absent
// fields stay nil and fall back to the configured defaults.
func parseFormOptions(c *gin.Context) (*models.WatermarkOptionsInput, error) {
	in := &models.WatermarkOptionsInput{}

	if text, ok := c.GetPostForm("text"); ok {
		in.Text = &text
	}

	if value := c.PostForm("anchor"); value != "" {
		anchor := models.Anchor(value)
		if !anchor.Valid() {
			return nil, errInvalidAnchor
		}
		in.Anchor = &anchor
	}

	var err error
	if in.FontSize, err = parseFloatField(c, "font_size"); err != nil {
		return nil, err
	}
	if in.Opacity, err = parseFloatField(c, "opacity"); err != nil {
		return nil, err
	}
	if in.Padding, err = parseFloatField(c, "padding"); err != nil {
		return nil, err
	}

	return in, nil
}

func parseFloatField(c *gin.Context, fieldName string) (*float64, error) {
	value := c.PostForm(fieldName)
	if value == "" {
		return nil, nil
	}

	num, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: must be a number", fieldName)
	}
	return &num, nil
}

func (h *ImageHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(h.config.Storage.MaxFileSize * 10); err != nil {
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	files := c.Request.MultipartForm.File[imagesParamKey]
	if len(files) == 0 {
		return nil, fmt.Errorf("no images provided")
	}
	if len(files) > maxBatchSize {
		return nil, fmt.Errorf("too many images: maximum is %d", maxBatchSize)
	}

	return files, nil
}

// === FILE OPERATIONS ===

func (h *ImageHandler) readUpload(file io.Reader) ([]byte, error) {
	maxSize := h.config.Storage.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %v", err)
	}
	if err := h.processor.ValidateImage(data, maxSize); err != nil {
		return nil, err
	}
	return data, nil
}

func (h *ImageHandler) readFiles(files []*multipart.FileHeader) ([][]byte, error) {
	sources := make([][]byte, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", fh.Filename, err)
		}
		data, err := h.readUpload(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %v", fh.Filename, err)
		}
		sources = append(sources, data)
	}

	return sources, nil
}

// passThrough loads ref without stamping it, for plans that are exempt.
func (h *ImageHandler) passThrough(ctx context.Context, ref string) (processor.Output, error) {
	src, err := h.processor.ResolveSource(ctx, ref)
	if err != nil {
		return processor.Output{}, err
	}

	mimeType := utils.BaseMimeType(src.ContentType)
	if !utils.IsValidImageType(mimeType) {
		mimeType = processor.SniffMimeType(src.Data)
	}
	return processor.Output{Data: src.Data, MimeType: mimeType}, nil
}

// === RESPONSE HANDLING ===

func (h *ImageHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// respondSourceError maps a failure to load the source image to a status.
// Watermarking itself never fails, so these are the only errors Watermark sees.
func (h *ImageHandler) respondSourceError(c *gin.Context, err error) {
	var fetchErr *utils.FetchError
	switch {
	case errors.As(err, &fetchErr):
		h.logger.Warn("Failed to fetch remote image", zap.String("url", fetchErr.URL), zap.Error(err))
		h.respondError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, utils.ErrInvalidDataURL):
		h.respondError(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("Failed to load image", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Failed to process image")
	}
}

func (h *ImageHandler) buildBatchResponse(ctx context.Context, outputs []processor.Output, files []*multipart.FileHeader, upload bool) models.BatchResponse {
	response := models.BatchResponse{Images: make([]models.ImageResponse, len(outputs))}

	var urls []string
	if upload {
		urls = h.uploadBatch(ctx, outputs, files)
	}

	now := time.Now()
	for i, out := range outputs {
		item := models.ImageResponse{
			Filename:    files[i].Filename,
			FileSize:    int64(len(out.Data)),
			Applied:     out.Applied,
			ProcessedAt: now,
		}

		if upload {
			item.URL = urls[i]
			if item.URL == "" {
				item.Error = "failed to store image"
				response.Failed++
			}
		} else {
			item.Image = utils.ToInline(out.Data, out.MimeType)
		}

		response.Images[i] = item
	}

	return response
}

// === STORAGE OPERATIONS ===

// uploadBatch stores every output and returns URLs aligned with outputs. A
// failed upload leaves an empty URL.
func (h *ImageHandler) uploadBatch(ctx context.Context, outputs []processor.Output, files []*multipart.FileHeader) []string {
	uploads := make([]models.UploadFile, len(outputs))
	for i, out := range outputs {
		uploads[i] = models.UploadFile{
			Data:        out.Data,
			Filename:    utils.ReplaceExtension(files[i].Filename, utils.ExtensionFor(out.MimeType)),
			ContentType: out.MimeType,
		}
	}

	urls, err := h.storage.UploadMultiple(ctx, uploads)
	if err != nil {
		h.logger.Warn("Some batch uploads failed", zap.Error(err))
	}
	if len(urls) != len(outputs) {
		return make([]string, len(outputs))
	}
	return urls
}

// === UTILITY METHODS ===

func (h *ImageHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}

func boolHeader(v bool) string {
	return strconv.FormatBool(v)
}
