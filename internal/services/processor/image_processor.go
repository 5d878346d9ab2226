package processor

import (
	"net/http"
	"time"

	"github.com/phambaophuc/image-watermark/internal/models"
	"go.uber.org/zap"
)

type ImageProcessor struct {
	logger       *zap.Logger
	defaults     models.WatermarkOptions
	quality      int
	workers      int
	client       *http.Client
	maxFetchSize int64
}

type ProcessorOptions struct {
	Defaults     models.WatermarkOptions
	JPEGQuality  int
	Workers      int
	FetchTimeout time.Duration
	MaxFetchSize int64
}

var DefaultProcessorOptions = ProcessorOptions{
	Defaults:     DefaultOptions(),
	JPEGQuality:  DefaultQuality,
	Workers:      DefaultWorkers,
	FetchTimeout: 30 * time.Second,
	MaxFetchSize: 10 << 20, // 10MB
}

func NewImageProcessor(logger *zap.Logger, opts ...ProcessorOptions) *ImageProcessor {
	options := DefaultProcessorOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ImageProcessor{
		logger:       logger,
		defaults:     Sanitize(options.Defaults),
		quality:      min(100, max(1, options.JPEGQuality)),
		workers:      max(1, options.Workers),
		client:       &http.Client{Timeout: options.FetchTimeout},
		maxFetchSize: options.MaxFetchSize,
	}
}

// Defaults returns the options applied when a caller leaves a field unset.
func (p *ImageProcessor) Defaults() models.WatermarkOptions {
	return p.defaults
}

// Options merges a client's partial options over the processor defaults.
func (p *ImageProcessor) Options(in *models.WatermarkOptionsInput) models.WatermarkOptions {
	return MergeOptions(p.defaults, in)
}
