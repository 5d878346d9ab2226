package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/image-watermark/internal/config"
	"github.com/phambaophuc/image-watermark/internal/http/handlers"
	"github.com/phambaophuc/image-watermark/internal/http/middleware"
	"go.uber.org/zap"
)

const (
	mimeJSON      = "application/json"
	mimeMultipart = "multipart/form-data"
)

type Router struct {
	imageHandler *handlers.ImageHandler
	logger       *zap.Logger
	config       *config.Config
}

func NewRouter(
	imageHandler *handlers.ImageHandler,
	logger *zap.Logger,
	config *config.Config,
) *Router {
	return &Router{
		imageHandler: imageHandler,
		logger:       logger,
		config:       config,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.config.Server.AllowedOrigins...))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodyLimit(r.config.Server.MaxBodySize))

	// API version 1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.imageHandler.HealthCheck)
		v1.GET("/stats", r.imageHandler.GetStats)

		watermark := v1.Group("/watermark")
		{
			watermark.POST("", middleware.ValidateContentType(mimeJSON), r.imageHandler.Watermark)
			watermark.POST("/upload", middleware.ValidateContentType(mimeMultipart), r.imageHandler.UploadWatermark)
			watermark.POST("/batch", middleware.ValidateContentType(mimeMultipart), r.imageHandler.BatchWatermark)
			watermark.POST("/jobs", middleware.ValidateContentType(mimeJSON), r.imageHandler.CreateJob)
			watermark.GET("/jobs/:id", r.imageHandler.GetJob)
		}
	}

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Image watermarking is running",
		})
	})

	return router
}
