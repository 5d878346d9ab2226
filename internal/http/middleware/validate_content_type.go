package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateContentType rejects request bodies whose media type is not one of
// allowed. Requests without a body pass through.
func ValidateContentType(allowed ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength == 0 && ctx.Request.Method == http.MethodGet {
			ctx.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err == nil {
			for _, t := range allowed {
				if mediaType == t {
					ctx.Next()
					return
				}
			}
		}

		ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"success": false,
			"error":   "Unsupported content type",
		})
	}
}
