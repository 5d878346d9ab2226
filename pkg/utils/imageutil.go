package utils

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FetchError reports a failed remote image fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// FromRemote downloads imageURL fully into memory and returns the body with the
// response content type (sniffed when the server sends none). Bodies larger
// than maxSize are rejected rather than truncated.
func FromRemote(ctx context.Context, client *http.Client, imageURL string, maxSize int64) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &FetchError{URL: imageURL, StatusCode: resp.StatusCode}
	}

	reader := io.Reader(resp.Body)
	if maxSize > 0 {
		reader = io.LimitReader(resp.Body, maxSize+1)
	}
	imageData, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", &FetchError{URL: imageURL, Err: fmt.Errorf("failed to read image data: %w", err)}
	}

	if maxSize > 0 && int64(len(imageData)) > maxSize {
		return nil, "", &FetchError{URL: imageURL, Err: fmt.Errorf("image exceeds maximum size %d", maxSize)}
	}

	if len(imageData) == 0 {
		return nil, "", &FetchError{URL: imageURL, Err: fmt.Errorf("empty image data")}
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(imageData)
	}

	return imageData, contentType, nil
}

// IsValidImageType checks if content type is a valid image type
func IsValidImageType(contentType string) bool {
	validTypes := []string{
		"image/jpeg",
		"image/jpg",
		"image/png",
		"image/gif",
		"image/webp",
		"image/bmp",
		"image/tiff",
	}

	ct := strings.ToLower(contentType)
	for _, validType := range validTypes {
		if strings.Contains(ct, validType) {
			return true
		}
	}
	return false
}

// BaseMimeType strips parameters such as charset from a Content-Type value.
func BaseMimeType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}

// ExtensionFor maps a MIME type to the file extension used for stored outputs.
func ExtensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

// GenerateFilename generates a unique filename for a watermarked image
func GenerateFilename(jobID, ext string) string {
	timestamp := time.Now().Unix()
	if ext == "" {
		ext = "png"
	}
	return fmt.Sprintf("watermarked_%s_%d.%s", jobID, timestamp, ext)
}

// GenerateStorageKey builds a collision-free object key under watermarked/.
func GenerateStorageKey(filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filepath.Base(filename), ext)
	timestamp := time.Now().Unix()
	uuid := uuid.New().String()[:8]

	return fmt.Sprintf("watermarked/%s_%d_%s%s", name, timestamp, uuid, ext)
}

// ReplaceExtension swaps the extension of filename for ext.
func ReplaceExtension(filename, ext string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename)) + "." + ext
}
