package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phambaophuc/image-watermark/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

// Upload stores data in the Supabase bucket and returns its public URL.
func (s *StorageService) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := utils.GenerateStorageKey(filename)

	s.uploadMu.Lock()
	_, err := s.sbClient.UploadFile(s.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
	})
	s.uploadMu.Unlock()
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.sbClient.GetPublicUrl(s.bucket, key)
	return publicURL.SignedURL, nil
}
