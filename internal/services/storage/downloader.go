package storage

import (
	"context"
	"fmt"
)

// Download reads an object from the bucket, for jobs that reference images
// already stored by the dashboard.
func (s *StorageService) Download(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.sbClient.DownloadFile(s.bucket, path)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s from supabase: %w", path, err)
	}
	return data, nil
}
