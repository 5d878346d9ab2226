package processor

import (
	"fmt"
)

// ValidateImage rejects payloads that are empty or larger than maxSize. It does
// not decode: undecodable images are still accepted and come back unchanged.
func (p *ImageProcessor) ValidateImage(data []byte, maxSize int64) error {
	if len(data) == 0 {
		return fmt.Errorf("empty image data")
	}
	if size := int64(len(data)); maxSize > 0 && size > maxSize {
		return fmt.Errorf("file size %d exceeds maximum allowed size %d", size, maxSize)
	}
	return nil
}
