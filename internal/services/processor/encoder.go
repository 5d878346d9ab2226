package processor

import (
	"image"
	"io"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/pkg/utils"
)

// MimeTypeUnknown is reported for bytes that do not sniff as an image.
const MimeTypeUnknown = "application/octet-stream"

const DefaultQuality = 90

// OutputFormat picks the re-encode format: JPEG stays JPEG, everything else
// becomes PNG.
func OutputFormat(sourceFormat string) string {
	if sourceFormat == models.FormatJPEG {
		return models.FormatJPEG
	}
	return models.FormatPNG
}

// MimeType returns the MIME type for an output format.
func MimeType(format string) string {
	if format == models.FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// SniffMimeType detects the image type of data. Anything that is not a
// recognised image is reported as application/octet-stream.
func SniffMimeType(data []byte) string {
	if mimeType := http.DetectContentType(data); utils.IsValidImageType(mimeType) {
		return mimeType
	}
	return MimeTypeUnknown
}

func (p *ImageProcessor) encodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case models.FormatJPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(p.quality))
	default:
		return imaging.Encode(w, img, imaging.PNG)
	}
}
