package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/pkg/utils"
	"go.uber.org/zap"
)

type Origin int

const (
	OriginInline Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "inline"
}

// Source is an image resolved from a client reference, together with where
// it came from and the content type it was declared with.
type Source struct {
	Data        []byte
	Origin      Origin
	ContentType string
}

// ResolveSource loads the bytes behind ref. http(s) URLs are fetched; anything
// else is treated as an inline data URL or bare base64. Fetch errors are
// returned as is since there is no original image to fall back to.
func (p *ImageProcessor) ResolveSource(ctx context.Context, ref string) (*Source, error) {
	ref = strings.TrimSpace(ref)

	if utils.IsRemote(ref) {
		data, contentType, err := utils.FromRemote(ctx, p.client, ref, p.maxFetchSize)
		if err != nil {
			return nil, err
		}
		return &Source{Data: data, Origin: OriginRemote, ContentType: contentType}, nil
	}

	data, err := utils.FromInline(ref)
	if err != nil {
		return nil, err
	}
	return &Source{Data: data, Origin: OriginInline, ContentType: utils.InlineMimeType(ref)}, nil
}

// Process resolves ref and watermarks it. When watermarking fails the source
// bytes are returned with their declared content type.
func (p *ImageProcessor) Process(ctx context.Context, ref string, opts models.WatermarkOptions) (Output, error) {
	src, err := p.ResolveSource(ctx, ref)
	if err != nil {
		return Output{}, fmt.Errorf("failed to load %s image: %w", originOf(ref), err)
	}

	out := p.Apply(src.Data, opts)
	if declared := utils.BaseMimeType(src.ContentType); !out.Applied && utils.IsValidImageType(declared) {
		out.MimeType = declared
	}

	p.logger.Debug("Watermark processed",
		zap.String("origin", src.Origin.String()),
		zap.Bool("applied", out.Applied),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height))

	return out, nil
}

// Watermark stamps the image referenced by ref (inline data URL or remote
// URL) and returns it as an inline data URL.
func (p *ImageProcessor) Watermark(ctx context.Context, ref string, opts models.WatermarkOptions) (string, error) {
	out, err := p.Process(ctx, ref, opts)
	if err != nil {
		return "", err
	}
	return utils.ToInline(out.Data, out.MimeType), nil
}

func originOf(ref string) Origin {
	if utils.IsRemote(strings.TrimSpace(ref)) {
		return OriginRemote
	}
	return OriginInline
}
