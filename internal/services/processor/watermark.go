package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/phambaophuc/image-watermark/internal/models"
	"go.uber.org/zap"
)

// Result carries either the watermarked image or the reason it could not be
// produced.
type Result struct {
	Data      []byte
	Format    string
	Width     int
	Height    int
	Placement Placement
	Err       error
}

// Output is what the public boundary hands back: always some image bytes.
type Output struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
	Applied  bool
}

// Composite runs decode, overlay, composite and encode over source. Every
// failure, including a panic in a codec, comes back as a *ProcessingError in
// Result.Err.
func (p *ImageProcessor) Composite(source []byte, opts models.WatermarkOptions) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: &ProcessingError{Stage: StageComposite, Err: fmt.Errorf("panic: %v", r)}}
		}
	}()

	opts = Sanitize(opts)

	decoded, err := decodeImage(source)
	if err != nil {
		return Result{Err: &ProcessingError{Stage: StageDecode, Err: err}}
	}

	placement := Place(decoded.Width, decoded.Height, opts)
	canvas := image.Rectangle{Max: decoded.Image.Bounds().Size()}
	overlay := Synthesize(opts.Text, opts.FontSize, opts.Opacity, canvas.Sub(placement.Point()))
	watermarked := p.addWatermark(decoded.Image, overlay, placement)

	format := OutputFormat(decoded.Format)
	buffer := &bytes.Buffer{}
	if err := p.encodeImage(buffer, watermarked, format); err != nil {
		return Result{Err: &ProcessingError{Stage: StageEncode, Err: fmt.Errorf("failed to encode image: %w", err)}}
	}

	bounds := watermarked.Bounds()
	return Result{
		Data:      buffer.Bytes(),
		Format:    format,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Placement: placement,
	}
}

// Apply watermarks source and never fails: if any stage of the pipeline
// breaks, the original bytes come back untouched.
func (p *ImageProcessor) Apply(source []byte, opts models.WatermarkOptions) Output {
	res := p.Composite(source, opts)
	if res.Err != nil {
		p.logger.Warn("Watermark skipped, returning original image",
			zap.Error(res.Err),
			zap.Int("size", len(source)))
		return Output{
			Data:     source,
			MimeType: SniffMimeType(source),
		}
	}

	return Output{
		Data:     res.Data,
		MimeType: MimeType(res.Format),
		Width:    res.Width,
		Height:   res.Height,
		Applied:  true,
	}
}

// addWatermark blends the overlay onto a copy of img at the placement. The
// result keeps the source dimensions.
func (p *ImageProcessor) addWatermark(img image.Image, overlay *OverlayLayer, at Placement) image.Image {
	if overlay.Empty() {
		return imaging.Clone(img)
	}
	origin := img.Bounds().Min.Add(at.Point()).Add(overlay.Offset)
	return imaging.Overlay(img, overlay.Image, origin, 1.0)
}
