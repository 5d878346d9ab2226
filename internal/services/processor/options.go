package processor

import (
	"math"

	"github.com/phambaophuc/image-watermark/internal/models"
)

const (
	DefaultText     = "Piktor"
	DefaultAnchor   = models.AnchorBottomLeft
	DefaultFontSize = 40.0
	DefaultOpacity  = 0.6
	DefaultPadding  = 30.0

	// MaxFontSize and MaxPadding keep glyph coordinates inside 26.6 fixed
	// point and placement inside int range.
	MaxFontSize = 16384.0
	MaxPadding  = 1 << 20
)

// DefaultOptions returns the stock watermark options.
func DefaultOptions() models.WatermarkOptions {
	return models.WatermarkOptions{
		Text:     DefaultText,
		Anchor:   DefaultAnchor,
		FontSize: DefaultFontSize,
		Opacity:  DefaultOpacity,
		Padding:  DefaultPadding,
	}
}

// MergeOptions overrides base field by field with whatever in sets. A nil in
// leaves base untouched.
func MergeOptions(base models.WatermarkOptions, in *models.WatermarkOptionsInput) models.WatermarkOptions {
	if in == nil {
		return base
	}
	out := base
	if in.Text != nil {
		out.Text = *in.Text
	}
	if in.Anchor != nil {
		out.Anchor = *in.Anchor
	}
	if in.FontSize != nil {
		out.FontSize = *in.FontSize
	}
	if in.Opacity != nil {
		out.Opacity = *in.Opacity
	}
	if in.Padding != nil {
		out.Padding = *in.Padding
	}
	return out
}

// Sanitize clamps options into ranges the pipeline can render: opacity into
// [0,1], non-positive font sizes back to the default, negative padding to 0,
// oversized font sizes and padding down to their maximum and unknown anchors
// to bottom-left.
func Sanitize(opts models.WatermarkOptions) models.WatermarkOptions {
	opts.Opacity = clampUnit(opts.Opacity)
	if !isFinite(opts.FontSize) || opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	opts.FontSize = min(opts.FontSize, MaxFontSize)
	if !isFinite(opts.Padding) || opts.Padding < 0 {
		opts.Padding = 0
	}
	opts.Padding = min(opts.Padding, MaxPadding)
	if !opts.Anchor.Valid() {
		opts.Anchor = DefaultAnchor
	}
	return opts
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultOpacity
	}
	return min(1.0, max(0.0, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
