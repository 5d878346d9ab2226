package processor

import (
	"image"
	"math"

	"github.com/phambaophuc/image-watermark/internal/models"
)

// Placement is the top-left corner of the overlay in source pixel space.
type Placement struct {
	Left int
	Top  int
}

// Point returns the placement as an image.Point.
func (p Placement) Point() image.Point {
	return image.Pt(p.Left, p.Top)
}

// AnchorWidth is the text width assumed when offsetting from the right edge.
func AnchorWidth(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * anchorWidthFactor
}

// Place maps an anchor to pixel coordinates for an image of width x height.
// The result is not clamped: large padding or font sizes may push the overlay
// partly or entirely off the canvas.
func Place(width, height int, opts models.WatermarkOptions) Placement {
	w, h := float64(width), float64(height)

	left := opts.Padding
	if opts.Anchor.IsRight() {
		left = w - AnchorWidth(opts.Text, opts.FontSize) - opts.Padding
	}

	top := opts.Padding
	if opts.Anchor.IsBottom() {
		top = h - opts.FontSize - opts.Padding
	}

	return Placement{
		Left: int(math.Round(left)),
		Top:  int(math.Round(top)),
	}
}
