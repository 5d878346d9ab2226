package processor

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

const (
	// overlayWidthFactor sizes the overlay canvas per character and em.
	overlayWidthFactor = 0.7
	// anchorWidthFactor is the per-character width used when offsetting from
	// the right edge. It is deliberately narrower than overlayWidthFactor, so
	// right-anchored marks sit slightly closer to the edge than their canvas.
	anchorWidthFactor   = 0.6
	overlayHeightFactor = 1.3

	strokeAlpha       = 0.3
	strokeWidthFactor = 0.05
	minStrokeWidth    = 1.0
)

var (
	fontOnce    sync.Once
	overlayFont *opentype.Font
	fontErr     error
)

// loadFont parses the embedded Go regular font once.
func loadFont() (*opentype.Font, error) {
	fontOnce.Do(func() {
		parsed, err := opentype.Parse(goregular.TTF)
		if err != nil {
			fontErr = fmt.Errorf("parse embedded font: %w", err)
			return
		}
		overlayFont = parsed
	})
	return overlayFont, fontErr
}

// OverlayLayer is the rendered watermark label, ready to be composited.
// Width and Height are estimates derived from the text length, not exact
// glyph bounds. Only the part of the label that lands on the image is
// rasterized: Image covers the layer rectangle starting at Offset.
type OverlayLayer struct {
	Width  int
	Height int
	Offset image.Point
	Image  *image.RGBA
}

// Empty reports whether the layer has nothing to draw.
func (l *OverlayLayer) Empty() bool {
	return l == nil || l.Image == nil || l.Image.Bounds().Empty()
}

// EstimateOverlaySize returns the canvas size reserved for text at fontSize.
func EstimateOverlaySize(text string, fontSize float64) (int, int) {
	n := float64(len([]rune(text)))
	return int(math.Round(n * fontSize * overlayWidthFactor)), int(math.Round(fontSize * overlayHeightFactor))
}

// Synthesize renders text as white glyphs at the given opacity, outlined with
// a thin translucent dark stroke so the label stays legible on light and dark
// backgrounds alike. clip is the visible area in layer coordinates; pixels of
// the label outside it are never allocated.
func Synthesize(text string, fontSize, opacity float64, clip image.Rectangle) *OverlayLayer {
	if !isFinite(fontSize) || fontSize <= 0 {
		fontSize = DefaultFontSize
	}
	fontSize = min(fontSize, MaxFontSize)
	opacity = clampUnit(opacity)

	width, height := EstimateOverlaySize(text, fontSize)
	visible := image.Rect(0, 0, width, height).Intersect(clip)

	layer := &OverlayLayer{
		Width:  width,
		Height: height,
		Offset: visible.Min,
	}
	if visible.Empty() {
		return layer
	}
	layer.Image = image.NewRGBA(image.Rect(0, 0, visible.Dx(), visible.Dy()))
	if opacity == 0 {
		return layer
	}

	f, err := loadFont()
	if err != nil {
		// goregular is compiled in; a parse failure leaves a blank layer.
		return layer
	}

	strokeWidth := max(minStrokeWidth, fontSize*strokeWidthFactor)
	path, ok := glyphPath(f, text, fontSize, height, visible, toFixed(strokeWidth)+fixed.I(1))
	if !ok {
		return layer
	}

	w, h := visible.Dx(), visible.Dy()
	scanner := rasterx.NewScannerGV(w, h, layer.Image, layer.Image.Bounds())

	stroker := rasterx.NewStroker(w, h, scanner)
	stroker.SetStroke(toFixed(strokeWidth), toFixed(4), rasterx.RoundCap, nil, rasterx.RoundGap, rasterx.Round)
	stroker.SetColor(color.NRGBA{A: alpha8(strokeAlpha)})
	path.AddTo(stroker)
	stroker.Draw()

	// NewFiller clears the stroke left in the shared scanner.
	filler := rasterx.NewFiller(w, h, scanner)
	filler.SetColor(color.NRGBA{R: 255, G: 255, B: 255, A: alpha8(opacity)})
	path.AddTo(filler)
	filler.Draw()

	return layer
}

// glyphPath lays text out left to right on a single baseline and returns the
// outline of the glyphs that touch visible, translated so visible.Min is the
// origin. The baseline is centred vertically within height. margin widens the
// horizontal cut so strokes of glyphs just outside visible are kept.
func glyphPath(f *opentype.Font, text string, fontSize float64, height int, visible image.Rectangle, margin fixed.Int26_6) (rasterx.Path, bool) {
	var buf sfnt.Buffer
	ppem := toFixed(fontSize)

	metrics, err := f.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, false
	}
	lineHeight := metrics.Ascent + metrics.Descent
	baseline := (fixed.I(height)-lineHeight)/2 + metrics.Ascent

	shift := fixed.Point26_6{X: -fixed.I(visible.Min.X), Y: baseline - fixed.I(visible.Min.Y)}
	minX := fixed.I(visible.Min.X) - margin
	maxX := fixed.I(visible.Max.X) + margin

	var (
		path  rasterx.Path
		dotX  fixed.Int26_6
		prev  sfnt.GlyphIndex
		first = true
	)
	for _, r := range text {
		if dotX > maxX {
			break
		}

		gi, err := f.GlyphIndex(&buf, r)
		if err != nil {
			continue
		}
		if !first {
			if kern, err := f.Kern(&buf, prev, gi, ppem, font.HintingNone); err == nil {
				dotX += kern
			}
		}
		first = false

		advance, err := f.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			advance = 0
		}

		if dotX+advance >= minX {
			segments, err := f.LoadGlyph(&buf, gi, ppem, nil)
			if err == nil {
				appendSegments(&path, segments, fixed.Point26_6{X: dotX + shift.X, Y: shift.Y})
			}
		}

		dotX += advance
		prev = gi
	}
	return path, len(path) > 0
}

// appendSegments translates glyph outline segments by origin into path.
// Segments from sfnt are y-down relative to the glyph origin on the baseline.
func appendSegments(path *rasterx.Path, segments sfnt.Segments, origin fixed.Point26_6) {
	open := false
	for _, seg := range segments {
		a0 := seg.Args[0].Add(origin)
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				path.Stop(true)
			}
			path.Start(a0)
			open = true
		case sfnt.SegmentOpLineTo:
			path.Line(a0)
		case sfnt.SegmentOpQuadTo:
			path.QuadBezier(a0, seg.Args[1].Add(origin))
		case sfnt.SegmentOpCubeTo:
			path.CubeBezier(a0, seg.Args[1].Add(origin), seg.Args[2].Add(origin))
		}
	}
	if open {
		path.Stop(true)
	}
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func alpha8(v float64) uint8 {
	return uint8(math.Round(clampUnit(v) * 255))
}
