package processor

import (
	"image"
	"testing"
)

var unclipped = image.Rect(-1<<20, -1<<20, 1<<20, 1<<20)

func TestEstimateOverlaySize(t *testing.T) {
	w, h := EstimateOverlaySize("Piktor", 40)
	if w != 168 || h != 52 {
		t.Fatalf("expected 168x52, got %dx%d", w, h)
	}
}

func TestSynthesizeDrawsFillAndStroke(t *testing.T) {
	layer := Synthesize("Piktor", 40, 0.6, unclipped)
	if layer.Empty() {
		t.Fatalf("expected a non-empty layer")
	}
	if b := layer.Image.Bounds(); b.Dx() != layer.Width || b.Dy() != layer.Height {
		t.Fatalf("layer image %v does not match %dx%d", b, layer.Width, layer.Height)
	}

	var fill, stroke int
	pix := layer.Image.Pix
	for i := 0; i < len(pix); i += 4 {
		r, g, b, a := pix[i], pix[i+1], pix[i+2], pix[i+3]
		switch {
		case a == 0:
		case b > 100:
			fill++
		case a < 200 && r < 40 && g < 40 && b < 40:
			stroke++
		}
	}
	if fill == 0 {
		t.Fatalf("expected light fill pixels inside the glyphs")
	}
	if stroke == 0 {
		t.Fatalf("expected translucent dark outline pixels around the glyphs")
	}
}

func TestSynthesizeAllocatesOnlyVisiblePart(t *testing.T) {
	// 200x200 image, bottom-left anchor, padding 30: placement (30, -11830).
	clip := image.Rect(-30, 11830, 170, 12030)
	layer := Synthesize("Piktor", 12000, 0.6, clip)

	if layer.Width != 50400 || layer.Height != 15600 {
		t.Fatalf("expected the full estimate 50400x15600, got %dx%d", layer.Width, layer.Height)
	}
	if layer.Empty() {
		t.Fatalf("expected the visible part to be rasterized")
	}
	if b := layer.Image.Bounds(); b.Dx() != 170 || b.Dy() != 200 {
		t.Fatalf("expected a 170x200 canvas, got %v", b)
	}
	if layer.Offset != image.Pt(0, 11830) {
		t.Fatalf("expected offset (0,11830), got %v", layer.Offset)
	}

	shifted := Synthesize("Piktor", 40, 0.6, image.Rect(100, 10, 500, 500))
	if shifted.Offset != image.Pt(100, 10) {
		t.Fatalf("expected offset (100,10), got %v", shifted.Offset)
	}
	if b := shifted.Image.Bounds(); b.Dx() != 68 || b.Dy() != 42 {
		t.Fatalf("expected a 68x42 canvas, got %v", b)
	}
}

func TestSynthesizeOffCanvasAllocatesNothing(t *testing.T) {
	layer := Synthesize("Piktor", 40, 0.6, image.Rect(1000, 1000, 1200, 1200))
	if !layer.Empty() || layer.Image != nil {
		t.Fatalf("expected no canvas for a fully clipped layer")
	}
}

func TestSynthesizeEmptyText(t *testing.T) {
	if layer := Synthesize("", 40, 0.6, unclipped); !layer.Empty() {
		t.Fatalf("empty text should give an empty layer, got %dx%d", layer.Width, layer.Height)
	}
}

func TestSynthesizeZeroOpacityIsTransparent(t *testing.T) {
	layer := Synthesize("Piktor", 40, 0, unclipped)
	for i := 3; i < len(layer.Image.Pix); i += 4 {
		if layer.Image.Pix[i] != 0 {
			t.Fatalf("expected a fully transparent layer")
		}
	}
}
