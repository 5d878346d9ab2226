package models

type Anchor string

const (
	AnchorBottomLeft  Anchor = "bottom-left"
	AnchorBottomRight Anchor = "bottom-right"
	AnchorTopLeft     Anchor = "top-left"
	AnchorTopRight    Anchor = "top-right"
)

// Valid reports whether a names one of the four supported corners.
func (a Anchor) Valid() bool {
	switch a {
	case AnchorBottomLeft, AnchorBottomRight, AnchorTopLeft, AnchorTopRight:
		return true
	}
	return false
}

// IsRight reports whether the anchor hugs the right edge of the image.
func (a Anchor) IsRight() bool {
	return a == AnchorBottomRight || a == AnchorTopRight
}

// IsBottom reports whether the anchor hugs the bottom edge of the image.
func (a Anchor) IsBottom() bool {
	return a == AnchorBottomLeft || a == AnchorBottomRight
}

// WatermarkOptions is the fully resolved set of presentation options for a
// single watermark call.
type WatermarkOptions struct {
	Text     string  `json:"text"`
	Anchor   Anchor  `json:"anchor"`
	FontSize float64 `json:"font_size"`
	Opacity  float64 `json:"opacity"`
	Padding  float64 `json:"padding"`
}

// WatermarkOptionsInput is the partial form accepted from clients. Nil fields
// fall back to the configured defaults.
type WatermarkOptionsInput struct {
	Text     *string  `json:"text,omitempty"`
	Anchor   *Anchor  `json:"anchor,omitempty"`
	FontSize *float64 `json:"font_size,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Padding  *float64 `json:"padding,omitempty"`
}

type WatermarkRequest struct {
	Image   string                 `json:"image" binding:"required"`
	Options *WatermarkOptionsInput `json:"options,omitempty"`
	PlanID  string                 `json:"plan_id,omitempty"`
}

type WatermarkResponse struct {
	Image   string `json:"image"`
	Applied bool   `json:"applied"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Format  string `json:"format"`
}
