package panorama

import (
	"math"
	"strconv"
	"strings"
)

// OverlayConfig describes one parallax overlay. Length fields accept "vw",
// "vh", "px" or a bare number; Show additionally accepts a percentage of the
// maximum scroll position ("18%").
type OverlayConfig struct {
	Image  string `json:"image"`
	Show   string `json:"show"`
	Left   string `json:"left"`
	Top    string `json:"top"`
	Bottom string `json:"bottom"`
}

// OverlayRenderState is the per-frame transform of an overlay. It is derived
// purely from the overlay config, the scroll position and the geometry.
type OverlayRenderState struct {
	Visible      bool
	TranslateX   float64
	Scale        float64
	Threshold    float64
	DistancePast float64
}

// OverlayBox is the resolved placement of an overlay in screen pixels.
type OverlayBox struct {
	Left, Top, MaxHeight float64
}

// RevealParams controls how overlays slide and scale in.
type RevealParams struct {
	// Speed converts scroll distance past the threshold into leftward travel.
	Speed float64 `json:"speed"`
	// Margin is added to the offscreen distance so the overlay fully clears.
	Margin float64 `json:"margin"`
	// AppearRange is the scroll distance over which the overlay scales in.
	AppearRange float64 `json:"appearRange"`
	// StartScale is the scale at the moment the overlay becomes visible.
	StartScale float64 `json:"startScale"`
}

// DefaultRevealParams returns the reveal parameters of the page.
func DefaultRevealParams() RevealParams {
	return RevealParams{
		Speed:       1.0,
		Margin:      24,
		AppearRange: 160,
		StartScale:  0.6,
	}
}

// ResolveLength converts a CSS-like length into pixels. The bool result is
// false when s cannot be parsed.
func ResolveLength(s string, geo Geometry) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	unit := 1.0
	switch {
	case strings.HasSuffix(s, "%"):
		s = strings.TrimSuffix(s, "%")
		unit = geo.MaxScroll / 100
	case strings.HasSuffix(s, "vh"):
		s = strings.TrimSuffix(s, "vh")
		unit = geo.Viewport.Height / 100
	case strings.HasSuffix(s, "vw"):
		s = strings.TrimSuffix(s, "vw")
		unit = geo.Viewport.Width / 100
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v * unit, true
}

// ResolveThreshold converts an overlay's show value to an absolute scroll
// position. Malformed values resolve to zero, which makes the overlay always
// visible instead of failing the frame.
func ResolveThreshold(show string, geo Geometry) float64 {
	v, ok := ResolveLength(show, geo)
	if !ok {
		return 0
	}
	return v
}

// Box resolves the overlay's placement for the given geometry. MaxHeight is
// the space left between Top and Bottom.
func (o OverlayConfig) Box(geo Geometry) OverlayBox {
	left, _ := ResolveLength(o.Left, geo)
	top, _ := ResolveLength(o.Top, geo)
	bottom, _ := ResolveLength(o.Bottom, geo)
	return OverlayBox{
		Left:      left,
		Top:       top,
		MaxHeight: math.Max(0, geo.Viewport.Height-top-bottom),
	}
}

// ComputeOverlayState returns the render state of an overlay at the given
// scroll position. measuredWidth is the overlay's rendered width before
// scaling; a non-positive value falls back to the viewport width.
func ComputeOverlayState(cfg OverlayConfig, scroll, measuredWidth float64, geo Geometry, p RevealParams) OverlayRenderState {
	if measuredWidth <= 0 {
		measuredWidth = geo.Viewport.Width
	}
	left, _ := ResolveLength(cfg.Left, geo)
	return p.Reveal(ResolveThreshold(cfg.Show, geo), left, scroll, measuredWidth)
}

// Reveal computes the render state from an already-resolved threshold and
// left offset.
func (p RevealParams) Reveal(threshold, left, scroll, width float64) OverlayRenderState {
	past := math.Max(0, scroll-threshold)
	offscreen := left + width + p.Margin

	progress := 1.0
	if p.AppearRange > 0 {
		progress = Clamp(past/p.AppearRange, 0, 1)
	}

	return OverlayRenderState{
		Visible:      scroll >= threshold,
		TranslateX:   -math.Min(offscreen, past*p.Speed),
		Scale:        p.StartScale + (1-p.StartScale)*EaseOutCubic(progress),
		Threshold:    threshold,
		DistancePast: past,
	}
}
