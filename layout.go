package panorama

import "math"

// Geometry is the derived layout of the horizontal track. The panorama image
// comes first, followed by the auxiliary panels in order.
type Geometry struct {
	// Viewport is the current window size.
	Viewport Size
	// PanoramaWidth is the rendered width of the panorama image scaled to the
	// viewport height. Zero until the image dimensions are known.
	PanoramaWidth float64
	// TrackWidth is the panorama plus every auxiliary panel.
	TrackWidth float64
	// MaxScroll is the largest valid scroll position. Never negative.
	MaxScroll float64
	// PageHeight is the virtual document height: MaxScroll plus one viewport.
	PageHeight float64

	panels []float64
}

// ComputeGeometry derives the track layout from the panorama's natural size,
// the viewport and the fixed panel widths. Until img is known the track is
// empty and MaxScroll is zero.
func ComputeGeometry(img ImageSize, viewport Size, panels []float64) Geometry {
	vw := math.Max(0, viewport.Width)
	vh := math.Max(0, viewport.Height)
	g := Geometry{
		Viewport:   Size{Width: vw, Height: vh},
		PageHeight: vh,
		panels:     append([]float64(nil), panels...),
	}
	if !img.Known() {
		return g
	}

	g.PanoramaWidth = float64(img.Width) / float64(img.Height) * vh
	g.TrackWidth = g.PanoramaWidth
	for _, w := range panels {
		g.TrackWidth += math.Max(0, w)
	}
	g.MaxScroll = math.Max(0, g.TrackWidth-vw)
	g.PageHeight = g.MaxScroll + vh
	return g
}

// Known reports whether the panorama dimensions have resolved.
func (g Geometry) Known() bool {
	return g.PanoramaWidth > 0
}

// PanelOffset returns the track x coordinate of the left edge of panel i.
// Out-of-range indices are clamped to the track ends.
func (g Geometry) PanelOffset(i int) float64 {
	x := g.PanoramaWidth
	for j := 0; j < i && j < len(g.panels); j++ {
		x += math.Max(0, g.panels[j])
	}
	return x
}

// PanelWidth returns the width of panel i, or 0 if i is out of range.
func (g Geometry) PanelWidth(i int) float64 {
	if i < 0 || i >= len(g.panels) {
		return 0
	}
	return math.Max(0, g.panels[i])
}
