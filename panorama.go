package panorama

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint.
var ColorWhite = Color{1, 1, 1, 1}

// RGBA converts the color to a premultiplied color.RGBA for ebiten.
func (c Color) RGBA() color.RGBA {
	a := Clamp(c.A, 0, 1)
	return color.RGBA{
		R: uint8(Clamp(c.R, 0, 1)*a*255 + 0.5),
		G: uint8(Clamp(c.G, 0, 1)*a*255 + 0.5),
		B: uint8(Clamp(c.B, 0, 1)*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

// Size is a width/height pair in screen pixels.
type Size struct {
	Width, Height float64
}

// ImageSize holds the natural (decoded) pixel dimensions of an image.
// A zero width or height means the image has not resolved yet.
type ImageSize struct {
	Width, Height int
}

// Known reports whether both dimensions are positive.
func (s ImageSize) Known() bool {
	return s.Width > 0 && s.Height > 0
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() mgl64.Vec2 {
	return mgl64.Vec2{r.X + r.Width/2, r.Y + r.Height/2}
}
