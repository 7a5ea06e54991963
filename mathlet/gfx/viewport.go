package gfx

import (
	"image"
	"math"
)

// Viewport maps a plot-space range onto a pixel rectangle. The first and
// last pixel rows and columns sit exactly on the range bounds; y grows up
// in plot space and down on screen.
type Viewport struct {
	Rect                   image.Rectangle
	XMin, XMax, YMin, YMax float64
}

// ToPixel maps plot coordinates to sub-pixel screen coordinates.
func (v Viewport) ToPixel(x, y float64) Vec {
	nx := float64(v.Rect.Dx() - 1)
	ny := float64(v.Rect.Dy() - 1)
	return Vec{
		X: float64(v.Rect.Min.X) + (x-v.XMin)/(v.XMax-v.XMin)*nx,
		Y: float64(v.Rect.Min.Y) + (v.YMax-y)/(v.YMax-v.YMin)*ny,
	}
}

// FromPixel maps a screen pixel back to plot coordinates.
func (v Viewport) FromPixel(px, py int) (x, y float64) {
	nx := float64(v.Rect.Dx() - 1)
	ny := float64(v.Rect.Dy() - 1)
	ix := float64(px - v.Rect.Min.X)
	iy := float64(py - v.Rect.Min.Y)
	x = (v.XMin*(nx-ix) + v.XMax*ix) / nx
	y = (v.YMax*(ny-iy) + v.YMin*iy) / ny
	return x, y
}

func (v Viewport) Contains(px, py int) bool {
	return image.Pt(px, py).In(v.Rect)
}

// ClampPixel moves (px, py) to the nearest pixel inside the viewport.
func (v Viewport) ClampPixel(px, py int) (int, int) {
	px = min(max(px, v.Rect.Min.X), v.Rect.Max.X-1)
	py = min(max(py, v.Rect.Min.Y), v.Rect.Max.Y-1)
	return px, py
}

// ClampPlot clamps plot coordinates into the viewport range.
func (v Viewport) ClampPlot(x, y float64) (float64, float64) {
	return math.Min(math.Max(x, v.XMin), v.XMax), math.Min(math.Max(y, v.YMin), v.YMax)
}
