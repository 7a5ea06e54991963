package gfx

import (
	"image"
	"image/color"
	"math"

	"linphase/hal"
)

// Vec is a point in pixel space with sub-pixel precision.
type Vec struct {
	X, Y float64
}

// Line draws a Bresenham line between two pixel centres, both included.
func (c *Canvas) Line(x0, y0, x1, y1 int, col color.RGBA) {
	c.brush(x0, y0, x1, y1, hal.RGB565(col), 1)
}

// LineF clips a sub-pixel segment to the clip rectangle and draws it with
// a square pen of the given width.
func (c *Canvas) LineF(a, b Vec, col color.RGBA, width int) {
	if c.clip.Empty() || !finite(a) || !finite(b) {
		return
	}
	xmin, ymin := float64(c.clip.Min.X), float64(c.clip.Min.Y)
	xmax, ymax := float64(c.clip.Max.X-1), float64(c.clip.Max.Y-1)
	x0, y0, x1, y1, ok := clipLineToRect(a.X, a.Y, b.X, b.Y, xmin, ymin, xmax, ymax)
	if !ok {
		return
	}
	c.brush(roundInt(x0), roundInt(y0), roundInt(x1), roundInt(y1), hal.RGB565(col), width)
}

// Polyline draws consecutive segments through pts.
func (c *Canvas) Polyline(pts []Vec, col color.RGBA, width int) {
	if len(pts) == 1 {
		c.LineF(pts[0], pts[0], col, width)
		return
	}
	for i := 1; i < len(pts); i++ {
		c.LineF(pts[i-1], pts[i], col, width)
	}
}

// DashedLineF draws a segment as alternating on/off runs of dash pixels.
func (c *Canvas) DashedLineF(a, b Vec, col color.RGBA, dash float64) {
	length := math.Hypot(b.X-a.X, b.Y-a.Y)
	if dash <= 0 || length <= dash {
		c.LineF(a, b, col, 1)
		return
	}
	ux, uy := (b.X-a.X)/length, (b.Y-a.Y)/length
	for t := 0.0; t < length; t += 2 * dash {
		end := math.Min(t+dash, length)
		c.LineF(Vec{a.X + ux*t, a.Y + uy*t}, Vec{a.X + ux*end, a.Y + uy*end}, col, 1)
	}
}

func (c *Canvas) brush(x0, y0, x1, y1 int, pixel uint16, width int) {
	plot := func(x, y int) { c.set(x, y, pixel) }
	if width > 1 {
		lo := -(width - 1) / 2
		plot = func(x, y int) {
			for dy := lo; dy < lo+width; dy++ {
				for dx := lo; dx < lo+width; dx++ {
					c.set(x+dx, y+dy, pixel)
				}
			}
		}
	}

	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipLineToRect is Liang-Barsky clipping against an inclusive rectangle.
func clipLineToRect(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (cx0, cy0, cx1, cy1 float64, ok bool) {
	dx := x1 - x0
	dy := y1 - y0
	u1 := 0.0
	u2 := 1.0

	p := [4]float64{-dx, dx, -dy, dy}
	q := [4]float64{x0 - xmin, xmax - x0, y0 - ymin, ymax - y0}
	for i := 0; i < 4; i++ {
		if p[i] == 0 {
			if q[i] < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		t := q[i] / p[i]
		if p[i] < 0 {
			if t > u2 {
				return 0, 0, 0, 0, false
			}
			if t > u1 {
				u1 = t
			}
		} else {
			if t < u1 {
				return 0, 0, 0, 0, false
			}
			if t < u2 {
				u2 = t
			}
		}
	}

	cx0 = clampF(x0+u1*dx, xmin, xmax)
	cy0 = clampF(y0+u1*dy, ymin, ymax)
	cx1 = clampF(x0+u2*dx, xmin, xmax)
	cy1 = clampF(y0+u2*dy, ymin, ymax)
	return cx0, cy0, cx1, cy1, true
}

func finite(v Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

func roundInt(v float64) int { return int(math.Round(v)) }

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func rectOf(pts []Vec) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
}
