package gfx

import (
	"image"
	"image/color"

	"golang.org/x/image/vector"
)

// FillPolygon fills the closed polygon through pts with anti-aliased edges.
// Vertices are pixel centres, matching LineF.
func (c *Canvas) FillPolygon(pts []Vec, col color.RGBA) {
	c.fillPolygon(pts, col, 0xFF)
}

// FillPolygonAlpha is FillPolygon with coverage scaled by alpha, used for
// translucent zone shading.
func (c *Canvas) FillPolygonAlpha(pts []Vec, col color.RGBA, alpha uint8) {
	c.fillPolygon(pts, col, alpha)
}

func (c *Canvas) fillPolygon(pts []Vec, col color.RGBA, alpha uint8) {
	if len(pts) < 3 || alpha == 0 {
		return
	}
	for _, p := range pts {
		if !finite(p) {
			return
		}
	}
	r := rectOf(pts).Intersect(c.clip)
	if r.Empty() {
		return
	}
	w, h := r.Dx(), r.Dy()

	if c.raster == nil {
		c.raster = vector.NewRasterizer(w, h)
	} else {
		c.raster.Reset(w, h)
	}
	z := c.raster
	ox := float32(r.Min.X) - 0.5
	oy := float32(r.Min.Y) - 0.5
	z.MoveTo(float32(pts[0].X)-ox, float32(pts[0].Y)-oy)
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X)-ox, float32(p.Y)-oy)
	}
	z.ClosePath()

	if c.mask == nil || len(c.mask.Pix) < w*h {
		c.mask = image.NewAlpha(image.Rect(0, 0, w, h))
	} else {
		c.mask.Rect = image.Rect(0, 0, w, h)
		c.mask.Stride = w
		clear(c.mask.Pix[:w*h])
	}
	z.Draw(c.mask, c.mask.Rect, image.Opaque, image.Point{})

	for y := 0; y < h; y++ {
		row := c.mask.Pix[y*w : y*w+w]
		for x, a := range row {
			if alpha != 0xFF {
				a = uint8((uint16(a)*uint16(alpha) + 0x7F) / 0xFF)
			}
			if a == 0 {
				continue
			}
			c.blend(r.Min.X+x, r.Min.Y+y, col, a)
		}
	}
}
