// Package gfx draws lines, filled polygons and text onto an RGB565
// hal.Framebuffer.
package gfx

import (
	"image"
	"image/color"

	"linphase/hal"

	"golang.org/x/image/vector"
	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas is a drivers.Displayer over a framebuffer with a clip rectangle.
// Drawing outside the clip is discarded. A Canvas is not safe for
// concurrent use.
type Canvas struct {
	fb   hal.Framebuffer
	clip image.Rectangle

	raster *vector.Rasterizer
	mask   *image.Alpha
}

// NewCanvas returns a canvas covering the whole framebuffer. A nil or
// non-RGB565 framebuffer yields a canvas that draws nothing.
func NewCanvas(fb hal.Framebuffer) *Canvas {
	c := &Canvas{fb: fb}
	if fb != nil && fb.Format() != hal.PixelFormatRGB565 {
		c.fb = nil
	}
	c.ResetClip()
	return c
}

func (c *Canvas) Bounds() image.Rectangle {
	if c.fb == nil {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, c.fb.Width(), c.fb.Height())
}

// SetClip restricts drawing to r intersected with the framebuffer.
func (c *Canvas) SetClip(r image.Rectangle) { c.clip = r.Intersect(c.Bounds()) }

func (c *Canvas) ResetClip() { c.clip = c.Bounds() }

func (c *Canvas) Clip() image.Rectangle { return c.clip }

func (c *Canvas) Size() (x, y int16) {
	if c.fb == nil {
		return 0, 0
	}
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	c.set(int(x), int(y), hal.RGB565(col))
}

func (c *Canvas) Display() error {
	if c.fb == nil {
		return nil
	}
	return c.fb.Present()
}

func (c *Canvas) FillRectangle(x, y, width, height int16, col color.RGBA) error {
	c.Fill(image.Rect(int(x), int(y), int(x)+int(width), int(y)+int(height)), col)
	return nil
}

func (c *Canvas) SetRotation(rotation drivers.Rotation) error {
	_ = rotation
	return nil
}

// Fill paints r clipped to the current clip rectangle.
func (c *Canvas) Fill(r image.Rectangle, col color.RGBA) {
	r = r.Intersect(c.clip)
	if r.Empty() {
		return
	}
	pixel := hal.RGB565(col)
	lo := byte(pixel)
	hi := byte(pixel >> 8)

	buf := c.fb.Buffer()
	stride := c.fb.StrideBytes()
	for py := r.Min.Y; py < r.Max.Y; py++ {
		row := py * stride
		for px := r.Min.X; px < r.Max.X; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

// StrokeRect draws the one pixel outline just inside r.
func (c *Canvas) StrokeRect(r image.Rectangle, col color.RGBA) {
	if r.Empty() {
		return
	}
	c.Fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	c.Fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	c.Fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	c.Fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

func (c *Canvas) set(x, y int, pixel uint16) {
	if !(image.Point{X: x, Y: y}).In(c.clip) {
		return
	}
	buf := c.fb.Buffer()
	off := y*c.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

// blend mixes col over the pixel at (x, y) with coverage a.
func (c *Canvas) blend(x, y int, col color.RGBA, a uint8) {
	if a == 0xFF {
		c.set(x, y, hal.RGB565(col))
		return
	}
	if !(image.Point{X: x, Y: y}).In(c.clip) {
		return
	}
	buf := c.fb.Buffer()
	off := y*c.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	r, g, b := hal.UnpackRGB565(uint16(buf[off]) | uint16(buf[off+1])<<8)
	mix := func(dst, src uint8) uint8 {
		return uint8((uint16(src)*uint16(a) + uint16(dst)*uint16(0xFF-a) + 0x7F) / 0xFF)
	}
	pixel := hal.PackRGB565(mix(r, col.R), mix(g, col.G), mix(b, col.B))
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}
