package gfx

import (
	"image/color"

	"tinygo.org/x/tinyfont"
)

// Align positions text horizontally relative to the x passed to Text.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// TextWidth returns the advance width of s in pixels.
func TextWidth(f tinyfont.Fonter, s string) int {
	if s == "" {
		return 0
	}
	_, outbox := tinyfont.LineWidth(f, s)
	return int(outbox)
}

// Text draws s with its baseline at y.
func (c *Canvas) Text(x, y int, s string, f tinyfont.Fonter, col color.RGBA, align Align) {
	switch align {
	case AlignCenter:
		x -= TextWidth(f, s) / 2
	case AlignRight:
		x -= TextWidth(f, s)
	}
	tinyfont.WriteLine(c, f, int16(x), int16(y), s, col)
}
