package app

import (
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"linphase/hal"
	"linphase/mathlet/fonts/mathfont"
	"linphase/mathlet/gfx"
	"linphase/mathlet/kernel"
)

const (
	alertLineHeight = 12
	alertMargin     = 16
)

var (
	alertBG     = color.RGBA{R: 0x20, G: 0x08, B: 0x08, A: 0xFF}
	alertBorder = color.RGBA{R: 0xE0, G: 0x40, B: 0x40, A: 0xFF}
	alertFG     = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
)

// installPanicHandler reports the first task panic to the log and paints it
// over the widget. The panicking task has already stopped; the rest of the
// system keeps running so the host loop can still exit.
func installPanicHandler(h hal.HAL) {
	kernel.SetPanicHandler(func(info kernel.PanicInfo) {
		lines := []string{
			info.String(),
		}
		if l := h.Logger(); l != nil {
			l.WriteLineString("app: " + lines[0])
			for _, line := range strings.Split(string(info.Stack), "\n") {
				if line != "" {
					l.WriteLineString(line)
				}
			}
		}
		lines = append(lines, "The tool is disabled.")
		showAlert(h, lines...)
	})
}

// showAlert clears the screen and prints lines in a framed box, wrapped to
// the framebuffer width.
func showAlert(h hal.HAL, lines ...string) {
	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}
	c := gfx.NewCanvas(fb)
	drawAlert(c, lines)
	_ = c.Display()
}

func drawAlert(c *gfx.Canvas, lines []string) {
	b := c.Bounds()
	c.Fill(b, alertBG)

	adv := gfx.TextWidth(mathfont.Small, "0")
	if adv <= 0 {
		return
	}
	cols := (b.Dx() - 2*alertMargin - 8) / adv
	if cols <= 0 {
		cols = 1
	}

	var wrapped []string
	for _, line := range lines {
		for len(line) > 0 {
			chunk, rest := takeRunes(line, cols)
			wrapped = append(wrapped, chunk)
			line = strings.TrimLeft(rest, " ")
		}
	}

	box := image.Rect(b.Min.X+alertMargin, b.Min.Y+alertMargin, b.Max.X-alertMargin, b.Min.Y+alertMargin+len(wrapped)*alertLineHeight+8)
	box = box.Intersect(b)
	c.StrokeRect(box, alertBorder)

	y := box.Min.Y + alertLineHeight
	for _, line := range wrapped {
		if y > box.Max.Y {
			break
		}
		c.Text(box.Min.X+4, y, line, mathfont.Small, alertFG, gfx.AlignLeft)
		y += alertLineHeight
	}
}

func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	if len(s) <= n {
		return s, ""
	}
	var i, count int
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	if i >= len(s) {
		return s, ""
	}
	return s[:i], s[i:]
}
