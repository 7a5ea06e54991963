package portrait

import (
	"image"
	"image/color"
	"math"
	"slices"
	"strings"

	"linphase/mathlet/fonts/mathfont"
	"linphase/mathlet/gfx"
	"linphase/mathlet/phase"

	"tinygo.org/x/tinyfont"
)

var (
	colorBG      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xFF}
	colorFG      = color.RGBA{R: 0xEE, G: 0xEE, B: 0xEE, A: 0xFF}
	colorDim     = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xFF}
	colorPanelBG = color.RGBA{R: 0x08, G: 0x08, B: 0x08, A: 0xFF}
	colorFrame   = color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xFF}
	colorGrid    = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	colorAxis    = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}
	colorKnob    = color.RGBA{R: 0xCC, G: 0xCC, B: 0xCC, A: 0xFF}
	colorButton  = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
	colorCursor  = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xFF}

	colorCyan   = color.RGBA{R: 0x22, G: 0xCC, B: 0xDD, A: 0xFF}
	colorGreen  = color.RGBA{R: 0x44, G: 0xCC, B: 0x55, A: 0xFF}
	colorRed    = color.RGBA{R: 0xEE, G: 0x44, B: 0x44, A: 0xFF}
	colorYellow = color.RGBA{R: 0xEE, G: 0xCC, B: 0x22, A: 0xFF}
)

const zoneAlpha = 0x50

func classColor(c phase.Color) color.RGBA {
	switch c {
	case phase.ColorCyan:
		return colorCyan
	case phase.ColorGreen:
		return colorGreen
	case phase.ColorRed:
		return colorRed
	case phase.ColorYellow:
		return colorYellow
	default:
		return colorFG
	}
}

// fbScene is a Scene drawn in insertion order through a viewport.
type fbScene struct {
	vp    gfx.Viewport
	items []*fbDrawable
	path  []gfx.Vec
}

type fbDrawable struct {
	kind    ShapeKind
	geom    []phase.Point
	style   Style
	visible bool
}

func newFBScene(vp gfx.Viewport) *fbScene { return &fbScene{vp: vp} }

// screenViewport maps pixels to themselves.
func screenViewport(w, h int) gfx.Viewport {
	return gfx.Viewport{Rect: image.Rect(0, 0, w, h), XMin: 0, XMax: float64(w - 1), YMin: float64(h - 1), YMax: 0}
}

func (s *fbScene) Add(kind ShapeKind, geom []phase.Point, st Style) Drawable {
	d := &fbDrawable{kind: kind, geom: slices.Clone(geom), style: st, visible: true}
	s.items = append(s.items, d)
	return d
}

func (s *fbScene) Remove(d Drawable) {
	s.items = slices.DeleteFunc(s.items, func(it *fbDrawable) bool { return it == d })
}

func (s *fbScene) Len() int { return len(s.items) }

func (d *fbDrawable) SetGeometry(geom []phase.Point) { d.geom = append(d.geom[:0], geom...) }
func (d *fbDrawable) SetStyle(st Style)              { d.style = st }
func (d *fbDrawable) SetVisible(v bool)              { d.visible = v }

func (s *fbScene) draw(c *gfx.Canvas) {
	c.SetClip(s.vp.Rect)
	defer c.ResetClip()
	for _, d := range s.items {
		if d.visible && len(d.geom) > 0 {
			s.drawOne(c, d)
		}
	}
}

func (s *fbScene) drawOne(c *gfx.Canvas, d *fbDrawable) {
	col := classColor(d.style.Color)
	if d.style.Class == ClassGuide && d.style.Color == 0 {
		col = colorDim
	}
	width := 1
	if d.style.Class == ClassThick {
		width = 2
	}

	s.path = s.path[:0]
	for _, p := range d.geom {
		s.path = append(s.path, s.vp.ToPixel(p.X, p.Y))
	}
	pts := s.path

	switch d.kind {
	case ShapeCurve:
		c.Polyline(pts, col, width)
	case ShapeLine:
		if len(pts) >= 2 {
			c.LineF(pts[0], pts[1], col, width)
		}
	case ShapeArrow:
		if len(pts) >= 2 {
			drawArrow(c, pts[0], pts[1], col)
		}
	case ShapeDiamond:
		drawDiamond(c, pts[0], col)
	case ShapePolygon:
		if d.style.Class == ClassZone {
			if d.style.Color == 0 {
				col = colorDim
			}
			c.FillPolygonAlpha(pts, col, zoneAlpha)
		} else {
			c.FillPolygon(pts, col)
		}
	case ShapeCross:
		drawCross(c, pts[0], col)
	case ShapeText:
		drawLabel(c, pts[0], d.style, col)
	}
}

const (
	arrowHeadLen  = 6.0
	arrowHeadHalf = 3.0
	diamondRadius = 4.0
	crossRadius   = 6.0
)

// drawArrow draws the shaft and a filled head at tip. The head is always
// drawn, even when the shaft is shorter than the head.
func drawArrow(c *gfx.Canvas, tail, tip gfx.Vec, col color.RGBA) {
	c.LineF(tail, tip, col, 1)
	dx, dy := tip.X-tail.X, tip.Y-tail.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return
	}
	ux, uy := dx/n, dy/n
	base := gfx.Vec{X: tip.X - ux*arrowHeadLen, Y: tip.Y - uy*arrowHeadLen}
	c.FillPolygon([]gfx.Vec{
		tip,
		{X: base.X - uy*arrowHeadHalf, Y: base.Y + ux*arrowHeadHalf},
		{X: base.X + uy*arrowHeadHalf, Y: base.Y - ux*arrowHeadHalf},
	}, col)
}

func drawDiamond(c *gfx.Canvas, p gfx.Vec, col color.RGBA) {
	r := diamondRadius
	c.FillPolygon([]gfx.Vec{{X: p.X, Y: p.Y - r}, {X: p.X + r, Y: p.Y}, {X: p.X, Y: p.Y + r}, {X: p.X - r, Y: p.Y}}, col)
}

func drawCross(c *gfx.Canvas, p gfx.Vec, col color.RGBA) {
	c.LineF(gfx.Vec{X: p.X - crossRadius, Y: p.Y}, gfx.Vec{X: p.X + crossRadius, Y: p.Y}, col, 1)
	c.LineF(gfx.Vec{X: p.X, Y: p.Y - crossRadius}, gfx.Vec{X: p.X, Y: p.Y + crossRadius}, col, 1)
}

func drawLabel(c *gfx.Canvas, p gfx.Vec, st Style, col color.RGBA) {
	if st.Label == "" {
		return
	}
	var f tinyfont.Fonter = mathfont.Small
	align := gfx.AlignLeft
	switch st.Class {
	case ClassTextCenter:
		align = gfx.AlignCenter
	case ClassTitle:
		f = mathfont.Medium
		align = gfx.AlignCenter
	}
	c.Text(roundPx(p.X), roundPx(p.Y), st.Label, f, col, align)
}

// sceneSet owns the framebuffer-backed scenes of one widget.
type sceneSet struct {
	portrait, sGraph, detGraph, screen *fbScene
}

func newSceneSet(l Layout, w, h int) *sceneSet {
	return &sceneSet{
		portrait: newFBScene(l.Portrait),
		sGraph:   newFBScene(l.SGraph),
		detGraph: newFBScene(l.DetGraph),
		screen:   newFBScene(screenViewport(w, h)),
	}
}

func (s *sceneSet) scenes() Scenes {
	return Scenes{Portrait: s.portrait, SGraph: s.sGraph, DetGraph: s.detGraph, Screen: s.screen}
}

// render paints the whole widget. The caller presents the frame.
func render(c *gfx.Canvas, w *WidgetState, s *sceneSet) {
	l := w.Layout()
	c.ResetClip()
	c.Fill(c.Bounds(), colorBG)

	drawGraphFrame(c, l.SGraph, 22.5, 1, false)
	drawGraphFrame(c, l.DetGraph, 1, 1, true)
	drawGraphFrame(c, l.Portrait, 1, 1, true)

	s.sGraph.draw(c)
	s.detGraph.draw(c)

	if p, ok := w.Hover(); ok {
		c.SetClip(l.Portrait.Rect)
		px := l.Portrait.ToPixel(p.X, p.Y)
		r := l.Portrait.Rect
		c.DashedLineF(gfx.Vec{X: float64(r.Min.X), Y: px.Y}, gfx.Vec{X: float64(r.Max.X - 1), Y: px.Y}, colorCursor, 3)
		c.DashedLineF(gfx.Vec{X: px.X, Y: float64(r.Min.Y)}, gfx.Vec{X: px.X, Y: float64(r.Max.Y - 1)}, colorCursor, 3)
		c.ResetClip()
	}
	s.portrait.draw(c)

	drawHSlider(c, l.ThetaSlider, w.Theta, "θ", []sliderLabel{{0, "0"}, {90, "π/2"}, {180, "π"}}, 22.5, 45)
	drawVSlider(c, l.SSlider, w.S, "s", autoLabels(sMin, sMax, 2), 1, 2)
	drawHSlider(c, l.TrSlider, w.Tr, "tr", autoLabels(trMin, trMax, 2), 1, 2)
	drawVSlider(c, l.DetSlider, w.Det, "det", autoLabels(detMin, detMax, 2), 1, 2)

	p := l.Portrait
	c.Text(p.Rect.Max.X-8, int(p.ToPixel(0, 0).Y)-4, "x", mathfont.Small, colorDim, gfx.AlignRight)
	c.Text(int(p.ToPixel(0, 0).X)+6, p.Rect.Min.Y+10, "y", mathfont.Small, colorDim, gfx.AlignLeft)

	drawButton(c, l.Clear, "Clear")
	drawBrackets(c, l)

	s.screen.draw(c)
}

func drawGraphFrame(c *gfx.Canvas, vp gfx.Viewport, xStep, yStep float64, axes bool) {
	c.Fill(vp.Rect, colorPanelBG)
	c.SetClip(vp.Rect)
	for x := math.Ceil(vp.XMin/xStep) * xStep; x <= vp.XMax; x += xStep {
		p := vp.ToPixel(x, 0)
		c.LineF(gfx.Vec{X: p.X, Y: float64(vp.Rect.Min.Y)}, gfx.Vec{X: p.X, Y: float64(vp.Rect.Max.Y - 1)}, colorGrid, 1)
	}
	for y := math.Ceil(vp.YMin/yStep) * yStep; y <= vp.YMax; y += yStep {
		p := vp.ToPixel(0, y)
		c.LineF(gfx.Vec{X: float64(vp.Rect.Min.X), Y: p.Y}, gfx.Vec{X: float64(vp.Rect.Max.X - 1), Y: p.Y}, colorGrid, 1)
	}
	if axes {
		o := vp.ToPixel(0, 0)
		c.LineF(gfx.Vec{X: float64(vp.Rect.Min.X), Y: o.Y}, gfx.Vec{X: float64(vp.Rect.Max.X - 1), Y: o.Y}, colorAxis, 1)
		c.LineF(gfx.Vec{X: o.X, Y: float64(vp.Rect.Min.Y)}, gfx.Vec{X: o.X, Y: float64(vp.Rect.Max.Y - 1)}, colorAxis, 1)
	}
	c.ResetClip()
	c.StrokeRect(vp.Rect.Inset(-1), colorFrame)
}

type sliderLabel struct {
	v     float64
	label string
}

func autoLabels(lo, hi, step float64) []sliderLabel {
	var out []sliderLabel
	for v := lo; v <= hi+1e-9; v += step {
		out = append(out, sliderLabel{v, formatTick(v)})
	}
	return out
}

func formatTick(v float64) string {
	s := formatFixed(v)
	s, _ = strings.CutSuffix(s, ".00")
	return s
}

const knobHalf = 4

func drawHSlider(c *gfx.Canvas, vp gfx.Viewport, v float64, caption string, labels []sliderLabel, short, long float64) {
	r := vp.Rect
	mid := (r.Min.Y + r.Max.Y) / 2
	c.Fill(image.Rect(r.Min.X, mid-1, r.Max.X, mid+1), colorFrame)
	for t := vp.XMin; t <= vp.XMax+1e-9; t += short {
		x := roundPx(vp.ToPixel(t, 0).X)
		h := 3
		if isMultiple(t-vp.XMin, long) {
			h = 6
		}
		c.Fill(image.Rect(x, r.Max.Y-h, x+1, r.Max.Y), colorDim)
	}
	for _, lb := range labels {
		x := roundPx(vp.ToPixel(lb.v, 0).X)
		c.Text(x, r.Max.Y+11, lb.label, mathfont.Small, colorDim, gfx.AlignCenter)
	}
	c.Text(r.Min.X-8, mid+4, caption, mathfont.Small, colorFG, gfx.AlignRight)

	x := roundPx(vp.ToPixel(v, 0).X)
	c.Fill(image.Rect(x-knobHalf, r.Min.Y+2, x+knobHalf+1, r.Max.Y-2), colorKnob)
}

func drawVSlider(c *gfx.Canvas, vp gfx.Viewport, v float64, caption string, labels []sliderLabel, short, long float64) {
	r := vp.Rect
	mid := (r.Min.X + r.Max.X) / 2
	c.Fill(image.Rect(mid-1, r.Min.Y, mid+1, r.Max.Y), colorFrame)
	for t := vp.YMin; t <= vp.YMax+1e-9; t += short {
		y := roundPx(vp.ToPixel(0, t).Y)
		w := 3
		if isMultiple(t-vp.YMin, long) {
			w = 6
		}
		c.Fill(image.Rect(r.Min.X, y, r.Min.X+w, y+1), colorDim)
	}
	for _, lb := range labels {
		y := roundPx(vp.ToPixel(0, lb.v).Y)
		c.Text(r.Min.X-3, y+3, lb.label, mathfont.Small, colorDim, gfx.AlignRight)
	}
	c.Text(mid, r.Min.Y-6, caption, mathfont.Small, colorFG, gfx.AlignCenter)

	y := roundPx(vp.ToPixel(0, v).Y)
	c.Fill(image.Rect(r.Min.X+2, y-knobHalf, r.Max.X-2, y+knobHalf+1), colorKnob)
}

func drawButton(c *gfx.Canvas, r image.Rectangle, label string) {
	c.Fill(r, colorButton)
	c.StrokeRect(r, colorFrame)
	c.Text((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2+4, label, mathfont.Small, colorFG, gfx.AlignCenter)
}

// drawBrackets frames the matrix entries.
func drawBrackets(c *gfx.Canvas, l Layout) {
	top := l.MatrixLabel.Y - 30
	h := 50
	left := l.MatrixLabel.X + 32
	right := l.MatrixLabel.X + 150
	c.Line(left, top, left, top+h, colorFG)
	c.Line(left, top, left+6, top, colorFG)
	c.Line(left, top+h, left+6, top+h, colorFG)
	c.Line(right, top, right, top+h, colorFG)
	c.Line(right, top, right-6, top, colorFG)
	c.Line(right, top+h, right-6, top+h, colorFG)
}

func roundPx(v float64) int { return int(math.Round(v)) }

func isMultiple(v, step float64) bool {
	q := v / step
	return math.Abs(q-math.Round(q)) < 1e-9
}
