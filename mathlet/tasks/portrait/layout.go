package portrait

import (
	"image"

	"linphase/mathlet/gfx"
	"linphase/mathlet/phase"
)

// Parameter ranges.
const (
	thetaMin = 0.0
	thetaMax = 180.0
	sMin     = -4.0
	sMax     = 4.0
	trMin    = -4.0
	trMax    = 4.0
	detMin   = -4.0
	detMax   = 4.0
	plotMin  = -4.0
	plotMax  = 4.0
)

// Minimum framebuffer size the layout fits in.
const (
	MinWidth  = 800
	MinHeight = 600
)

// ViewID names an interactive region of the widget.
type ViewID uint8

const (
	ViewNone ViewID = iota
	ViewSGraph
	ViewThetaSlider
	ViewSSlider
	ViewDetGraph
	ViewTrSlider
	ViewDetSlider
	ViewPortrait
	ViewClear
)

func (v ViewID) String() string {
	switch v {
	case ViewSGraph:
		return "s-graph"
	case ViewThetaSlider:
		return "theta-slider"
	case ViewSSlider:
		return "s-slider"
	case ViewDetGraph:
		return "det-graph"
	case ViewTrSlider:
		return "tr-slider"
	case ViewDetSlider:
		return "det-slider"
	case ViewPortrait:
		return "portrait"
	case ViewClear:
		return "clear"
	default:
		return "none"
	}
}

// Layout is the pixel placement of every view. Graph and slider viewports
// carry the value range their pixels map to; sliders use one axis only.
type Layout struct {
	SGraph      gfx.Viewport
	ThetaSlider gfx.Viewport
	SSlider     gfx.Viewport
	DetGraph    gfx.Viewport
	TrSlider    gfx.Viewport
	DetSlider   gfx.Viewport
	Portrait    gfx.Viewport
	Clear       image.Rectangle

	// Text anchors (baselines).
	XReadout, YReadout image.Point
	Zone, DiffEq       image.Point
	MatrixLabel        image.Point
	A, B, C, D         image.Point
	Lambda1, Lambda2   image.Point
}

const (
	graphSize    = 161
	portraitSize = 401
	sliderThick  = 20
)

// DefaultLayout places the widget on an 800×600 canvas: parameter graphs
// on the left, the phase portrait on the right, readouts below it.
func DefaultLayout() Layout {
	sg := image.Rect(80, 35, 80+graphSize, 35+graphSize)
	dg := image.Rect(80, 337, 80+graphSize, 337+graphSize)
	pg := image.Rect(370, 35, 370+portraitSize, 35+portraitSize)

	l := Layout{
		SGraph:      gfx.Viewport{Rect: sg, XMin: thetaMin, XMax: thetaMax, YMin: sMin, YMax: sMax},
		ThetaSlider: gfx.Viewport{Rect: image.Rect(sg.Min.X, sg.Max.Y+30, sg.Max.X, sg.Max.Y+30+sliderThick), XMin: thetaMin, XMax: thetaMax, YMin: 0, YMax: 1},
		SSlider:     gfx.Viewport{Rect: image.Rect(sg.Min.X-30, sg.Min.Y, sg.Min.X-30+sliderThick, sg.Max.Y), XMin: 0, XMax: 1, YMin: sMin, YMax: sMax},
		DetGraph:    gfx.Viewport{Rect: dg, XMin: trMin, XMax: trMax, YMin: detMin, YMax: detMax},
		TrSlider:    gfx.Viewport{Rect: image.Rect(dg.Min.X, dg.Max.Y+30, dg.Max.X, dg.Max.Y+30+sliderThick), XMin: trMin, XMax: trMax, YMin: 0, YMax: 1},
		DetSlider:   gfx.Viewport{Rect: image.Rect(dg.Min.X-30, dg.Min.Y, dg.Min.X-30+sliderThick, dg.Max.Y), XMin: 0, XMax: 1, YMin: detMin, YMax: detMax},
		Portrait:    gfx.Viewport{Rect: pg, XMin: plotMin, XMax: plotMax, YMin: plotMin, YMax: plotMax},
		Clear:       image.Rect(pg.Max.X-70, pg.Max.Y+25, pg.Max.X, pg.Max.Y+45),
	}

	l.XReadout = image.Pt(pg.Min.X, pg.Max.Y+20)
	l.YReadout = image.Pt(pg.Min.X, pg.Max.Y+40)
	l.Zone = image.Pt(pg.Min.X+portraitSize/2, pg.Max.Y+20)
	l.DiffEq = image.Pt(l.Zone.X, l.Zone.Y+20)
	l.MatrixLabel = image.Pt(pg.Min.X, pg.Max.Y+100)
	l.A = image.Pt(l.MatrixLabel.X+45, l.MatrixLabel.Y-10)
	l.B = image.Pt(l.A.X+60, l.A.Y)
	l.C = image.Pt(l.A.X, l.A.Y+20)
	l.D = image.Pt(l.B.X, l.C.Y)
	l.Lambda1 = image.Pt(l.B.X+166, l.B.Y)
	l.Lambda2 = image.Pt(l.D.X+166, l.D.Y)
	return l
}

// PlotBounds is the portrait's plotting range.
func (l Layout) PlotBounds() phase.Bounds {
	return phase.Bounds{XMin: l.Portrait.XMin, XMax: l.Portrait.XMax, YMin: l.Portrait.YMin, YMax: l.Portrait.YMax}
}

func (l Layout) rect(id ViewID) image.Rectangle {
	switch id {
	case ViewSGraph:
		return l.SGraph.Rect
	case ViewThetaSlider:
		return l.ThetaSlider.Rect
	case ViewSSlider:
		return l.SSlider.Rect
	case ViewDetGraph:
		return l.DetGraph.Rect
	case ViewTrSlider:
		return l.TrSlider.Rect
	case ViewDetSlider:
		return l.DetSlider.Rect
	case ViewPortrait:
		return l.Portrait.Rect
	case ViewClear:
		return l.Clear
	default:
		return image.Rectangle{}
	}
}

var hitOrder = [...]ViewID{
	ViewClear, ViewPortrait, ViewSGraph, ViewDetGraph,
	ViewThetaSlider, ViewSSlider, ViewTrSlider, ViewDetSlider,
}

// HitTest returns the view under pixel (x, y).
func (l Layout) HitTest(x, y int) ViewID {
	p := image.Pt(x, y)
	for _, id := range hitOrder {
		if p.In(l.rect(id)) {
			return id
		}
	}
	return ViewNone
}

// Clamp moves (x, y) into the view's pixel rectangle.
func (l Layout) Clamp(id ViewID, x, y int) (int, int) {
	r := l.rect(id)
	if r.Empty() {
		return x, y
	}
	x = min(max(x, r.Min.X), r.Max.X-1)
	y = min(max(y, r.Min.Y), r.Max.Y-1)
	return x, y
}
