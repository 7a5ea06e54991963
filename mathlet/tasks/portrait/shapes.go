package portrait

import "linphase/mathlet/phase"

// ShapeKind says how a drawable's geometry is interpreted.
//
//	Curve    polyline through every point
//	Line     segment from point 0 to point 1
//	Arrow    segment from tail (point 0) to tip (point 1) with a head at the tip
//	Diamond  marker centred on point 0
//	Polygon  filled polygon through every point
//	Cross    crosshair marker centred on point 0
//	Text     Style.Label anchored at point 0
type ShapeKind uint8

const (
	ShapeCurve ShapeKind = iota + 1
	ShapeLine
	ShapeArrow
	ShapeDiamond
	ShapePolygon
	ShapeCross
	ShapeText
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCurve:
		return "curve"
	case ShapeLine:
		return "line"
	case ShapeArrow:
		return "arrow"
	case ShapeDiamond:
		return "diamond"
	case ShapePolygon:
		return "polygon"
	case ShapeCross:
		return "cross"
	case ShapeText:
		return "text"
	default:
		return "unknown"
	}
}

// Class is the visual treatment of a drawable.
type Class uint8

const (
	ClassCurve Class = iota
	ClassMarker
	ClassThick
	ClassZone
	ClassGuide
	ClassText
	ClassTextCenter
	ClassTitle
)

// Style is the appearance of a drawable. Color zero is the neutral
// foreground.
type Style struct {
	Class Class
	Color phase.Color
	Label string
}

// CurveStyle is used for solution curves and eigen-lines.
func CurveStyle(c phase.Color) Style { return Style{Class: ClassCurve, Color: c} }

// MarkerStyle is used for arrows and diamonds.
func MarkerStyle(c phase.Color) Style { return Style{Class: ClassMarker, Color: c} }

// Drawable is a shape owned by a Scene.
type Drawable interface {
	SetGeometry(geom []phase.Point)
	SetStyle(st Style)
	SetVisible(v bool)
}

// Scene creates and destroys drawables. Geometry passed to Add or
// SetGeometry is copied.
type Scene interface {
	Add(kind ShapeKind, geom []phase.Point, st Style) Drawable
	Remove(d Drawable)
}

// ShapeGroup is an ordered collection of drawables of one kind.
type ShapeGroup struct {
	kind  ShapeKind
	items []Drawable
}

func newShapeGroup(kind ShapeKind) ShapeGroup { return ShapeGroup{kind: kind} }

func (g *ShapeGroup) Kind() ShapeKind { return g.kind }

func (g *ShapeGroup) Len() int { return len(g.items) }

func (g *ShapeGroup) At(i int) Drawable { return g.items[i] }

func (g *ShapeGroup) Add(s Scene, geom []phase.Point, st Style) Drawable {
	d := s.Add(g.kind, geom, st)
	g.items = append(g.items, d)
	return d
}

// Set updates geometry and style of item i in place.
func (g *ShapeGroup) Set(i int, geom []phase.Point, st Style) {
	d := g.items[i]
	d.SetGeometry(geom)
	d.SetStyle(st)
}

func (g *ShapeGroup) RemoveLast(s Scene) {
	n := len(g.items)
	if n == 0 {
		return
	}
	s.Remove(g.items[n-1])
	g.items[n-1] = nil
	g.items = g.items[:n-1]
}

func (g *ShapeGroup) Clear(s Scene) {
	for i, d := range g.items {
		s.Remove(d)
		g.items[i] = nil
	}
	g.items = g.items[:0]
}
