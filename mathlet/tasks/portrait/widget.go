package portrait

import (
	"image"
	"math"

	"linphase/hal"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
)

const (
	defaultTheta = 0.0
	defaultS     = 1.0
	defaultTr    = 1.0
	defaultDet   = 1.0

	seedRadius = 2.0
	nudge      = 0.05
)

// Scenes are the retained shape layers the widget draws into. Portrait,
// SGraph and DetGraph use their graph's plot coordinates; Screen uses
// pixels.
type Scenes struct {
	Portrait Scene
	SGraph   Scene
	DetGraph Scene
	Screen   Scene
}

// WidgetState is the complete state of one widget instance. Handlers run
// one at a time on the owning task's goroutine.
type WidgetState struct {
	Theta, S, Tr, Det float64

	M     phase.Matrix2D
	Eigen phase.EigenResult
	Init  [4]phase.Point

	// Boundary is the curve the last trace/det update snapped onto.
	Boundary phase.Boundary

	layout Layout
	scenes Scenes
	snap   phase.Snapper
	shapes *ShapeManager

	band     Drawable
	bandLow  Drawable
	bandHigh Drawable
	sCross   Drawable
	detCross Drawable
	text     readouts

	capture ViewID
	lastPx  image.Point // last pixel applied to the captured view
	hover   bool
	cursor  phase.Point
}

// NewWidget builds a widget in its default state: theta 0, s 1, tr 1,
// det 1.
func NewWidget(sc Scenes, l Layout) *WidgetState {
	w := &WidgetState{
		Theta:  defaultTheta,
		S:      defaultS,
		Tr:     defaultTr,
		Det:    defaultDet,
		layout: l,
		scenes: sc,
		shapes: NewShapeManager(sc.Portrait, l.PlotBounds()),
	}
	w.snap = phase.NewSnapper(phase.Bounds{XMin: trMin, XMax: trMax, YMin: detMin, YMax: detMax}, w.Tr, w.Det)
	w.Init = initPoints(w.Theta)

	w.addSGraphChrome()
	w.addDetGraphChrome()
	w.text = newReadouts(sc.Screen, l)

	w.updateSGraph()
	w.calculateMatrix()
	w.derive()
	return w
}

func (w *WidgetState) Layout() Layout { return w.layout }

func (w *WidgetState) Shapes() *ShapeManager { return w.shapes }

// Hover returns the cursor position over the portrait, if any.
func (w *WidgetState) Hover() (phase.Point, bool) { return w.cursor, w.hover }

func (w *WidgetState) inputs() Inputs {
	return Inputs{M: w.M, Eigen: w.Eigen, Theta: w.Theta, S: w.S, Tr: w.Tr, Det: w.Det, Init: w.Init}
}

// OnTheta handles the theta slider.
func (w *WidgetState) OnTheta(theta float64) {
	w.Theta = phase.Clamp(theta, thetaMin, thetaMax)
	w.Init = initPoints(w.Theta)
	w.OnTraceDet(w.Tr, w.Det)
}

// OnS handles the s slider.
func (w *WidgetState) OnS(s float64) {
	w.S = phase.Clamp(s, sMin, sMax)
	w.OnTraceDet(w.Tr, w.Det)
}

// OnSGraph handles a point picked on the (theta, s) graph.
func (w *WidgetState) OnSGraph(theta, s float64) {
	w.Theta = phase.Clamp(theta, thetaMin, thetaMax)
	w.S = phase.Clamp(s, sMin, sMax)
	w.Init = initPoints(w.Theta)
	w.OnTraceDet(w.Tr, w.Det)
}

// OnDetGraph handles a point picked on the trace/determinant graph.
func (w *WidgetState) OnDetGraph(tr, det float64) {
	w.OnTraceDet(tr, det)
	w.OnPortraitLeave()
}

// OnTraceDet moves the trace/determinant point, snapping it onto a nearby
// classification boundary, and rebuilds everything derived from it.
func (w *WidgetState) OnTraceDet(tr, det float64) {
	tr = phase.Clamp(tr, trMin, trMax)
	det = phase.Clamp(det, detMin, detMax)
	w.Tr, w.Det, w.Boundary = w.snap.Apply(tr, det)
	w.snap.Accept(w.Tr, w.Det)

	w.updateSGraph()
	w.calculateMatrix()
	w.derive()
}

// OnPortraitDown places a new user curve through p.
func (w *WidgetState) OnPortraitDown(p phase.Point) {
	w.shapes.AddUser(w.inputs(), p)
	w.OnPortraitHover(p)
}

// OnPortraitDrag re-seeds the last user curve at p.
func (w *WidgetState) OnPortraitDrag(p phase.Point) {
	w.shapes.MoveUser(w.inputs(), p)
	w.OnPortraitHover(p)
}

func (w *WidgetState) OnPortraitHover(p phase.Point) {
	w.hover = true
	w.cursor = p
	w.text.showCursor(p)
}

func (w *WidgetState) OnPortraitLeave() {
	w.hover = false
	w.text.hideCursor()
}

// Clear removes every pre-drawn and user shape. They come back with the
// next parameter change.
func (w *WidgetState) Clear() {
	w.shapes.ClearPreDrawn()
	w.shapes.ClearUser()
}

// Pointer routes a pointer event in framebuffer pixels. A press captures the
// view under it until release; drags are clamped into the captured view.
// It reports whether anything visible changed.
func (w *WidgetState) Pointer(action proto.PointerAction, x, y int) bool {
	switch action {
	case proto.PointerDown:
		id := w.layout.HitTest(x, y)
		if id == ViewNone {
			return false
		}
		w.capture = id
		w.lastPx = image.Pt(x, y)
		w.dispatch(id, x, y, true)
		return true

	case proto.PointerDrag:
		if w.capture == ViewNone {
			return false
		}
		x, y = w.layout.Clamp(w.capture, x, y)
		w.lastPx = image.Pt(x, y)
		w.dispatch(w.capture, x, y, false)
		return true

	case proto.PointerUp:
		// The release position counts as a last drag when it differs from
		// what was applied, since drags may be dropped on the way in.
		id := w.capture
		w.capture = ViewNone
		if id == ViewNone || id == ViewClear {
			return false
		}
		x, y = w.layout.Clamp(id, x, y)
		if image.Pt(x, y) == w.lastPx {
			return false
		}
		w.dispatch(id, x, y, false)
		return true

	case proto.PointerMove:
		if w.layout.Portrait.Contains(x, y) {
			px, py := w.layout.Portrait.FromPixel(x, y)
			w.OnPortraitHover(phase.Point{X: px, Y: py})
			return true
		}
		if w.hover {
			w.OnPortraitLeave()
			return true
		}

	case proto.PointerLeave:
		if w.hover {
			w.OnPortraitLeave()
			return true
		}
	}
	return false
}

func (w *WidgetState) dispatch(id ViewID, x, y int, down bool) {
	l := &w.layout
	switch id {
	case ViewSGraph:
		w.OnSGraph(l.SGraph.FromPixel(x, y))
	case ViewThetaSlider:
		theta, _ := l.ThetaSlider.FromPixel(x, y)
		w.OnTheta(theta)
	case ViewSSlider:
		_, s := l.SSlider.FromPixel(x, y)
		w.OnS(s)
	case ViewDetGraph:
		w.OnDetGraph(l.DetGraph.FromPixel(x, y))
	case ViewTrSlider:
		tr, _ := l.TrSlider.FromPixel(x, y)
		w.OnTraceDet(tr, w.Det)
	case ViewDetSlider:
		_, det := l.DetSlider.FromPixel(x, y)
		w.OnTraceDet(w.Tr, det)
	case ViewPortrait:
		px, py := l.Portrait.FromPixel(x, y)
		p := phase.Point{X: px, Y: py}
		if down {
			w.OnPortraitDown(p)
		} else {
			w.OnPortraitDrag(p)
		}
	case ViewClear:
		if down {
			w.Clear()
		}
	}
}

// Key handles a key press: c clears, the arrow keys nudge the trace
// (left/right) and determinant (up/down), Escape drops pointer capture.
func (w *WidgetState) Key(code hal.KeyCode, r rune) bool {
	switch {
	case r == 'c' || r == 'C':
		w.Clear()
	case code == hal.KeyLeft:
		w.OnTraceDet(w.Tr-nudge, w.Det)
	case code == hal.KeyRight:
		w.OnTraceDet(w.Tr+nudge, w.Det)
	case code == hal.KeyUp:
		w.OnTraceDet(w.Tr, w.Det+nudge)
	case code == hal.KeyDown:
		w.OnTraceDet(w.Tr, w.Det-nudge)
	case code == hal.KeyEscape:
		w.capture = ViewNone
		w.OnPortraitLeave()
	default:
		return false
	}
	return true
}

// updateSGraph pushes s out of the band of values that cannot realize the
// current trace and determinant, and moves the s-graph markers.
func (w *WidgetState) updateSGraph() {
	omega, ok := phase.ForbiddenBand(w.Tr, w.Det)
	if ok {
		w.S = phase.PushOutOfBand(w.S, omega)
		w.band.SetGeometry([]phase.Point{
			{X: thetaMin - 1, Y: -omega}, {X: thetaMax + 1, Y: -omega},
			{X: thetaMax + 1, Y: omega}, {X: thetaMin - 1, Y: omega},
		})
		w.bandLow.SetGeometry([]phase.Point{{X: thetaMin, Y: -omega}, {X: thetaMax, Y: -omega}})
		w.bandHigh.SetGeometry([]phase.Point{{X: thetaMin, Y: omega}, {X: thetaMax, Y: omega}})
	}
	w.band.SetVisible(ok)
	w.bandLow.SetVisible(ok)
	w.bandHigh.SetVisible(ok)
	w.sCross.SetGeometry([]phase.Point{{X: w.Theta, Y: w.S}})
}

func (w *WidgetState) calculateMatrix() {
	w.M = phase.CalculateMatrix(phase.DegToRad(w.Theta), w.S, w.Tr, w.Det)
}

// derive finishes every update: eigen classification, shapes and text.
func (w *WidgetState) derive() {
	w.detCross.SetGeometry([]phase.Point{{X: w.Tr, Y: w.Det}})
	w.Eigen = phase.Eigen(w.Tr, w.Det)
	w.shapes.Reconcile(w.inputs())
	w.text.update(w.M, w.Eigen)
}

func (w *WidgetState) addSGraphChrome() {
	sc := w.scenes.SGraph
	w.band = sc.Add(ShapePolygon, nil, Style{Class: ClassZone})
	w.bandLow = sc.Add(ShapeLine, nil, Style{Class: ClassGuide})
	w.bandHigh = sc.Add(ShapeLine, nil, Style{Class: ClassGuide})
	w.sCross = sc.Add(ShapeCross, []phase.Point{{X: w.Theta, Y: w.S}}, Style{Class: ClassMarker})
}

const parabolaSamples = 161

func (w *WidgetState) addDetGraphChrome() {
	sc := w.scenes.DetGraph

	para := make([]phase.Point, parabolaSamples)
	inc := (trMax - trMin) / (parabolaSamples - 1)
	for i := range para {
		x := trMin + float64(i)*inc
		para[i] = phase.Point{X: x, Y: phase.Parabola(x)}
	}
	zone := func(c phase.Color) Style { return Style{Class: ClassZone, Color: c} }

	sc.Add(ShapePolygon, []phase.Point{{X: trMin, Y: 0}, {X: trMax, Y: 0}, {X: trMax, Y: detMin}, {X: trMin, Y: detMin}}, zone(phase.ColorCyan))
	sc.Add(ShapePolygon, append(para[:len(para):len(para)], phase.Point{X: trMax, Y: 0}, phase.Point{X: trMin, Y: 0}), zone(phase.ColorGreen))
	sc.Add(ShapePolygon, append(para[:len(para):len(para)], phase.Point{X: trMax, Y: detMax}, phase.Point{X: trMin, Y: detMax}), zone(phase.ColorYellow))
	sc.Add(ShapeCurve, para, CurveStyle(phase.ColorRed))
	sc.Add(ShapeLine, []phase.Point{{X: trMin, Y: 0}, {X: trMax, Y: 0}}, Style{Class: ClassThick, Color: phase.ColorRed})
	sc.Add(ShapeLine, []phase.Point{{X: 0, Y: 0}, {X: 0, Y: detMax}}, CurveStyle(phase.ColorRed))
	w.detCross = sc.Add(ShapeCross, []phase.Point{{X: w.Tr, Y: w.Det}}, Style{Class: ClassMarker})
}

// initPoints returns the four pre-drawn curve seeds on the circle of radius
// 2, a quarter turn apart starting at theta degrees.
func initPoints(theta float64) [4]phase.Point {
	sin, cos := math.Sincos(phase.DegToRad(theta))
	x, y := seedRadius*cos, seedRadius*sin
	return [4]phase.Point{{X: x, Y: y}, {X: -y, Y: x}, {X: -x, Y: -y}, {X: y, Y: -x}}
}
