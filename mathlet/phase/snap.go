package phase

import "math"

// Close is the distance under which a trace/det point counts as near a
// classification boundary.
const Close = 0.05

// Boundary names the curve a point was snapped onto.
type Boundary uint8

const (
	BoundaryNone Boundary = iota
	BoundaryHorizontal
	BoundaryParabola
	BoundaryVertical
)

func (b Boundary) String() string {
	switch b {
	case BoundaryNone:
		return "none"
	case BoundaryHorizontal:
		return "det=0"
	case BoundaryParabola:
		return "det=tr²/4"
	case BoundaryVertical:
		return "tr=0"
	default:
		return "unknown"
	}
}

// Parabola is the real/complex eigenvalue boundary det = tr²/4.
func Parabola(tr float64) float64 { return tr * tr / 4 }

func nearParabola(tr, det float64) bool { return math.Abs(det-Parabola(tr)) < Close }

func nearHorizontalAxis(det float64) bool { return math.Abs(det) < Close }

func nearVerticalAxis(tr, det float64) bool { return math.Abs(tr) < Close && det >= 0 }

// Snapper pulls a dragged trace/det point exactly onto the boundary it is
// approaching. It remembers the previously accepted point to know the
// direction of motion.
type Snapper struct {
	box     Bounds
	prevTr  float64
	prevDet float64
	hasPrev bool
}

// NewSnapper returns a snapper confined to box, starting at (tr, det).
func NewSnapper(box Bounds, tr, det float64) Snapper {
	return Snapper{box: box, prevTr: tr, prevDet: det, hasPrev: true}
}

// Reset forgets the motion history and restarts at (tr, det).
func (s *Snapper) Reset(tr, det float64) {
	s.prevTr, s.prevDet, s.hasPrev = tr, det, true
}

// Accept records (tr, det) as the previous point for the next Apply.
func (s *Snapper) Accept(tr, det float64) {
	s.prevTr, s.prevDet, s.hasPrev = tr, det, true
}

// Prev returns the last accepted point.
func (s *Snapper) Prev() (tr, det float64) { return s.prevTr, s.prevDet }

// Apply returns (tr, det) snapped onto a nearby boundary.
//
// The horizontal axis wins over the parabola, which wins over the vertical
// axis. Axis snaps need motion along the crossing direction to dominate; the
// parabola snap always lands exactly on det = tr²/4.
func (s *Snapper) Apply(tr, det float64) (float64, float64, Boundary) {
	dTr, dDet := 0.0, 0.0
	if s.hasPrev {
		dTr = tr - s.prevTr
		dDet = det - s.prevDet
	}

	switch {
	case nearHorizontalAxis(det):
		if dDet == 0 || math.Abs(dDet) < math.Abs(dTr) {
			return tr, det, BoundaryNone
		}
		slope := dTr / dDet
		tr = s.clampTr(tr - slope*det)
		return tr, 0, BoundaryHorizontal

	case nearParabola(tr, det):
		if dTr != 0 {
			tr = parabolaIntercept(dDet/dTr, tr, det)
		}
		tr = s.clampTr(tr)
		return tr, Parabola(tr), BoundaryParabola

	case nearVerticalAxis(tr, det):
		if dTr == 0 || math.Abs(dTr) < math.Abs(dDet) {
			return tr, det, BoundaryNone
		}
		slope := dDet / dTr
		return 0, s.clampDet(det - slope*tr), BoundaryVertical
	}
	return tr, det, BoundaryNone
}

func (s *Snapper) clampTr(tr float64) float64 {
	if s.box == (Bounds{}) {
		return tr
	}
	return Clamp(tr, s.box.XMin, s.box.XMax)
}

func (s *Snapper) clampDet(det float64) float64 {
	if s.box == (Bounds{}) {
		return det
	}
	return Clamp(det, s.box.YMin, s.box.YMax)
}

// parabolaIntercept returns the trace where the line through (tr0, det0) with
// the given slope meets det = tr²/4, choosing the root nearer tr0. A line
// that misses the parabola snaps to the origin.
func parabolaIntercept(slope, tr0, det0 float64) float64 {
	disc := 4 * (slope*slope + det0 - slope*tr0)
	var tr1, tr2 float64
	if disc >= 0 {
		root := math.Sqrt(disc)
		tr1 = 2*slope - root
		tr2 = 2*slope + root
	}
	if math.Abs(tr1-tr0) <= math.Abs(tr2-tr0) {
		return tr1
	}
	return tr2
}
