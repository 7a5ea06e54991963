package portrait

import (
	"math"

	"linphase/mathlet/phase"
)

const (
	curveStep  = 0.05
	curveSteps = 500
	arrowStep  = 0.02
	arrowSteps = 5

	eigenEps   = 1e-5
	steepSlope = 1000
	lineReach  = 4
	tipRadius  = 3
	tailReach  = 5
)

// Inputs is what the shape manager derives geometry from.
type Inputs struct {
	M     phase.Matrix2D
	Eigen phase.EigenResult

	Theta, S, Tr, Det float64

	// Init holds the four seeds of the pre-drawn curves.
	Init [4]phase.Point
}

func (in Inputs) onCenter() bool { return in.Tr == 0 && in.Det == 0 }

func (in Inputs) onParabola() bool { return in.Det == phase.Parabola(in.Tr) }

// diamondAt reports whether a user click at p gets a Diamond rather than an
// Arrow: points that do not move or whose direction is undefined.
func (in Inputs) diamondAt(p phase.Point) bool {
	return (in.S > 0 && (in.Theta == 0 || in.Theta == 180) && p.Y == 0) ||
		in.M.IsZero() ||
		(p.X == 0 && p.Y == 0)
}

// UserState is the marker state of the most recently placed user shape.
type UserState uint8

const (
	UserNone UserState = iota
	UserCurveArrow
	UserCurveDiamond
)

func (u UserState) String() string {
	switch u {
	case UserNone:
		return "none"
	case UserCurveArrow:
		return "curve+arrow"
	case UserCurveDiamond:
		return "curve+diamond"
	default:
		return "unknown"
	}
}

// ShapeManager keeps the portrait's derived shapes consistent with the
// current matrix. It talks to the renderer only through Scene.
type ShapeManager struct {
	scene  Scene
	bounds phase.Bounds

	preCurves    ShapeGroup
	fixedArrows  ShapeGroup
	movingArrows ShapeGroup
	lines        ShapeGroup

	userCurves   ShapeGroup
	userArrows   ShapeGroup
	userDiamonds ShapeGroup

	user UserState
}

// NewShapeManager draws into scene. plot is the portrait's plotting range;
// trajectories are integrated until they leave twice that range.
func NewShapeManager(scene Scene, plot phase.Bounds) *ShapeManager {
	return &ShapeManager{
		scene:        scene,
		bounds:       plot.Scale(2),
		preCurves:    newShapeGroup(ShapeCurve),
		fixedArrows:  newShapeGroup(ShapeArrow),
		movingArrows: newShapeGroup(ShapeArrow),
		lines:        newShapeGroup(ShapeLine),
		userCurves:   newShapeGroup(ShapeCurve),
		userArrows:   newShapeGroup(ShapeArrow),
		userDiamonds: newShapeGroup(ShapeDiamond),
	}
}

func (m *ShapeManager) UserState() UserState { return m.user }

// Counts reports the size of every group, pre-drawn first.
func (m *ShapeManager) Counts() (curves, fixed, moving, lines, userCurves, userArrows, userDiamonds int) {
	return m.preCurves.Len(), m.fixedArrows.Len(), m.movingArrows.Len(), m.lines.Len(),
		m.userCurves.Len(), m.userArrows.Len(), m.userDiamonds.Len()
}

// Reconcile runs after every trace/determinant update. User shapes are
// dropped; pre-drawn shapes are created on first use and updated in place
// afterwards. A zero matrix clears everything.
func (m *ShapeManager) Reconcile(in Inputs) {
	m.ClearUser()
	if in.M.IsZero() {
		m.ClearPreDrawn()
		return
	}

	f := phase.LinearField(in.M)
	curve := CurveStyle(in.Eigen.Color)
	marker := MarkerStyle(in.Eigen.Color)

	create := m.preCurves.Len() == 0
	for i, p := range in.Init {
		fwd, bwd := m.curvePair(f, p)
		if create {
			m.preCurves.Add(m.scene, fwd, curve)
			m.preCurves.Add(m.scene, bwd, curve)
			continue
		}
		m.preCurves.Set(2*i, fwd, curve)
		m.preCurves.Set(2*i+1, bwd, curve)
	}

	create = m.fixedArrows.Len() == 0
	for i, p := range in.Init {
		geom := []phase.Point{p, m.arrowTip(f, p)}
		if create {
			m.fixedArrows.Add(m.scene, geom, marker)
		} else {
			m.fixedArrows.Set(i, geom, marker)
		}
		hidden := in.onCenter() && ((in.S > 0 && (i == 0 || i == 2)) || (in.S < 0 && (i == 1 || i == 3)))
		m.fixedArrows.At(i).SetVisible(!hidden)
	}

	if !in.Eigen.Real() {
		m.lines.Clear(m.scene)
		m.movingArrows.Clear(m.scene)
		return
	}

	ends, tails, tips := eigenGeometry(in)
	visible := !in.onCenter() && !in.onParabola()

	create = m.lines.Len() == 0
	for i, end := range ends {
		geom := []phase.Point{{}, end}
		if create {
			m.lines.Add(m.scene, geom, curve)
		} else {
			m.lines.Set(i, geom, curve)
		}
		m.lines.At(i).SetVisible(visible)
	}

	create = m.movingArrows.Len() == 0
	for i := range tips {
		geom := []phase.Point{tails[i], tips[i]}
		if create {
			m.movingArrows.Add(m.scene, geom, marker)
		} else {
			m.movingArrows.Set(i, geom, marker)
		}
		m.movingArrows.At(i).SetVisible(visible)
	}
}

func (m *ShapeManager) ClearPreDrawn() {
	m.preCurves.Clear(m.scene)
	m.lines.Clear(m.scene)
	m.fixedArrows.Clear(m.scene)
	m.movingArrows.Clear(m.scene)
}

func (m *ShapeManager) ClearUser() {
	m.userCurves.Clear(m.scene)
	m.userArrows.Clear(m.scene)
	m.userDiamonds.Clear(m.scene)
	m.user = UserNone
}

// AddUser places a curve pair through p plus a marker.
func (m *ShapeManager) AddUser(in Inputs, p phase.Point) {
	f := phase.LinearField(in.M)
	fwd, bwd := m.curvePair(f, p)
	curve := CurveStyle(in.Eigen.Color)
	m.userCurves.Add(m.scene, fwd, curve)
	m.userCurves.Add(m.scene, bwd, curve)

	if in.diamondAt(p) {
		m.userDiamonds.Add(m.scene, []phase.Point{p}, MarkerStyle(in.Eigen.Color))
		m.user = UserCurveDiamond
		return
	}
	m.userArrows.Add(m.scene, []phase.Point{p, m.arrowTip(f, p)}, MarkerStyle(in.Eigen.Color))
	m.user = UserCurveArrow
}

// MoveUser re-seeds the most recent user shape at p, swapping its marker
// when p crosses into or out of the diamond region.
func (m *ShapeManager) MoveUser(in Inputs, p phase.Point) {
	if m.user == UserNone {
		return
	}
	f := phase.LinearField(in.M)
	fwd, bwd := m.curvePair(f, p)
	curve := CurveStyle(in.Eigen.Color)
	marker := MarkerStyle(in.Eigen.Color)
	n := m.userCurves.Len()
	m.userCurves.Set(n-2, fwd, curve)
	m.userCurves.Set(n-1, bwd, curve)

	diamond := in.diamondAt(p)
	switch m.user {
	case UserCurveArrow:
		if diamond {
			m.userArrows.RemoveLast(m.scene)
			m.userDiamonds.Add(m.scene, []phase.Point{p}, marker)
			m.user = UserCurveDiamond
			return
		}
		m.userArrows.Set(m.userArrows.Len()-1, []phase.Point{p, m.arrowTip(f, p)}, marker)
	case UserCurveDiamond:
		if !diamond {
			m.userDiamonds.RemoveLast(m.scene)
			m.userArrows.Add(m.scene, []phase.Point{p, m.arrowTip(f, p)}, marker)
			m.user = UserCurveArrow
			return
		}
		m.userDiamonds.Set(m.userDiamonds.Len()-1, []phase.Point{p}, marker)
	}
}

func (m *ShapeManager) curvePair(f phase.Field, p phase.Point) (fwd, bwd []phase.Point) {
	fwd = phase.Solution(f, p, curveStep, curveSteps, m.bounds)
	bwd = phase.Solution(f, p, -curveStep, curveSteps, m.bounds)
	return fwd, bwd
}

// arrowTip is the first integration step from p; an arrow with no room to
// move degenerates to a point.
func (m *ShapeManager) arrowTip(f phase.Field, p phase.Point) phase.Point {
	pts := phase.Solution(f, p, arrowStep, arrowSteps, m.bounds)
	if len(pts) < 2 {
		return p
	}
	return pts[1]
}

// eigenSlope is the slope of the eigenvector for the real eigenvalue l.
func eigenSlope(mat phase.Matrix2D, l float64) float64 {
	switch {
	case math.Abs(l-mat.D) >= eigenEps:
		return mat.C / (l - mat.D)
	case mat.B != 0:
		return (l - mat.A) / mat.B
	default:
		return steepSlope
	}
}

// eigenGeometry returns the eigen-line end points and the moving arrows'
// tails and tips, in the order (+v1, −v1, +v2, −v2).
func eigenGeometry(in Inputs) (ends, tails, tips [4]phase.Point) {
	k1 := eigenSlope(in.M, in.Eigen.Eigen1.Re)
	k2 := eigenSlope(in.M, in.Eigen.Eigen2.Re)

	ends = [4]phase.Point{
		{X: lineReach, Y: lineReach * k1}, {X: -lineReach, Y: -lineReach * k1},
		{X: lineReach, Y: lineReach * k2}, {X: -lineReach, Y: -lineReach * k2},
	}

	x1 := tipRadius / math.Sqrt(1+k1*k1)
	x2 := tipRadius / math.Sqrt(1+k2*k2)
	tip1 := phase.Point{X: x1, Y: k1 * x1}
	tip2 := phase.Point{X: x2, Y: k2 * x2}

	inbound1 := [2]phase.Point{{X: tailReach, Y: tailReach * k1}, {X: -tailReach, Y: -tailReach * k1}}
	inbound2 := [2]phase.Point{{X: tailReach, Y: tailReach * k2}, {X: -tailReach, Y: -tailReach * k2}}

	if in.onParabola() {
		// Repeated eigenvalue: both pairs run along the one eigenvector.
		tips = [4]phase.Point{tip1, tip1.Scale(-1), tip1, tip1.Scale(-1)}
		if in.Tr < 0 {
			tails = [4]phase.Point{inbound1[0], inbound1[1], inbound2[0], inbound2[1]}
		}
		return ends, tails, tips
	}

	tips = [4]phase.Point{tip1, tip1.Scale(-1), tip2, tip2.Scale(-1)}
	switch in.Eigen.Color {
	case phase.ColorRed, phase.ColorCyan:
		tails = [4]phase.Point{inbound1[0], inbound1[1], {}, {}}
	case phase.ColorGreen:
		if in.Tr < 0 {
			tails = [4]phase.Point{inbound1[0], inbound1[1], inbound2[0], inbound2[1]}
		}
	}
	return ends, tails, tips
}
