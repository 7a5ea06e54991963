package portrait

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linphase/hal"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
)

type recDrawable struct {
	Kind    ShapeKind
	Geom    []phase.Point
	Style   Style
	Visible bool
}

func (d *recDrawable) SetGeometry(geom []phase.Point) { d.Geom = append([]phase.Point(nil), geom...) }
func (d *recDrawable) SetStyle(st Style)              { d.Style = st }
func (d *recDrawable) SetVisible(v bool)              { d.Visible = v }

// recScene records every drawable and how often the scene was touched.
type recScene struct {
	items   []*recDrawable
	adds    int
	removes int
}

func (s *recScene) Add(kind ShapeKind, geom []phase.Point, st Style) Drawable {
	d := &recDrawable{Kind: kind, Style: st, Visible: true}
	d.SetGeometry(geom)
	s.items = append(s.items, d)
	s.adds++
	return d
}

func (s *recScene) Remove(d Drawable) {
	for i, it := range s.items {
		if it == d {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.removes++
			return
		}
	}
}

func (s *recScene) snapshot() []recDrawable {
	out := make([]recDrawable, len(s.items))
	for i, d := range s.items {
		out[i] = *d
	}
	return out
}

func (s *recScene) count(kind ShapeKind) int {
	n := 0
	for _, d := range s.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

type fixture struct {
	w                *WidgetState
	portrait, sg, dg *recScene
	screen           *recScene
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{portrait: &recScene{}, sg: &recScene{}, dg: &recScene{}, screen: &recScene{}}
	f.w = NewWidget(Scenes{Portrait: f.portrait, SGraph: f.sg, DetGraph: f.dg, Screen: f.screen}, DefaultLayout())
	return f
}

func counts(m *ShapeManager) [7]int {
	a, b, c, d, e, f, g := m.Counts()
	return [7]int{a, b, c, d, e, f, g}
}

func TestDefaultsSpiralSource(t *testing.T) {
	f := newFixture(t)
	w := f.w

	want := [4]phase.Point{{X: 2, Y: 0}, {X: 0, Y: 2}, {X: -2, Y: 0}, {X: 0, Y: -2}}
	for i := range want {
		assert.InDelta(t, want[i].X, w.Init[i].X, 1e-12)
		assert.InDelta(t, want[i].Y, w.Init[i].Y, 1e-12)
	}

	assert.InDelta(t, 0.5, w.M.A, 1e-12)
	assert.InDelta(t, 1.5, w.M.B, 1e-12)
	assert.InDelta(t, -0.5, w.M.C, 1e-12)
	assert.InDelta(t, 0.5, w.M.D, 1e-12)
	assert.Equal(t, phase.ZoneSpiralSource, w.Eigen.Zone)
	assert.Equal(t, phase.ColorYellow, w.Eigen.Color)

	// Complex eigenvalues: curves and fixed arrows only.
	assert.Equal(t, [7]int{8, 4, 0, 0, 0, 0, 0}, counts(w.Shapes()))
	assert.Equal(t, 12, f.portrait.adds)
	for _, d := range f.portrait.items {
		assert.Equal(t, phase.ColorYellow, d.Style.Color)
	}
}

func TestDegenerateOrigin(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnTraceDet(0, 0)

	assert.Zero(t, w.Tr)
	assert.Zero(t, w.Det)
	assert.Equal(t, phase.ZoneDegenerate, w.Eigen.Zone)
	assert.Equal(t, phase.ColorRed, w.Eigen.Color)
	assert.Zero(t, w.Eigen.Eigen1.Re)
	assert.Zero(t, w.Eigen.Eigen2.Re)
	assert.False(t, w.M.IsZero())

	// Real eigenvalues add the eigen-lines and moving arrows, hidden on
	// the center.
	assert.Equal(t, [7]int{8, 4, 4, 4, 0, 0, 0}, counts(w.Shapes()))
	m := w.Shapes()
	for i := 0; i < 4; i++ {
		assert.False(t, m.lines.At(i).(*recDrawable).Visible)
		assert.False(t, m.movingArrows.At(i).(*recDrawable).Visible)
	}
	// s > 0 on the center hides fixed arrows 0 and 2.
	vis := make([]bool, 4)
	for i := range vis {
		vis[i] = m.fixedArrows.At(i).(*recDrawable).Visible
	}
	assert.Equal(t, []bool{false, true, false, true}, vis)
}

func TestDefectiveNodalSinkOnParabola(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnTraceDet(-2, 1)

	assert.Equal(t, -2.0, w.Tr)
	assert.Equal(t, 1.0, w.Det)
	assert.Equal(t, w.Tr*w.Tr/4, w.Det)
	assert.Equal(t, phase.BoundaryParabola, w.Boundary)
	assert.Equal(t, phase.ZoneDefectiveNodalSink, w.Eigen.Zone)
	assert.Equal(t, phase.ColorRed, w.Eigen.Color)
	assert.InDelta(t, -1, w.Eigen.Eigen1.Re, 1e-12)
	assert.InDelta(t, -1, w.Eigen.Eigen2.Re, 1e-12)

	m := w.Shapes()
	require.Equal(t, 4, m.movingArrows.Len())
	for i := 0; i < 4; i++ {
		assert.False(t, m.lines.At(i).(*recDrawable).Visible, "line %d on the parabola", i)
	}
	// tr < 0 on the parabola: every moving arrow comes in from radius 5.
	tail := m.movingArrows.At(0).(*recDrawable).Geom[0]
	assert.InDelta(t, 5, tail.X, 1e-12)
}

func TestClickOriginPlacesDiamond(t *testing.T) {
	f := newFixture(t)
	w := f.w
	l := w.Layout()

	// Centre pixel of the portrait maps exactly to the origin.
	cx := (l.Portrait.Rect.Min.X + l.Portrait.Rect.Max.X - 1) / 2
	cy := (l.Portrait.Rect.Min.Y + l.Portrait.Rect.Max.Y - 1) / 2
	require.True(t, w.Pointer(proto.PointerDown, cx, cy))

	assert.Equal(t, UserCurveDiamond, w.Shapes().UserState())
	assert.Equal(t, [7]int{8, 4, 0, 0, 2, 0, 1}, counts(w.Shapes()))
	assert.Equal(t, 1, f.portrait.count(ShapeDiamond))
	assert.Equal(t, "x = 0.00", w.text.x.(*recDrawable).Style.Label)
}

func TestUserMarkerStateMachine(t *testing.T) {
	f := newFixture(t)
	w := f.w

	w.OnPortraitDown(phase.Point{X: 1, Y: 1})
	assert.Equal(t, UserCurveArrow, w.Shapes().UserState())

	// theta = 0 and s > 0: the x axis is the diamond region.
	w.OnPortraitDrag(phase.Point{X: 1, Y: 0})
	assert.Equal(t, UserCurveDiamond, w.Shapes().UserState())
	assert.Equal(t, [7]int{8, 4, 0, 0, 2, 0, 1}, counts(w.Shapes()))

	w.OnPortraitDrag(phase.Point{X: 1, Y: 2})
	assert.Equal(t, UserCurveArrow, w.Shapes().UserState())
	assert.Equal(t, [7]int{8, 4, 0, 0, 2, 1, 0}, counts(w.Shapes()))

	arrow := w.Shapes().userArrows.At(0).(*recDrawable)
	assert.Equal(t, phase.Point{X: 1, Y: 2}, arrow.Geom[0])

	// A second click keeps the first curve.
	w.OnPortraitDown(phase.Point{X: -1, Y: -1})
	assert.Equal(t, [7]int{8, 4, 0, 0, 4, 2, 0}, counts(w.Shapes()))

	// Any trace/det recompute drops user shapes.
	w.OnTraceDet(w.Tr, w.Det)
	assert.Equal(t, UserNone, w.Shapes().UserState())
	assert.Equal(t, [7]int{8, 4, 0, 0, 0, 0, 0}, counts(w.Shapes()))
}

func TestMoveWithoutUserShapeIsNoop(t *testing.T) {
	f := newFixture(t)
	before := f.portrait.snapshot()
	f.w.OnPortraitDrag(phase.Point{X: 1, Y: 1})
	assert.Empty(t, cmp.Diff(before, f.portrait.snapshot()))
}

func TestSnapToHorizontalAxis(t *testing.T) {
	f := newFixture(t)
	w := f.w

	w.OnTraceDet(2, 3)
	w.OnTraceDet(2, 0.9)
	assert.Equal(t, 2.0, w.Tr)
	assert.Equal(t, 0.9, w.Det)
	assert.Equal(t, phase.BoundaryNone, w.Boundary)

	w.OnTraceDet(2, 0.02)
	assert.Equal(t, 2.0, w.Tr)
	assert.Equal(t, 0.0, w.Det)
	assert.Equal(t, phase.BoundaryHorizontal, w.Boundary)
	assert.Equal(t, phase.ZoneDegenerate, w.Eigen.Zone)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnTraceDet(-1.5, -2)

	before := f.portrait.snapshot()
	adds := f.portrait.adds
	w.OnTraceDet(w.Tr, w.Det)
	w.OnTraceDet(w.Tr, w.Det)

	if diff := cmp.Diff(before, f.portrait.snapshot()); diff != "" {
		t.Fatalf("shapes changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, adds, f.portrait.adds)
}

func TestZeroMatrixClearsAndRecovers(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnPortraitDown(phase.Point{X: 1, Y: 1})

	require.NoError(t, w.SetMatrix(phase.Matrix2D{}))
	assert.True(t, w.M.IsZero())
	assert.Equal(t, [7]int{}, counts(w.Shapes()))
	assert.Empty(t, f.portrait.items)

	// On the zero matrix every click is a diamond.
	w.OnPortraitDown(phase.Point{X: 1, Y: 1})
	assert.Equal(t, UserCurveDiamond, w.Shapes().UserState())

	w.OnS(1)
	assert.False(t, w.M.IsZero())
	assert.Equal(t, 8, w.Shapes().preCurves.Len())
	assert.Zero(t, w.Shapes().userCurves.Len())
}

func TestClearButton(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnPortraitDown(phase.Point{X: 1, Y: 1})

	r := w.Layout().Clear
	require.True(t, w.Pointer(proto.PointerDown, r.Min.X+2, r.Min.Y+2))
	assert.Equal(t, [7]int{}, counts(w.Shapes()))

	// Pre-drawn shapes come back on the next parameter change.
	w.OnTheta(45)
	assert.Equal(t, 8, w.Shapes().preCurves.Len())
}

func TestPointerCaptureClampsDrag(t *testing.T) {
	f := newFixture(t)
	w := f.w
	l := w.Layout()

	start := l.DetGraph.ToPixel(1, 1)
	require.True(t, w.Pointer(proto.PointerDown, int(start.X), int(start.Y)))
	require.True(t, w.Pointer(proto.PointerDrag, 5000, 5000))
	assert.Equal(t, 4.0, w.Tr)
	assert.Equal(t, -4.0, w.Det)
	assert.Equal(t, phase.ZoneSaddle, w.Eigen.Zone)

	assert.False(t, w.Pointer(proto.PointerUp, 5000, 5000))
	assert.False(t, w.Pointer(proto.PointerDrag, 0, 0))
	assert.Equal(t, 4.0, w.Tr)
}

func TestReleaseAppliesFinalPosition(t *testing.T) {
	f := newFixture(t)
	w := f.w
	x := w.Layout().SSlider.Rect.Min.X + 5

	// 20 pixels per unit of s on the slider, 3.5 at row 10 below the top.
	top := w.Layout().SSlider.Rect.Min.Y
	require.True(t, w.Pointer(proto.PointerDown, x, top+10))
	assert.Equal(t, 3.5, w.S)

	// The drags in between were lost; the release still lands.
	require.True(t, w.Pointer(proto.PointerUp, x, top+120))
	assert.Equal(t, -2.0, w.S)
	assert.False(t, w.Pointer(proto.PointerDrag, x, top+10), "capture released")
	assert.Equal(t, -2.0, w.S)

	// Releases are clamped like drags.
	require.True(t, w.Pointer(proto.PointerDown, x, top+10))
	require.True(t, w.Pointer(proto.PointerUp, x, 5000))
	assert.Equal(t, -4.0, w.S)
}

func TestEigenSlope(t *testing.T) {
	for _, tc := range []struct {
		name string
		m    phase.Matrix2D
		l    float64
		want float64
	}{
		{"c over l-d", phase.Matrix2D{A: 1, B: 0, C: 3, D: 2}, 1, -3},
		{"l-a over b", phase.Matrix2D{A: 1, B: 2, C: 0, D: 3}, 3, 1},
		{"vertical", phase.Matrix2D{A: -1, D: -2}, -2, 1000},
		{"near d counts as d", phase.Matrix2D{A: 1, B: 4, D: 2}, 2 + 1e-6, (1 + 1e-6) / 4},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, eigenSlope(tc.m, tc.l), 1e-9)
		})
	}
}

func TestEigenLinesAndMovingArrows(t *testing.T) {
	origin := phase.Point{}
	r2 := 3 / math.Sqrt2
	for _, tc := range []struct {
		name  string
		state string
		zone  phase.Zone
		ends  []phase.Point
		tails []phase.Point
		tips  []phase.Point
	}{
		{
			// Both eigenvalues negative: every arrow comes in from outside.
			name:  "diagonal sink",
			state: `{"a":-1,"b":0,"c":0,"d":-2}`,
			zone:  phase.ZoneNodalSink,
			ends:  []phase.Point{{X: 4, Y: 4000}, {X: -4, Y: -4000}, {X: 4, Y: 0}, {X: -4, Y: 0}},
			tails: []phase.Point{{X: 5, Y: 5000}, {X: -5, Y: -5000}, {X: 5, Y: 0}, {X: -5, Y: 0}},
			tips:  []phase.Point{{X: 3 / math.Sqrt(1+1e6), Y: 3000 / math.Sqrt(1+1e6)}, {X: -3 / math.Sqrt(1+1e6), Y: -3000 / math.Sqrt(1+1e6)}, {X: 3}, {X: -3}},
		},
		{
			// The stable direction comes in, the unstable one leaves the origin.
			name:  "diagonal saddle",
			state: `{"a":1,"b":0,"c":0,"d":-2}`,
			zone:  phase.ZoneSaddle,
			ends:  []phase.Point{{X: 4, Y: 4000}, {X: -4, Y: -4000}, {X: 4, Y: 0}, {X: -4, Y: 0}},
			tails: []phase.Point{{X: 5, Y: 5000}, {X: -5, Y: -5000}, origin, origin},
			tips:  []phase.Point{{X: 3 / math.Sqrt(1+1e6), Y: 3000 / math.Sqrt(1+1e6)}, {X: -3 / math.Sqrt(1+1e6), Y: -3000 / math.Sqrt(1+1e6)}, {X: 3}, {X: -3}},
		},
		{
			name:  "diagonal source",
			state: `{"a":1,"b":0,"c":0,"d":2}`,
			zone:  phase.ZoneNodalSource,
			ends:  []phase.Point{{X: 4, Y: 0}, {X: -4, Y: 0}, {X: 4, Y: 4000}, {X: -4, Y: -4000}},
			tails: []phase.Point{origin, origin, origin, origin},
			tips:  []phase.Point{{X: 3}, {X: -3}, {X: 3 / math.Sqrt(1+1e6), Y: 3000 / math.Sqrt(1+1e6)}, {X: -3 / math.Sqrt(1+1e6), Y: -3000 / math.Sqrt(1+1e6)}},
		},
		{
			// λ2 = d, so the second slope falls back to (λ-a)/b.
			name:  "upper triangular source",
			state: `{"a":1,"b":1,"c":0,"d":2}`,
			zone:  phase.ZoneNodalSource,
			ends:  []phase.Point{{X: 4, Y: 0}, {X: -4, Y: 0}, {X: 4, Y: 4}, {X: -4, Y: -4}},
			tails: []phase.Point{origin, origin, origin, origin},
			tips:  []phase.Point{{X: 3}, {X: -3}, {X: r2, Y: r2}, {X: -r2, Y: -r2}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.w
			require.NoError(t, w.SetState([]byte(tc.state)))
			require.Equal(t, tc.zone, w.Eigen.Zone)

			sm := w.Shapes()
			require.Equal(t, 4, sm.lines.Len())
			require.Equal(t, 4, sm.movingArrows.Len())

			var ends, tails, tips []phase.Point
			for i := 0; i < 4; i++ {
				line := sm.lines.At(i).(*recDrawable)
				arrow := sm.movingArrows.At(i).(*recDrawable)
				assert.True(t, line.Visible)
				assert.True(t, arrow.Visible)
				assert.Equal(t, origin, line.Geom[0])
				ends = append(ends, line.Geom[1])
				tails = append(tails, arrow.Geom[0])
				tips = append(tips, arrow.Geom[1])
			}

			approx := cmpopts.EquateApprox(0, 1e-9)
			assert.Empty(t, cmp.Diff(tc.ends, ends, approx), "line ends")
			assert.Empty(t, cmp.Diff(tc.tails, tails, approx), "arrow tails")
			assert.Empty(t, cmp.Diff(tc.tips, tips, approx), "arrow tips")
		})
	}
}

func TestThetaSliderMovesSeeds(t *testing.T) {
	f := newFixture(t)
	w := f.w
	l := w.Layout()

	r := l.ThetaSlider.Rect
	require.True(t, w.Pointer(proto.PointerDown, (r.Min.X+r.Max.X-1)/2, r.Min.Y+1))
	assert.InDelta(t, 90, w.Theta, 1e-9)
	assert.InDelta(t, 0, w.Init[0].X, 1e-12)
	assert.InDelta(t, 2, w.Init[0].Y, 1e-12)

	// Trace and determinant survive a rotation.
	assert.InDelta(t, 1, w.M.Trace(), 1e-12)
	assert.InDelta(t, 1, w.M.Det(), 1e-12)
}

func TestSSliderRespectsForbiddenBand(t *testing.T) {
	f := newFixture(t)
	w := f.w
	// tr = 0, det = 1 gives the band |s| < 1.
	w.OnTraceDet(0, 1)
	w.OnS(0.25)
	assert.Equal(t, 1.0, w.S)
	w.OnS(-0.25)
	assert.Equal(t, -1.0, w.S)
	assert.True(t, f.sg.items[0].Visible, "band shown")
}

func TestHoverAndLeave(t *testing.T) {
	f := newFixture(t)
	w := f.w
	l := w.Layout()

	p := l.Portrait.ToPixel(1, -2)
	require.True(t, w.Pointer(proto.PointerMove, int(p.X), int(p.Y)))
	_, hover := w.Hover()
	assert.True(t, hover)
	assert.Equal(t, "x = 1.00", w.text.x.(*recDrawable).Style.Label)
	assert.Equal(t, "y = −2.00", w.text.y.(*recDrawable).Style.Label)

	require.True(t, w.Pointer(proto.PointerLeave, 0, 0))
	assert.Equal(t, "x =", w.text.x.(*recDrawable).Style.Label)
	assert.False(t, w.Pointer(proto.PointerLeave, 0, 0))
}

func TestKeys(t *testing.T) {
	f := newFixture(t)
	w := f.w

	require.True(t, w.Key(hal.KeyRight, 0))
	assert.InDelta(t, 1.05, w.Tr, 1e-12)
	require.True(t, w.Key(hal.KeyDown, 0))
	assert.InDelta(t, 0.95, w.Det, 1e-12)

	require.True(t, w.Key(hal.KeyUnknown, 'c'))
	assert.Equal(t, [7]int{}, counts(w.Shapes()))
	assert.False(t, w.Key(hal.KeyUnknown, 'q'))
}

func TestStateRoundTrip(t *testing.T) {
	f := newFixture(t)
	w := f.w

	in := `{"a":0.5,"b":1,"c":-1,"d":0.25}`
	require.NoError(t, w.SetState([]byte(in)))
	assert.JSONEq(t, in, string(w.State()))
	assert.JSONEq(t, in, string(w.Grade()))
	assert.InDelta(t, 0.75, w.Tr, 1e-12)
	assert.InDelta(t, 1.125, w.Det, 1e-12)
	assert.InDelta(t, 1, w.S, 1e-12)
	assert.Equal(t, "0.50", w.text.a.(*recDrawable).Style.Label)
	assert.Equal(t, "−1.00", w.text.c.(*recDrawable).Style.Label)
}

func TestSetStateKeepsThetaWhenFree(t *testing.T) {
	f := newFixture(t)
	w := f.w
	w.OnTheta(30)

	// A scaled rotation has no symmetric traceless part.
	require.NoError(t, w.SetState([]byte(`{"a":1,"b":-1,"c":1,"d":1}`)))
	assert.Equal(t, 30.0, w.Theta)
	assert.Equal(t, -1.0, w.S)
	assert.JSONEq(t, `{"a":1,"b":-1,"c":1,"d":1}`, string(w.State()))
}

func TestSetStateClampsOutOfRange(t *testing.T) {
	f := newFixture(t)
	w := f.w

	require.NoError(t, w.SetState([]byte(`{"a":10,"b":0,"c":0,"d":10}`)))
	assert.Equal(t, 4.0, w.Tr)
	assert.Equal(t, 4.0, w.Det)
	assert.InDelta(t, 4, w.M.Trace(), 1e-12)
	assert.InDelta(t, 4, w.M.Det(), 1e-12)
}

func TestSetStateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	w := f.w
	before := string(w.State())

	for _, in := range []string{`{`, `{"a":1,"b":2,"c":3}`, `[1,2,3,4]`, `{"a":"x","b":0,"c":0,"d":0}`, `{"a":1e999,"b":0,"c":0,"d":0}`} {
		err := w.SetState([]byte(in))
		assert.ErrorIs(t, err, ErrBadState, in)
	}
	assert.Equal(t, before, string(w.State()))
}

func TestFormatFixed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{-0.001, "0.00"},
		{1.234, "1.23"},
		{-2.5, "−2.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatFixed(tt.in))
	}
}

func TestHitTest(t *testing.T) {
	l := DefaultLayout()
	tests := []struct {
		x, y int
		want ViewID
	}{
		{100, 100, ViewSGraph},
		{100, 400, ViewDetGraph},
		{500, 200, ViewPortrait},
		{l.Clear.Min.X, l.Clear.Min.Y, ViewClear},
		{60, 100, ViewSSlider},
		{5, 5, ViewNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.HitTest(tt.x, tt.y), "(%d,%d)", tt.x, tt.y)
	}
	for _, id := range hitOrder {
		assert.True(t, l.rect(id).Max.X <= MinWidth && l.rect(id).Max.Y <= MinHeight, id.String())
	}
}
