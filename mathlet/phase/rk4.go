package phase

// Point is a position in the phase plane.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Field is an autonomous planar vector field.
type Field func(p Point) Point

// LinearField returns the field u ↦ m·u.
func LinearField(m Matrix2D) Field {
	return m.Apply
}

// RK4Step advances p by one classical fourth-order Runge-Kutta step of size h.
func RK4Step(f Field, p Point, h float64) Point {
	k1 := f(p)
	k2 := f(p.Add(k1.Scale(h / 2)))
	k3 := f(p.Add(k2.Scale(h / 2)))
	k4 := f(p.Add(k3.Scale(h)))
	sum := k1.Add(k2.Scale(2)).Add(k3.Scale(2)).Add(k4)
	return p.Add(sum.Scale(h / 6))
}

// Bounds is an axis-aligned box in plot coordinates.
type Bounds struct {
	XMin, XMax, YMin, YMax float64
}

func (b Bounds) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Scale returns b with every edge multiplied by k.
func (b Bounds) Scale(k float64) Bounds {
	return Bounds{XMin: b.XMin * k, XMax: b.XMax * k, YMin: b.YMin * k, YMax: b.YMax * k}
}

// Solution integrates from p0 with step h and returns at most n points,
// starting with p0. Integration stops at the first point outside b, which is
// not included.
func Solution(f Field, p0 Point, h float64, n int, b Bounds) []Point {
	pts := make([]Point, 0, max(n, 0))
	p := p0
	for i := 0; i < n && b.Contains(p); i++ {
		pts = append(pts, p)
		p = RK4Step(f, p, h)
	}
	return pts
}
