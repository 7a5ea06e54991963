// Package phase holds the numerics behind the phase-portrait widget: the
// polar parameterization of 2x2 matrices, eigenvalue classification in the
// trace/determinant plane, boundary snapping and RK4 integration.
//
// Everything here is pure and allocation-light; callers own all state.
package phase

import "math"

// Matrix2D is the real matrix [[A, B], [C, D]].
type Matrix2D struct {
	A, B, C, D float64
}

// Rotation returns the counter-clockwise rotation by theta radians.
func Rotation(theta float64) Matrix2D {
	sin, cos := math.Sincos(theta)
	return Matrix2D{A: cos, B: -sin, C: sin, D: cos}
}

func (m Matrix2D) Trace() float64 { return m.A + m.D }

func (m Matrix2D) Det() float64 { return m.A*m.D - m.B*m.C }

// IsZero reports whether every entry is exactly zero.
func (m Matrix2D) IsZero() bool {
	return m.A == 0 && m.B == 0 && m.C == 0 && m.D == 0
}

func (m Matrix2D) Transpose() Matrix2D {
	return Matrix2D{A: m.A, B: m.C, C: m.B, D: m.D}
}

// Mul returns m·n.
func (m Matrix2D) Mul(n Matrix2D) Matrix2D {
	return Matrix2D{
		A: m.A*n.A + m.B*n.C,
		B: m.A*n.B + m.B*n.D,
		C: m.C*n.A + m.D*n.C,
		D: m.C*n.B + m.D*n.D,
	}
}

// Apply returns m·p.
func (m Matrix2D) Apply(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y, Y: m.C*p.X + m.D*p.Y}
}

// Finite reports whether no entry is NaN or infinite.
func (m Matrix2D) Finite() bool {
	for _, v := range [4]float64{m.A, m.B, m.C, m.D} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// CalculateMatrix builds the matrix with trace tr and determinant det whose
// antisymmetric part is s, rotated by theta radians.
//
// With k = s² + tr²/4 − det the base matrix is [[tr/2, l+s], [l−s, tr/2]],
// l = √k. When k is not positive l is 0 and the requested det is not
// reachable; the result then has det = s² + tr²/4.
func CalculateMatrix(theta, s, tr, det float64) Matrix2D {
	k := s*s + tr*tr/4 - det
	l := 0.0
	if k > 0 {
		l = math.Sqrt(k)
	}
	base := Matrix2D{A: tr / 2, B: l + s, C: l - s, D: tr / 2}
	r := Rotation(theta)
	return r.Mul(base).Mul(r.Transpose())
}

// PolarFromMatrix inverts CalculateMatrix.
//
// theta is returned in degrees in [0, 180). When the symmetric traceless part
// of m vanishes every theta yields m; free is then true and theta is 0.
func PolarFromMatrix(m Matrix2D) (theta, s, tr, det float64, free bool) {
	s = (m.B - m.C) / 2
	tr = m.Trace()
	det = m.Det()

	lsin := -(m.A - m.D) / 2
	lcos := (m.B + m.C) / 2
	if lsin == 0 && lcos == 0 {
		return 0, s, tr, det, true
	}
	theta = math.Atan2(lsin, lcos) / 2 * 180 / math.Pi
	if theta < 0 {
		theta += 180
	}
	if theta >= 180-1e-9 {
		theta = 0
	}
	return theta, s, tr, det, false
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ForbiddenBand returns ω = √(det − tr²/4) when (tr, det) lies on or above the
// parabola. Values of s with |s| < ω cannot produce that trace and
// determinant.
func ForbiddenBand(tr, det float64) (omega float64, ok bool) {
	w := det - Parabola(tr)
	if w < 0 {
		return 0, false
	}
	return math.Sqrt(w), true
}

// PushOutOfBand moves s to the nearest edge of the band (−ω, ω), keeping its
// sign; s = 0 goes to −ω.
func PushOutOfBand(s, omega float64) float64 {
	if s <= 0 {
		return math.Min(s, -omega)
	}
	return math.Max(s, omega)
}
