package phase

import (
	"math"
	"strconv"
)

// Zone is the qualitative type of the phase portrait of u' = A u.
type Zone uint8

const (
	ZoneSaddle Zone = iota + 1
	ZoneNodalSink
	ZoneNodalSource
	ZoneDegenerate
	ZoneDefectiveNodalSink
	ZoneDefectiveNodalSource
	ZoneCenter
	ZoneSpiralSink
	ZoneSpiralSource
)

func (z Zone) String() string {
	switch z {
	case ZoneSaddle:
		return "saddle"
	case ZoneNodalSink:
		return "nodal sink"
	case ZoneNodalSource:
		return "nodal source"
	case ZoneDegenerate:
		return "degenerate"
	case ZoneDefectiveNodalSink:
		return "defective nodal sink"
	case ZoneDefectiveNodalSource:
		return "defective nodal source"
	case ZoneCenter:
		return "center"
	case ZoneSpiralSink:
		return "spiral sink"
	case ZoneSpiralSource:
		return "spiral source"
	default:
		return "unknown"
	}
}

// Color is the classification color shared by every shape and readout.
type Color uint8

const (
	ColorCyan Color = iota + 1
	ColorGreen
	ColorRed
	ColorYellow
)

func (c Color) String() string {
	switch c {
	case ColorCyan:
		return "cyan"
	case ColorGreen:
		return "green"
	case ColorRed:
		return "red"
	case ColorYellow:
		return "yellow"
	default:
		return "unknown"
	}
}

// Complex is an eigenvalue Re + Im·i.
type Complex struct {
	Re, Im float64
}

const (
	minusSign = "−"
	smallMag  = 0.01
)

func roundSmall(v float64) float64 {
	if math.Abs(v) < smallMag {
		return 0
	}
	return v
}

// String renders the number with two decimals as "x", "x + y i",
// "x − y i", "y i", "−y i" or "0". Parts below 0.01 in magnitude are
// treated as zero so no "−0" is ever produced.
func (z Complex) String() string {
	x := roundSmall(z.Re)
	y := roundSmall(z.Im)
	xs := fmtAbs(x)
	ys := fmtAbs(y) + " i"

	if x == 0 {
		switch {
		case y < 0:
			return minusSign + ys
		case y == 0:
			return xs
		default:
			return ys
		}
	}

	re := xs
	if x < 0 {
		re = minusSign + xs
	}
	switch {
	case y < 0:
		return re + " " + minusSign + " " + ys
	case y == 0:
		return re
	default:
		return re + " + " + ys
	}
}

func fmtAbs(v float64) string {
	return strconv.FormatFloat(math.Abs(v), 'f', 2, 64)
}

// EigenResult is the eigen-decomposition summary for a (tr, det) point.
type EigenResult struct {
	Eigen1, Eigen2 Complex
	Zone           Zone
	Color          Color
}

// Real reports whether the eigenvalues are real.
func (e EigenResult) Real() bool { return e.Eigen1.Im == 0 }

// Eigen classifies the point (tr, det) of the trace/determinant plane.
//
// Eigen1 is always the eigenvalue with the smaller real part, or the one with
// negative imaginary part for a complex pair.
func Eigen(tr, det float64) EigenResult {
	disc := tr*tr - 4*det
	r := tr / 2
	q := disc / 4

	var res EigenResult
	switch {
	case q > 0:
		switch {
		case det < 0:
			res.Zone, res.Color = ZoneSaddle, ColorCyan
		case det == 0:
			res.Zone, res.Color = ZoneDegenerate, ColorRed
		case tr < 0:
			res.Zone, res.Color = ZoneNodalSink, ColorGreen
		default:
			res.Zone, res.Color = ZoneNodalSource, ColorGreen
		}
		root := math.Sqrt(q)
		res.Eigen1 = Complex{Re: r - root}
		res.Eigen2 = Complex{Re: r + root}

	case q == 0:
		res.Color = ColorRed
		switch {
		case tr < 0:
			res.Zone = ZoneDefectiveNodalSink
		case tr == 0:
			res.Zone = ZoneDegenerate
		default:
			res.Zone = ZoneDefectiveNodalSource
		}
		res.Eigen1 = Complex{Re: r}
		res.Eigen2 = Complex{Re: r}

	default:
		switch {
		case tr < 0:
			res.Zone, res.Color = ZoneSpiralSink, ColorYellow
		case tr == 0:
			res.Zone, res.Color = ZoneCenter, ColorRed
		default:
			res.Zone, res.Color = ZoneSpiralSource, ColorYellow
		}
		root := math.Sqrt(-q)
		res.Eigen1 = Complex{Re: r, Im: -root}
		res.Eigen2 = Complex{Re: r, Im: root}
	}
	return res
}
