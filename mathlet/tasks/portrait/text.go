package portrait

import (
	"image"
	"strconv"
	"strings"

	"linphase/mathlet/phase"
)

const minus = "−"

// formatFixed renders v with two decimals and a typographic minus.
// Values that round to zero never carry a sign.
func formatFixed(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	if rest, ok := strings.CutPrefix(s, "-"); ok {
		return minus + rest
	}
	return s
}

// readouts are the text drawables of the screen layer.
type readouts struct {
	x, y     Drawable
	zone     Drawable
	a, b     Drawable
	c, d     Drawable
	lambda1  Drawable
	lambda2  Drawable
	diffEq   Drawable
	matLabel Drawable
}

func newReadouts(sc Scene, l Layout) readouts {
	at := func(p image.Point) []phase.Point { return []phase.Point{{X: float64(p.X), Y: float64(p.Y)}} }
	text := func(p image.Point, label string) Drawable {
		return sc.Add(ShapeText, at(p), Style{Class: ClassText, Label: label})
	}
	return readouts{
		x:        text(l.XReadout, "x ="),
		y:        text(l.YReadout, "y ="),
		zone:     sc.Add(ShapeText, at(l.Zone), Style{Class: ClassTitle}),
		diffEq:   sc.Add(ShapeText, at(l.DiffEq), Style{Class: ClassTextCenter, Label: "u' = A u"}),
		matLabel: text(l.MatrixLabel, "A ="),
		a:        text(l.A, ""),
		b:        text(l.B, ""),
		c:        text(l.C, ""),
		d:        text(l.D, ""),
		lambda1:  text(l.Lambda1, ""),
		lambda2:  text(l.Lambda2, ""),
	}
}

func (r *readouts) update(m phase.Matrix2D, e phase.EigenResult) {
	r.a.SetStyle(Style{Class: ClassText, Label: formatFixed(m.A)})
	r.b.SetStyle(Style{Class: ClassText, Label: formatFixed(m.B)})
	r.c.SetStyle(Style{Class: ClassText, Label: formatFixed(m.C)})
	r.d.SetStyle(Style{Class: ClassText, Label: formatFixed(m.D)})
	r.zone.SetStyle(Style{Class: ClassTitle, Color: e.Color, Label: e.Zone.String()})
	r.lambda1.SetStyle(Style{Class: ClassText, Color: e.Color, Label: "λ1 = " + e.Eigen1.String()})
	r.lambda2.SetStyle(Style{Class: ClassText, Color: e.Color, Label: "λ2 = " + e.Eigen2.String()})
}

func (r *readouts) showCursor(p phase.Point) {
	r.x.SetStyle(Style{Class: ClassText, Label: "x = " + formatFixed(p.X)})
	r.y.SetStyle(Style{Class: ClassText, Label: "y = " + formatFixed(p.Y)})
}

func (r *readouts) hideCursor() {
	r.x.SetStyle(Style{Class: ClassText, Label: "x ="})
	r.y.SetStyle(Style{Class: ClassText, Label: "y ="})
}
