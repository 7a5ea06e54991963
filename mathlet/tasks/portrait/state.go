package portrait

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"linphase/mathlet/phase"
)

// ErrBadState is returned for state payloads that cannot be applied.
var ErrBadState = errors.New("bad state")

type stateJSON struct {
	A *float64 `json:"a"`
	B *float64 `json:"b"`
	C *float64 `json:"c"`
	D *float64 `json:"d"`
}

// EncodeState renders m as {"a":…,"b":…,"c":…,"d":…}.
func EncodeState(m phase.Matrix2D) []byte {
	b, _ := json.Marshal(struct {
		A float64 `json:"a"`
		B float64 `json:"b"`
		C float64 `json:"c"`
		D float64 `json:"d"`
	}{m.A, m.B, m.C, m.D})
	return b
}

// ParseState decodes a serialized state. All four entries are required and
// must be finite.
func ParseState(data []byte) (phase.Matrix2D, error) {
	var s stateJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return phase.Matrix2D{}, fmt.Errorf("%w: %v", ErrBadState, err)
	}
	for _, f := range []struct {
		name string
		v    *float64
	}{{"a", s.A}, {"b", s.B}, {"c", s.C}, {"d", s.D}} {
		if f.v == nil {
			return phase.Matrix2D{}, fmt.Errorf("%w: missing %q", ErrBadState, f.name)
		}
		if math.IsNaN(*f.v) || math.IsInf(*f.v, 0) {
			return phase.Matrix2D{}, fmt.Errorf("%w: %q is not finite", ErrBadState, f.name)
		}
	}
	return phase.Matrix2D{A: *s.A, B: *s.B, C: *s.C, D: *s.D}, nil
}

// State returns the current matrix as JSON.
func (w *WidgetState) State() []byte { return EncodeState(w.M) }

// Grade returns the graded answer, which is the current matrix.
func (w *WidgetState) Grade() []byte { return w.State() }

// SetState parses data and applies it with SetMatrix. On error the widget
// is left untouched.
func (w *WidgetState) SetState(data []byte) error {
	m, err := ParseState(data)
	if err != nil {
		return err
	}
	return w.SetMatrix(m)
}

// SetMatrix moves the widget to m. The polar parameters are recovered from
// m and clamped to the slider ranges; when nothing had to be clamped the
// matrix is kept exactly as given. A free rotation keeps the current theta.
func (w *WidgetState) SetMatrix(m phase.Matrix2D) error {
	if !m.Finite() {
		return fmt.Errorf("%w: matrix is not finite", ErrBadState)
	}
	theta, s, tr, det, free := phase.PolarFromMatrix(m)
	if free {
		theta = w.Theta
	}

	ct := phase.Clamp(theta, thetaMin, thetaMax)
	cs := phase.Clamp(s, sMin, sMax)
	ctr := phase.Clamp(tr, trMin, trMax)
	cdet := phase.Clamp(det, detMin, detMax)
	exact := ct == theta && cs == s && ctr == tr && cdet == det

	w.Theta, w.S, w.Tr, w.Det = ct, cs, ctr, cdet
	w.Init = initPoints(w.Theta)
	w.snap.Reset(w.Tr, w.Det)
	w.Boundary = phase.BoundaryNone
	w.updateSGraph()
	w.calculateMatrix()
	if exact {
		w.M = m
	}
	w.derive()
	return nil
}
