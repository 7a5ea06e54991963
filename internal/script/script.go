// Package script replays a YAML list of input steps against a headless run.
//
//	settle: 2            # ticks to wait after each step (default 1)
//	steps:
//	  - pointer: {action: down, x: 570, y: 235}
//	  - pointer: {action: drag, x: 600, y: 200}
//	    settle: 5
//	  - key: {code: left}
//	  - key: {rune: c}
//	  - state: {a: 0.5, b: 1, c: -1, d: 0.25}
package script

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"linphase/hal"
	"linphase/mathlet/phase"
	"linphase/mathlet/tasks/portrait"
)

var ErrInvalid = errors.New("invalid script")

type Script struct {
	Settle int    `yaml:"settle"`
	Steps  []Step `yaml:"steps"`
}

// Step holds exactly one of Pointer, Key or State.
type Step struct {
	Pointer *PointerStep `yaml:"pointer"`
	Key     *KeyStep     `yaml:"key"`
	State   *StateStep   `yaml:"state"`
	Settle  int          `yaml:"settle"`
}

type PointerStep struct {
	Action string `yaml:"action"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
}

type KeyStep struct {
	Code    string `yaml:"code"`
	Rune    string `yaml:"rune"`
	Release bool   `yaml:"release"`
}

type StateStep struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	D float64 `yaml:"d"`
}

var pointerActions = map[string]hal.PointerAction{
	"down":  hal.PointerDown,
	"drag":  hal.PointerDrag,
	"up":    hal.PointerUp,
	"move":  hal.PointerMove,
	"leave": hal.PointerLeave,
}

var keyCodes = map[string]hal.KeyCode{
	"up":        hal.KeyUp,
	"down":      hal.KeyDown,
	"left":      hal.KeyLeft,
	"right":     hal.KeyRight,
	"enter":     hal.KeyEnter,
	"escape":    hal.KeyEscape,
	"backspace": hal.KeyBackspace,
	"tab":       hal.KeyTab,
	"delete":    hal.KeyDelete,
	"home":      hal.KeyHome,
	"end":       hal.KeyEnd,
}

// Parse decodes and validates a script. Unknown fields are rejected.
func Parse(data []byte) (*Script, error) {
	var s Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.Settle <= 0 {
		s.Settle = 1
	}
	for i, st := range s.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalid, i+1, err)
		}
	}
	return &s, nil
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", path, err)
	}
	return s, nil
}

func (st Step) validate() error {
	n := 0
	if st.Pointer != nil {
		n++
		if _, ok := pointerActions[st.Pointer.Action]; !ok {
			return fmt.Errorf("unknown pointer action %q", st.Pointer.Action)
		}
	}
	if st.Key != nil {
		n++
		if st.Key.Code == "" && len([]rune(st.Key.Rune)) != 1 {
			return errors.New("key needs a code or a single rune")
		}
		if _, ok := keyCodes[st.Key.Code]; st.Key.Code != "" && !ok {
			return fmt.Errorf("unknown key code %q", st.Key.Code)
		}
	}
	if st.State != nil {
		n++
		m := phase.Matrix2D{A: st.State.A, B: st.State.B, C: st.State.C, D: st.State.D}
		if !m.Finite() {
			return errors.New("state is not finite")
		}
	}
	if n != 1 {
		return fmt.Errorf("want exactly one of pointer, key or state, got %d", n)
	}
	if st.Settle < 0 {
		return fmt.Errorf("negative settle %d", st.Settle)
	}
	return nil
}

// Player feeds a script to the HAL one step at a time. State steps go
// through setState as JSON.
type Player struct {
	s        *Script
	setState func([]byte) error

	next uint64
	i    int
}

func NewPlayer(s *Script, setState func([]byte) error) *Player {
	return &Player{s: s, setState: setState}
}

// Step has the signature of hal.HeadlessConfig.Script. It reports done
// once every step has run and the last one has settled.
func (p *Player) Step(tick uint64, inj hal.Injector) (bool, error) {
	if tick < p.next {
		return false, nil
	}
	if p.i >= len(p.s.Steps) {
		return true, nil
	}

	st := p.s.Steps[p.i]
	p.i++
	settle := st.Settle
	if settle == 0 {
		settle = p.s.Settle
	}
	p.next = tick + uint64(settle)

	switch {
	case st.Pointer != nil:
		inj.InjectPointer(hal.PointerEvent{Action: pointerActions[st.Pointer.Action], X: st.Pointer.X, Y: st.Pointer.Y})
	case st.Key != nil:
		ev := hal.KeyEvent{Code: keyCodes[st.Key.Code], Press: !st.Key.Release}
		if r := []rune(st.Key.Rune); len(r) == 1 {
			ev.Rune = r[0]
		}
		inj.InjectKey(ev)
	case st.State != nil:
		if p.setState == nil {
			return false, fmt.Errorf("step %d: no state target", p.i)
		}
		m := phase.Matrix2D{A: st.State.A, B: st.State.B, C: st.State.C, D: st.State.D}
		if err := p.setState(portrait.EncodeState(m)); err != nil {
			return false, fmt.Errorf("step %d: %w", p.i, err)
		}
	}
	return false, nil
}
