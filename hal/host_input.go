package hal

const inputQueue = 64

type hostKeyboard struct {
	ch chan KeyEvent
}

func newHostKeyboard() *hostKeyboard {
	return &hostKeyboard{ch: make(chan KeyEvent, inputQueue)}
}

func (k *hostKeyboard) Events() <-chan KeyEvent { return k.ch }

func (k *hostKeyboard) push(ev KeyEvent) {
	select {
	case k.ch <- ev:
	default:
	}
}

// hostPointer turns sampled cursor state into gesture events.
type hostPointer struct {
	ch chan PointerEvent

	down   bool
	inside bool
	x, y   int
}

func newHostPointer() *hostPointer {
	return &hostPointer{ch: make(chan PointerEvent, inputQueue)}
}

func (p *hostPointer) Events() <-chan PointerEvent { return p.ch }

func (p *hostPointer) push(ev PointerEvent) {
	select {
	case p.ch <- ev:
	default:
	}
}

// sample feeds one observation of the cursor: its position, whether it is
// over the framebuffer and whether the primary button is held.
func (p *hostPointer) sample(x, y int, inside, pressed bool) {
	moved := x != p.x || y != p.y
	wasDown := p.down
	p.x, p.y = x, y

	switch {
	case pressed && !p.down:
		p.down = true
		if inside {
			p.push(PointerEvent{Action: PointerDown, X: x, Y: y})
		}
	case pressed && moved:
		p.push(PointerEvent{Action: PointerDrag, X: x, Y: y})
	case !pressed && p.down:
		p.down = false
		p.push(PointerEvent{Action: PointerUp, X: x, Y: y})
	case !pressed && inside && moved:
		p.push(PointerEvent{Action: PointerMove, X: x, Y: y})
	}

	// A release outside the surface also ends the hover.
	if !inside && !p.down && (p.inside || wasDown) {
		p.push(PointerEvent{Action: PointerLeave, X: x, Y: y})
	}
	p.inside = inside
}
