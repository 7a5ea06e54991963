// Package input forwards HAL keyboard and pointer events to the widget.
package input

import (
	"math"

	"linphase/hal"
	"linphase/mathlet/kernel"
	"linphase/mathlet/proto"
)

// Gesture edges are retried for this many ticks when the widget is busy.
const edgeRetry = 8

type Service struct {
	in  hal.Input
	out kernel.Capability

	keys    <-chan hal.KeyEvent
	pointer <-chan hal.PointerEvent

	dropped uint64
}

func New(in hal.Input, out kernel.Capability) *Service {
	return &Service{in: in, out: out}
}

// Dropped reports how many motion events were discarded because the
// widget's queue was full. It is only meaningful after Run returns.
func (s *Service) Dropped() uint64 { return s.dropped }

func (s *Service) Run(ctx *kernel.Context) {
	if s.in != nil {
		if kbd := s.in.Keyboard(); kbd != nil {
			s.keys = kbd.Events()
		}
		if ptr := s.in.Pointer(); ptr != nil {
			s.pointer = ptr.Events()
		}
	}
	if s.keys == nil && s.pointer == nil {
		return
	}

	stop := ctx.NewEndpoint(kernel.RightRecv)
	stopCh, ok := ctx.RecvChan(stop)
	if !ok {
		return
	}

	for {
		select {
		case _, ok := <-stopCh:
			if !ok {
				return
			}
		case ev := <-s.keys:
			if !s.forward(ctx, proto.MsgKey, proto.KeyPayload(uint16(ev.Code), ev.Press, ev.Rune), true) {
				return
			}
		case ev := <-s.pointer:
			edge := ev.Action != hal.PointerDrag && ev.Action != hal.PointerMove
			payload := proto.PointerPayload(proto.PointerAction(ev.Action), clamp16(ev.X), clamp16(ev.Y))
			if !s.forward(ctx, proto.MsgPointer, payload, edge) {
				return
			}
		}
	}
}

// forward delivers one event. Motion is dropped when the widget lags, since
// the next sample supersedes it; presses, releases and keys are retried.
// It returns false once the kernel is gone.
func (s *Service) forward(ctx *kernel.Context, kind proto.Kind, payload []byte, retry bool) bool {
	limit := 0
	if retry {
		limit = edgeRetry
	}
	switch ctx.SendToCapRetry(s.out, uint16(kind), payload, kernel.Capability{}, limit) {
	case kernel.SendOK:
	case kernel.SendErrQueueFull:
		s.dropped++
	case kernel.SendErrNoEndpoint:
		return false
	}
	return true
}

func clamp16(v int) int16 {
	return int16(min(max(v, math.MinInt16), math.MaxInt16))
}
