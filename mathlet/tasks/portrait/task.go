package portrait

import (
	"linphase/hal"
	"linphase/mathlet/client/logger"
	"linphase/mathlet/gfx"
	"linphase/mathlet/kernel"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
)

// Task owns one widget. Every input, query and state change reaches it as
// a message on its endpoint and is handled to completion before the next.
type Task struct {
	disp    hal.Display
	ep      kernel.Capability
	logCap  kernel.Capability
	notify  []kernel.Capability
	session string

	fb     hal.Framebuffer
	canvas *gfx.Canvas
	scenes *sceneSet
	w      *WidgetState

	zone      phase.Zone
	announced phase.Matrix2D
	pending   bool
}

// Option configures a Task.
type Option func(*Task)

// WithNotify adds a subscriber that receives MsgStateChanged after every
// change of the matrix.
func WithNotify(c kernel.Capability) Option {
	return func(t *Task) { t.notify = append(t.notify, c) }
}

// WithSession tags log lines with a session id.
func WithSession(id string) Option {
	return func(t *Task) { t.session = id }
}

func New(disp hal.Display, ep, logCap kernel.Capability, opts ...Option) *Task {
	t := &Task{disp: disp, ep: ep, logCap: logCap}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *Task) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(t.ep)
	if !ok {
		return
	}
	if t.disp == nil {
		return
	}
	t.fb = t.disp.Framebuffer()
	if t.fb == nil {
		return
	}

	l := DefaultLayout()
	t.canvas = gfx.NewCanvas(t.fb)
	t.scenes = newSceneSet(l, t.fb.Width(), t.fb.Height())
	t.w = NewWidget(t.scenes.scenes(), l)
	t.zone = t.w.Eigen.Zone
	logger.Logf(ctx, t.logCap, "portrait: session %s started, zone %s", t.session, t.zone)

	t.render()
	t.pending = true
	t.announce(ctx)

	for msg := range ch {
		dirty := false
		switch proto.Kind(msg.Kind) {
		case proto.MsgAppShutdown:
			logger.Logf(ctx, t.logCap, "portrait: session %s stopped", t.session)
			return

		case proto.MsgPointer:
			action, x, y, ok := proto.DecodePointerPayload(msg.Payload())
			if !ok {
				continue
			}
			dirty = t.w.Pointer(action, int(x), int(y))

		case proto.MsgKey:
			code, press, r, ok := proto.DecodeKeyPayload(msg.Payload())
			if !ok || !press {
				continue
			}
			dirty = t.w.Key(hal.KeyCode(code), r)

		case proto.MsgClear:
			t.w.Clear()
			dirty = true

		case proto.MsgStateGet, proto.MsgGradeGet:
			id, ok := proto.DecodeRequestPayload(msg.Payload())
			if !ok {
				t.replyError(ctx, msg, proto.ErrBadMessage, 0, "short request")
				continue
			}
			t.replyState(ctx, msg.Cap, id)

		case proto.MsgStateSet:
			id, a, b, c, d, ok := proto.DecodeStatePayload(msg.Payload())
			if !ok {
				t.replyError(ctx, msg, proto.ErrBadMessage, 0, "short state")
				continue
			}
			if err := t.w.SetMatrix(phase.Matrix2D{A: a, B: b, C: c, D: d}); err != nil {
				logger.Logf(ctx, t.logCap, "portrait: rejected state: %v", err)
				t.replyError(ctx, msg, proto.ErrBadState, id, err.Error())
				continue
			}
			dirty = true
			t.replyState(ctx, msg.Cap, id)
		}

		if dirty {
			t.render()
		}
		t.afterUpdate(ctx)
	}
}

func (t *Task) render() {
	render(t.canvas, t.w, t.scenes)
	_ = t.canvas.Display()
}

func (t *Task) afterUpdate(ctx *kernel.Context) {
	if z := t.w.Eigen.Zone; z != t.zone {
		t.zone = z
		logger.Logf(ctx, t.logCap, "portrait: zone %s tr=%.2f det=%.2f", z, t.w.Tr, t.w.Det)
	}
	if t.w.M != t.announced {
		t.pending = true
	}
	t.announce(ctx)
}

// announce sends the current matrix to every subscriber. A subscriber whose
// queue is full is retried after the next message.
func (t *Task) announce(ctx *kernel.Context) {
	if !t.pending {
		return
	}
	m := t.w.M
	payload := proto.StatePayload(0, m.A, m.B, m.C, m.D)
	t.pending = false
	for _, c := range t.notify {
		if res := ctx.SendToCapResult(c, uint16(proto.MsgStateChanged), payload, kernel.Capability{}); res == kernel.SendErrQueueFull {
			t.pending = true
		}
	}
	t.announced = m
}

func (t *Task) replyState(ctx *kernel.Context, reply kernel.Capability, id uint32) {
	if !reply.Valid() {
		return
	}
	m := t.w.M
	_ = ctx.SendToCapResult(reply, uint16(proto.MsgStateResp), proto.StatePayload(id, m.A, m.B, m.C, m.D), kernel.Capability{})
}

func (t *Task) replyError(ctx *kernel.Context, msg kernel.Message, code proto.ErrCode, id uint32, detail string) {
	if !msg.Cap.Valid() {
		return
	}
	_ = ctx.SendToCapResult(msg.Cap, uint16(proto.MsgError), proto.ErrorPayload(code, proto.Kind(msg.Kind), id, detail), kernel.Capability{})
}
