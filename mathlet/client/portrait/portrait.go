// Package portrait is the request/reply client of the portrait task, plus a
// Gateway task that serves those requests to code outside the kernel.
package portrait

import (
	"errors"
	"fmt"

	"linphase/mathlet/kernel"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
	widget "linphase/mathlet/tasks/portrait"
)

// ErrClosed is returned once the kernel has shut down.
var ErrClosed = errors.New("portrait client: closed")

// Client talks to one portrait task. It is not safe for concurrent use;
// each kernel task owns its own Client.
type Client struct {
	portraitCap kernel.Capability

	replyCap     kernel.Capability
	replyCapXfer kernel.Capability
	replyCh      <-chan kernel.Message

	nextRequestID uint32
}

func New(portraitCap kernel.Capability) *Client {
	return &Client{portraitCap: portraitCap, nextRequestID: 1}
}

func (c *Client) ensureReply(ctx *kernel.Context) error {
	if c.replyCh != nil {
		return nil
	}

	ep := ctx.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	if !ep.Valid() {
		return errors.New("portrait client: failed to allocate reply endpoint")
	}

	ch, ok := ctx.RecvChan(ep.Restrict(kernel.RightRecv))
	if !ok {
		return errors.New("portrait client: failed to receive from reply endpoint")
	}

	c.replyCap = ep
	c.replyCapXfer = ep.Restrict(kernel.RightSend)
	c.replyCh = ch
	return nil
}

func (c *Client) nextID() uint32 {
	id := c.nextRequestID
	c.nextRequestID++
	if c.nextRequestID == 0 {
		c.nextRequestID = 1
	}
	return id
}

func (c *Client) send(ctx *kernel.Context, kind proto.Kind, payload []byte) error {
	for {
		res := ctx.SendToCapResult(c.portraitCap, uint16(kind), payload, c.replyCapXfer)
		switch res {
		case kernel.SendOK:
			return nil
		case kernel.SendErrQueueFull:
			ctx.BlockOnTick()
		case kernel.SendErrNoEndpoint:
			return ErrClosed
		default:
			return fmt.Errorf("portrait client send %s: %s", kind, res)
		}
	}
}

// roundTrip sends one request and waits for the reply carrying its id.
// Stale replies from abandoned requests are skipped.
func (c *Client) roundTrip(ctx *kernel.Context, kind proto.Kind, payload []byte, reqID uint32) (phase.Matrix2D, error) {
	if err := c.send(ctx, kind, payload); err != nil {
		return phase.Matrix2D{}, err
	}
	for {
		msg, ok := <-c.replyCh
		if !ok {
			return phase.Matrix2D{}, ErrClosed
		}
		switch proto.Kind(msg.Kind) {
		case proto.MsgError:
			code, ref, gotID, detail, ok := proto.DecodeErrorPayload(msg.Payload())
			if !ok || ref != kind || (gotID != 0 && gotID != reqID) {
				continue
			}
			if code == proto.ErrBadState {
				return phase.Matrix2D{}, fmt.Errorf("portrait %s: %w", kind, widget.ErrBadState)
			}
			return phase.Matrix2D{}, fmt.Errorf("portrait %s: %s: %s", kind, code, detail)
		case proto.MsgStateResp:
			gotID, a, b, cc, d, ok := proto.DecodeStatePayload(msg.Payload())
			if !ok || gotID != reqID {
				continue
			}
			return phase.Matrix2D{A: a, B: b, C: cc, D: d}, nil
		}
	}
}

// State returns the widget's current matrix.
func (c *Client) State(ctx *kernel.Context) (phase.Matrix2D, error) {
	if err := c.ensureReply(ctx); err != nil {
		return phase.Matrix2D{}, err
	}
	id := c.nextID()
	return c.roundTrip(ctx, proto.MsgStateGet, proto.RequestPayload(id), id)
}

// Grade returns the graded answer.
func (c *Client) Grade(ctx *kernel.Context) (phase.Matrix2D, error) {
	if err := c.ensureReply(ctx); err != nil {
		return phase.Matrix2D{}, err
	}
	id := c.nextID()
	return c.roundTrip(ctx, proto.MsgGradeGet, proto.RequestPayload(id), id)
}

// SetState applies m and returns the matrix the widget settled on, which
// differs from m when m had to be clamped.
func (c *Client) SetState(ctx *kernel.Context, m phase.Matrix2D) (phase.Matrix2D, error) {
	if err := c.ensureReply(ctx); err != nil {
		return phase.Matrix2D{}, err
	}
	id := c.nextID()
	return c.roundTrip(ctx, proto.MsgStateSet, proto.StatePayload(id, m.A, m.B, m.C, m.D), id)
}

// Notify sends m as a fire-and-forget state change; the widget logs and
// drops invalid values.
func Notify(ctx *kernel.Context, portraitCap kernel.Capability, m phase.Matrix2D) error {
	res := ctx.SendToCapResult(portraitCap, uint16(proto.MsgStateSet), proto.StatePayload(0, m.A, m.B, m.C, m.D), kernel.Capability{})
	if res != kernel.SendOK {
		return fmt.Errorf("portrait notify: %s", res)
	}
	return nil
}
