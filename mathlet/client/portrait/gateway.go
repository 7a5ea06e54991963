package portrait

import (
	"context"
	"fmt"

	"linphase/mathlet/kernel"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
	widget "linphase/mathlet/tasks/portrait"
)

const sendRetry = 16

type request struct {
	kind  proto.Kind
	m     phase.Matrix2D
	reply chan response
}

type response struct {
	m   phase.Matrix2D
	err error
}

// Gateway is a kernel task that lets ordinary goroutines (HTTP handlers,
// tests) query and set the widget state. Requests are served one at a
// time; bodies are JSON at this edge and binary on the kernel side.
type Gateway struct {
	client *Client
	reqs   chan request
	done   chan struct{}
}

func NewGateway(portraitCap kernel.Capability) *Gateway {
	return &Gateway{
		client: New(portraitCap),
		reqs:   make(chan request),
		done:   make(chan struct{}),
	}
}

func (g *Gateway) Run(ctx *kernel.Context) {
	defer close(g.done)

	// Nothing sends here; the channel closes with the kernel.
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
		case req := <-g.reqs:
			req.reply <- g.serve(ctx, req)
		}
	}
}

func (g *Gateway) serve(ctx *kernel.Context, req request) response {
	var (
		m   phase.Matrix2D
		err error
	)
	switch req.kind {
	case proto.MsgStateGet:
		m, err = g.client.State(ctx)
	case proto.MsgGradeGet:
		m, err = g.client.Grade(ctx)
	case proto.MsgStateSet:
		m, err = g.client.SetState(ctx, req.m)
	case proto.MsgClear, proto.MsgAppShutdown:
		res := ctx.SendToCapRetry(g.client.portraitCap, uint16(req.kind), nil, kernel.Capability{}, sendRetry)
		if res != kernel.SendOK {
			err = fmt.Errorf("portrait %s: %s", req.kind, res)
		}
	default:
		err = fmt.Errorf("portrait gateway: unsupported %s", req.kind)
	}
	return response{m: m, err: err}
}

func (g *Gateway) do(ctx context.Context, req request) (phase.Matrix2D, error) {
	req.reply = make(chan response, 1)
	select {
	case g.reqs <- req:
	case <-g.done:
		return phase.Matrix2D{}, ErrClosed
	case <-ctx.Done():
		return phase.Matrix2D{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.m, res.err
	case <-ctx.Done():
		return phase.Matrix2D{}, ctx.Err()
	}
}

// State returns the widget state as JSON.
func (g *Gateway) State(ctx context.Context) ([]byte, error) {
	m, err := g.do(ctx, request{kind: proto.MsgStateGet})
	if err != nil {
		return nil, err
	}
	return widget.EncodeState(m), nil
}

// Grade returns the graded answer as JSON.
func (g *Gateway) Grade(ctx context.Context) ([]byte, error) {
	m, err := g.do(ctx, request{kind: proto.MsgGradeGet})
	if err != nil {
		return nil, err
	}
	return widget.EncodeState(m), nil
}

// SetState applies a JSON state and returns the state the widget settled
// on. Malformed input fails with widget.ErrBadState before reaching the
// kernel.
func (g *Gateway) SetState(ctx context.Context, body []byte) ([]byte, error) {
	m, err := widget.ParseState(body)
	if err != nil {
		return nil, err
	}
	m, err = g.do(ctx, request{kind: proto.MsgStateSet, m: m})
	if err != nil {
		return nil, err
	}
	return widget.EncodeState(m), nil
}

// Clear removes every shape from the portrait.
func (g *Gateway) Clear(ctx context.Context) error {
	_, err := g.do(ctx, request{kind: proto.MsgClear})
	return err
}

// Stop asks the widget task to exit.
func (g *Gateway) Stop(ctx context.Context) error {
	_, err := g.do(ctx, request{kind: proto.MsgAppShutdown})
	return err
}
