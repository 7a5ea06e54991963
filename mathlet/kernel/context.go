package kernel

// Context is what a running task sees of the kernel. Every method is safe on
// a zero Context and then behaves as if the kernel were shut down.
type Context struct {
	k      *Kernel
	taskID TaskID
}

func (c *Context) TaskID() TaskID { return c.taskID }

// NewEndpoint allocates an endpoint owned by the caller.
func (c *Context) NewEndpoint(rights Rights) Capability {
	if c.k == nil {
		return Capability{}
	}
	return c.k.NewEndpoint(rights)
}

// RecvChan exposes the endpoint queue for use in a select. The channel is
// closed on shutdown.
func (c *Context) RecvChan(epCap Capability) (<-chan Message, bool) {
	if c.k == nil || !epCap.valid() || !epCap.canRecv() {
		return nil, false
	}
	return c.k.recvChan(epCap.ep)
}

// Recv blocks for the next message. ok is false once the kernel is down.
func (c *Context) Recv(epCap Capability) (msg Message, ok bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	msg, ok = <-ch
	return msg, ok
}

func (c *Context) TryRecv(epCap Capability) (msg Message, ok bool) {
	ch, ok := c.RecvChan(epCap)
	if !ok {
		return Message{}, false
	}
	select {
	case msg, ok = <-ch:
		return msg, ok
	default:
		return Message{}, false
	}
}

// SendToCapResult queues one message without blocking. xfer travels with
// the message; pass the zero Capability when there is nothing to hand over.
func (c *Context) SendToCapResult(toCap Capability, kind uint16, payload []byte, xfer Capability) SendResult {
	switch {
	case c.k == nil:
		return SendErrNoEndpoint
	case !toCap.valid():
		return SendErrInvalidToCap
	case !toCap.canSend():
		return SendErrToNoSendRight
	}
	return c.k.send(0, toCap.ep, kind, payload, xfer)
}

// SendToCapRetry waits a tick and tries again while the destination is full,
// at most limit times. A zero limit never blocks.
func (c *Context) SendToCapRetry(toCap Capability, kind uint16, payload []byte, xfer Capability, limit int) SendResult {
	res := c.SendToCapResult(toCap, kind, payload, xfer)
	for i := 0; res == SendErrQueueFull && i < limit; i++ {
		c.BlockOnTick()
		if c.k.isClosed() {
			return SendErrNoEndpoint
		}
		res = c.SendToCapResult(toCap, kind, payload, xfer)
	}
	return res
}

func (c *Context) NowTick() uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.nowTick()
}

// BlockOnTick parks until the host advances the timebase once.
func (c *Context) BlockOnTick() {
	if c.k == nil {
		return
	}
	_ = c.k.waitTick(c.k.nowTick())
}

// WaitTick parks until the tick passes after and returns the new tick.
func (c *Context) WaitTick(after uint64) uint64 {
	if c.k == nil {
		return 0
	}
	return c.k.waitTick(after)
}
