package kernel

import (
	"fmt"
	"sync"
)

const (
	maxTasks     = 32
	maxEndpoints = 32
	mailboxSlots = 16
)

type TaskID uint8

// Rights define which operations are allowed for a capability.
type Rights uint8

const (
	RightSend Rights = 1 << iota
	RightRecv
)

// Endpoint identifies an IPC destination.
type Endpoint uint8

// Capability grants access to an IPC endpoint.
//
// It is opaque by construction (no exported fields) and may be transferred via IPC.
type Capability struct {
	ep     Endpoint
	rights Rights
}

func (c Capability) valid() bool {
	return c.rights != 0
}

func (c Capability) Valid() bool { return c.valid() }

func (c Capability) canSend() bool { return c.rights&RightSend != 0 }
func (c Capability) canRecv() bool { return c.rights&RightRecv != 0 }

// Restrict returns a capability with a reduced set of rights.
func (c Capability) Restrict(rights Rights) Capability {
	if !c.valid() {
		return Capability{}
	}
	r := c.rights & rights
	if r == 0 {
		return Capability{}
	}
	return Capability{ep: c.ep, rights: r}
}

func (c Capability) String() string {
	if !c.valid() {
		return "cap(invalid)"
	}
	return fmt.Sprintf("cap(ep=%d rights=%02b)", c.ep, c.rights)
}

// Message is a fixed-size IPC envelope.
type Message struct {
	From Endpoint
	To   Endpoint
	Kind uint16
	Len  uint16
	Data [MaxMessageBytes]byte
	Cap  Capability
}

// MaxMessageBytes is the maximum payload size for IPC messages.
const MaxMessageBytes = 128

// Payload returns the valid part of Data.
func (m *Message) Payload() []byte {
	n := int(m.Len)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	return m.Data[:n]
}

// SendResult describes the outcome of a send attempt.
type SendResult uint8

const (
	SendOK SendResult = iota
	SendErrInvalidFromCap
	SendErrInvalidToCap
	SendErrFromNoSendRight
	SendErrToNoSendRight
	SendErrNoEndpoint
	SendErrPayloadTooLarge
	SendErrQueueFull
)

func (r SendResult) String() string {
	switch r {
	case SendOK:
		return "ok"
	case SendErrInvalidFromCap:
		return "invalid from capability"
	case SendErrInvalidToCap:
		return "invalid to capability"
	case SendErrFromNoSendRight:
		return "from capability has no send right"
	case SendErrToNoSendRight:
		return "to capability has no send right"
	case SendErrNoEndpoint:
		return "no such endpoint"
	case SendErrPayloadTooLarge:
		return "payload too large"
	case SendErrQueueFull:
		return "queue full"
	default:
		return "unknown"
	}
}

// Task is a unit of execution. Run is called once on its own goroutine and
// should return when its endpoints are closed.
type Task interface {
	Run(*Context)
}

type endpointState struct {
	ch chan Message
}

// Kernel routes messages between tasks through bounded endpoints.
type Kernel struct {
	mu sync.RWMutex

	endpoints     [maxEndpoints]endpointState
	endpointCount Endpoint

	taskCount TaskID
	wg        sync.WaitGroup
	closed    bool

	tickMu   sync.Mutex
	tickCond *sync.Cond
	tick     uint64
}

// New creates a kernel instance.
func New() *Kernel {
	k := &Kernel{}
	k.tickCond = sync.NewCond(&k.tickMu)
	return k
}

// NewEndpoint allocates a new endpoint and returns a capability for it.
func (k *Kernel) NewEndpoint(rights Rights) Capability {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.endpointCount >= maxEndpoints || rights == 0 {
		return Capability{}
	}
	ep := k.endpointCount
	k.endpointCount++
	k.endpoints[ep] = endpointState{ch: make(chan Message, mailboxSlots)}
	return Capability{ep: ep, rights: rights}
}

// AddTask registers a task, starts it and returns its ID.
//
// A panic inside the task is recovered and reported to the panic handler.
func (k *Kernel) AddTask(t Task) TaskID {
	k.mu.Lock()
	if k.closed || k.taskCount >= maxTasks || t == nil {
		k.mu.Unlock()
		return 0
	}
	id := k.taskCount
	k.taskCount++
	k.wg.Add(1)
	k.mu.Unlock()

	go func() {
		defer k.wg.Done()
		defer recoverTask(id, t)
		t.Run(&Context{k: k, taskID: id})
	}()
	return id
}

// TickTo advances the kernel timebase and wakes tick waiters.
func (k *Kernel) TickTo(seq uint64) {
	k.tickMu.Lock()
	if seq > k.tick {
		k.tick = seq
	}
	k.tickMu.Unlock()
	k.tickCond.Broadcast()
}

// Shutdown closes every endpoint and waits for all tasks to return.
func (k *Kernel) Shutdown() {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		k.wg.Wait()
		return
	}
	k.closed = true
	for i := Endpoint(0); i < k.endpointCount; i++ {
		close(k.endpoints[i].ch)
	}
	k.mu.Unlock()

	// Tick waiters check closed under tickMu.
	k.tickMu.Lock()
	k.tickMu.Unlock()
	k.tickCond.Broadcast()
	k.wg.Wait()
}

func (k *Kernel) isClosed() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.closed
}

func (k *Kernel) send(from Endpoint, to Endpoint, kind uint16, payload []byte, xfer Capability) SendResult {
	if len(payload) > MaxMessageBytes {
		return SendErrPayloadTooLarge
	}

	var msg Message
	msg.From = from
	msg.To = to
	msg.Kind = kind
	msg.Len = uint16(len(payload))
	copy(msg.Data[:], payload)
	msg.Cap = xfer

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.closed || to >= k.endpointCount {
		return SendErrNoEndpoint
	}
	select {
	case k.endpoints[to].ch <- msg:
		return SendOK
	default:
		return SendErrQueueFull
	}
}

func (k *Kernel) recvChan(ep Endpoint) (<-chan Message, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if ep >= k.endpointCount {
		return nil, false
	}
	return k.endpoints[ep].ch, true
}

func (k *Kernel) nowTick() uint64 {
	k.tickMu.Lock()
	defer k.tickMu.Unlock()
	return k.tick
}

func (k *Kernel) waitTick(after uint64) uint64 {
	k.tickMu.Lock()
	defer k.tickMu.Unlock()
	for k.tick <= after {
		if k.isClosed() {
			return k.tick
		}
		k.tickCond.Wait()
	}
	return k.tick
}
