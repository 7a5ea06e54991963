package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"linphase/hal"
	"linphase/mathlet/kernel"
	"linphase/mathlet/proto"
)

type injectingHAL interface {
	hal.HAL
	hal.Injector
}

func setup(t *testing.T) (*kernel.Kernel, injectingHAL, <-chan kernel.Message, *Service) {
	t.Helper()
	k := kernel.New()
	h, ok := hal.New(hal.HostConfig{}).(injectingHAL)
	require.True(t, ok)

	ep := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	ch := recvChan(t, k, ep.Restrict(kernel.RightRecv))
	s := New(h.Input(), ep.Restrict(kernel.RightSend))
	return k, h, ch, s
}

type funcTask func(*kernel.Context)

func (f funcTask) Run(ctx *kernel.Context) { f(ctx) }

func recvChan(t *testing.T, k *kernel.Kernel, c kernel.Capability) <-chan kernel.Message {
	t.Helper()
	got := make(chan (<-chan kernel.Message), 1)
	k.AddTask(funcTask(func(ctx *kernel.Context) {
		ch, _ := ctx.RecvChan(c)
		got <- ch
	}))
	return <-got
}

func next(t *testing.T, ch <-chan kernel.Message) kernel.Message {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for forwarded event")
		return kernel.Message{}
	}
}

func TestForwardsInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)
	k, h, ch, s := setup(t)
	k.AddTask(s)

	h.InjectPointer(hal.PointerEvent{Action: hal.PointerDown, X: 10, Y: 20})
	h.InjectKey(hal.KeyEvent{Code: hal.KeyLeft, Press: true})
	h.InjectPointer(hal.PointerEvent{Action: hal.PointerDrag, X: 40000, Y: -40000})

	// Keys and pointer events arrive on separate queues; sort by kind.
	var ptr []kernel.Message
	var key kernel.Message
	for n := 0; n < 3; n++ {
		msg := next(t, ch)
		if proto.Kind(msg.Kind) == proto.MsgKey {
			key = msg
			continue
		}
		require.Equal(t, proto.MsgPointer, proto.Kind(msg.Kind))
		ptr = append(ptr, msg)
	}

	code, press, _, ok := proto.DecodeKeyPayload(key.Payload())
	require.True(t, ok)
	assert.Equal(t, uint16(hal.KeyLeft), code)
	assert.True(t, press)

	require.Len(t, ptr, 2)
	action, x, y, ok := proto.DecodePointerPayload(ptr[0].Payload())
	require.True(t, ok)
	assert.Equal(t, proto.PointerDown, action)
	assert.Equal(t, [2]int16{10, 20}, [2]int16{x, y})

	action, x, y, _ = proto.DecodePointerPayload(ptr[1].Payload())
	assert.Equal(t, proto.PointerDrag, action)
	assert.Equal(t, [2]int16{32767, -32768}, [2]int16{x, y})

	k.Shutdown()
}

func TestMotionDroppedWhenWidgetLags(t *testing.T) {
	defer goleak.VerifyNone(t)
	k, h, ch, s := setup(t)

	const drags = 20
	for i := 0; i < drags; i++ {
		h.InjectPointer(hal.PointerEvent{Action: hal.PointerDrag, X: i, Y: 0})
	}
	h.InjectPointer(hal.PointerEvent{Action: hal.PointerUp, X: drags, Y: 0})
	k.AddTask(s)

	// The release waits for room; ticks let it retry.
	got := 0
	for tick := uint64(1); ; tick++ {
		require.Less(t, tick, uint64(1000), "release never arrived")
		var msg kernel.Message
		select {
		case msg = <-ch:
		case <-time.After(10 * time.Millisecond):
			k.TickTo(tick)
			continue
		}
		action, _, _, _ := proto.DecodePointerPayload(msg.Payload())
		if action == proto.PointerUp {
			break
		}
		require.Equal(t, proto.PointerDrag, action)
		got++
	}

	k.Shutdown()
	assert.Equal(t, uint64(drags), uint64(got)+s.Dropped())
}

func TestNoInputExits(t *testing.T) {
	defer goleak.VerifyNone(t)
	k := kernel.New()
	k.AddTask(New(nil, kernel.Capability{}))
	k.Shutdown()
}
