package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"linphase/hal"
	portraitclient "linphase/mathlet/client/portrait"
	"linphase/mathlet/kernel"
	"linphase/mathlet/services/input"
	"linphase/mathlet/services/logger"
	"linphase/mathlet/services/statefile"
	"linphase/mathlet/tasks/portrait"
)

const stopTimeout = time.Second

// ErrFeatureMissing means the host cannot run the widget.
var ErrFeatureMissing = errors.New("required feature missing")

type Config struct {
	// StateFile, when set, is loaded at startup and kept in sync with
	// the widget.
	StateFile string

	// Session tags log lines.
	Session string
}

// System is the running kernel with its services and the widget task.
type System struct {
	h   hal.HAL
	k   *kernel.Kernel
	cfg Config

	gateway *portraitclient.Gateway

	disabled error
	ticks    <-chan uint64
	stopped  bool
}

// New starts the system. When the host lacks a required feature an alert
// is painted instead and Disabled reports why; the widget never starts.
func New(h hal.HAL, cfg Config) *System {
	s := &System{h: h, k: kernel.New(), cfg: cfg}
	installPanicHandler(h)

	if ht := h.Time(); ht != nil {
		s.ticks = ht.Ticks()
	}

	if err := checkFeatures(h); err != nil {
		s.disabled = err
		if l := h.Logger(); l != nil {
			l.WriteLineString("app: " + err.Error())
		}
		showAlert(h, err.Error()+" The tool is disabled.")
		return s
	}

	k := s.k
	logEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	portraitEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
	logCap := logEP.Restrict(kernel.RightSend)
	toPortrait := portraitEP.Restrict(kernel.RightSend)

	k.AddTask(logger.New(h.Logger(), logEP.Restrict(kernel.RightRecv)))

	opts := []portrait.Option{portrait.WithSession(cfg.Session)}
	var watch *statefile.Service
	if cfg.StateFile != "" {
		notifyEP := k.NewEndpoint(kernel.RightSend | kernel.RightRecv)
		opts = append(opts, portrait.WithNotify(notifyEP.Restrict(kernel.RightSend)))
		watch = statefile.New(cfg.StateFile, toPortrait, notifyEP.Restrict(kernel.RightRecv), logCap)
	}

	k.AddTask(portrait.New(h.Display(), portraitEP.Restrict(kernel.RightRecv), logCap, opts...))
	k.AddTask(input.New(h.Input(), toPortrait))
	if watch != nil {
		k.AddTask(watch)
	}

	s.gateway = portraitclient.NewGateway(toPortrait)
	k.AddTask(s.gateway)
	return s
}

// checkFeatures verifies the host can show and drive the widget.
func checkFeatures(h hal.HAL) error {
	disp := h.Display()
	if disp == nil || disp.Framebuffer() == nil {
		return fmt.Errorf("%w: no framebuffer.", ErrFeatureMissing)
	}
	fb := disp.Framebuffer()
	if fb.Format() != hal.PixelFormatRGB565 {
		return fmt.Errorf("%w: framebuffer is not RGB565.", ErrFeatureMissing)
	}
	if fb.Width() < portrait.MinWidth || fb.Height() < portrait.MinHeight {
		return fmt.Errorf("%w: display is %dx%d, need %dx%d.", ErrFeatureMissing,
			fb.Width(), fb.Height(), portrait.MinWidth, portrait.MinHeight)
	}
	in := h.Input()
	if in == nil || in.Pointer() == nil {
		return fmt.Errorf("%w: no pointer device.", ErrFeatureMissing)
	}
	return nil
}

// Disabled returns the feature check failure, if any.
func (s *System) Disabled() error { return s.disabled }

// Session is the id tagging this instance.
func (s *System) Session() string { return s.cfg.Session }

// Step forwards pending HAL ticks to the kernel. Hosts call it once per
// frame on the main goroutine.
func (s *System) Step() error {
	if s.stopped {
		return hal.ErrWindowClosed
	}
	for {
		select {
		case seq, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				return nil
			}
			s.k.TickTo(seq)
		default:
			return nil
		}
	}
}

// Shutdown stops the widget and waits for every task to return.
func (s *System) Shutdown() {
	if s.stopped {
		return
	}
	s.stopped = true
	if s.disabled == nil {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		_ = s.gateway.Stop(ctx)
		cancel()
	}
	s.k.Shutdown()
}

func (s *System) State(ctx context.Context) ([]byte, error) {
	if s.disabled != nil {
		return nil, s.disabled
	}
	return s.gateway.State(ctx)
}

func (s *System) Grade(ctx context.Context) ([]byte, error) {
	if s.disabled != nil {
		return nil, s.disabled
	}
	return s.gateway.Grade(ctx)
}

func (s *System) SetState(ctx context.Context, body []byte) ([]byte, error) {
	if s.disabled != nil {
		return nil, s.disabled
	}
	return s.gateway.SetState(ctx, body)
}

func (s *System) Clear(ctx context.Context) error {
	if s.disabled != nil {
		return s.disabled
	}
	return s.gateway.Clear(ctx)
}

// Snapshot writes the last presented frame as PNG.
func (s *System) Snapshot(w io.Writer, scale int) error {
	disp := s.h.Display()
	if disp == nil {
		return fmt.Errorf("snapshot: %w", hal.ErrNotImplemented)
	}
	return hal.SnapshotPNG(w, disp.Framebuffer(), scale)
}
