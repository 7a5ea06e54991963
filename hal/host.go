package hal

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// HostConfig sizes the host framebuffer and routes log lines.
type HostConfig struct {
	Width      int
	Height     int
	TickPeriod time.Duration
	Log        *zap.Logger
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	ptr    *hostPointer
	t      *hostTime
}

// New returns a host HAL implementation.
func New(cfg HostConfig) HAL {
	if cfg.Width <= 0 {
		cfg.Width = 800
	}
	if cfg.Height <= 0 {
		cfg.Height = 600
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &hostHAL{
		logger: &hostLogger{log: log.Named("task")},
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		kbd:    newHostKeyboard(),
		ptr:    newHostPointer(),
		t:      newHostTime(cfg.TickPeriod),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd, ptr: h.ptr} }
func (h *hostHAL) Time() Time       { return h.t }

func (h *hostHAL) InjectKey(ev KeyEvent)         { h.kbd.push(ev) }
func (h *hostHAL) InjectPointer(ev PointerEvent) { h.ptr.push(ev) }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }

// hostLogger forwards task log lines to zap. A leading "name:" is lifted
// into a field so lines from different tasks stay filterable.
type hostLogger struct {
	log *zap.Logger
}

func (l *hostLogger) WriteLineString(s string) {
	src, msg, ok := strings.Cut(s, ": ")
	if !ok || strings.ContainsAny(src, " \t") {
		l.log.Info(s)
		return
	}
	l.log.Info(msg, zap.String("src", src))
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}
