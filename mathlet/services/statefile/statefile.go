// Package statefile mirrors the widget state into a JSON file and applies
// edits made to that file by others.
package statefile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"linphase/mathlet/client/logger"
	portraitclient "linphase/mathlet/client/portrait"
	"linphase/mathlet/kernel"
	"linphase/mathlet/phase"
	"linphase/mathlet/proto"
	"linphase/mathlet/tasks/portrait"
)

type Service struct {
	path     string
	portrait kernel.Capability
	notify   kernel.Capability
	logCap   kernel.Capability

	// last is what we wrote most recently; events that leave the file
	// equal to it are our own.
	last []byte
}

// New returns a service for path. notify must be subscribed to the widget's
// MsgStateChanged announcements.
func New(path string, portraitCap, notifyCap, logCap kernel.Capability) *Service {
	return &Service{path: filepath.Clean(path), portrait: portraitCap, notify: notifyCap, logCap: logCap}
}

func (s *Service) Run(ctx *kernel.Context) {
	ch, ok := ctx.RecvChan(s.notify)
	if !ok {
		return
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Logf(ctx, s.logCap, "statefile: watch disabled: %v", err)
	} else {
		defer w.Close()
		// Watch the directory so atomic replacements are seen.
		if err := w.Add(filepath.Dir(s.path)); err != nil {
			logger.Logf(ctx, s.logCap, "statefile: watch %s: %v", filepath.Dir(s.path), err)
		} else {
			events, errs = w.Events, w.Errors
		}
	}

	s.reload(ctx)

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if proto.Kind(msg.Kind) != proto.MsgStateChanged {
				continue
			}
			_, a, b, c, d, ok := proto.DecodeStatePayload(msg.Payload())
			if !ok {
				continue
			}
			if err := s.write(phase.Matrix2D{A: a, B: b, C: c, D: d}); err != nil {
				logger.Logf(ctx, s.logCap, "statefile: %v", err)
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != s.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			s.reload(ctx)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Logf(ctx, s.logCap, "statefile: watch error: %v", err)
		}
	}
}

// reload applies the file's contents to the widget unless they are our own
// last write. A missing file is not an error; it appears with the first
// state change.
func (s *Service) reload(ctx *kernel.Context) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		logger.Logf(ctx, s.logCap, "statefile: read: %v", err)
		return
	}
	if bytes.Equal(bytes.TrimSpace(data), s.last) {
		return
	}
	m, err := portrait.ParseState(data)
	if err != nil {
		// Editors often truncate before writing; the next event brings
		// the complete file.
		logger.Logf(ctx, s.logCap, "statefile: %s: %v", s.path, err)
		return
	}
	if err := portraitclient.Notify(ctx, s.portrait, m); err != nil {
		logger.Logf(ctx, s.logCap, "statefile: apply: %v", err)
		return
	}
	logger.Logf(ctx, s.logCap, "statefile: applied %s", s.path)
}

// write replaces the file atomically.
func (s *Service) write(m phase.Matrix2D) error {
	data := portrait.EncodeState(m)
	if bytes.Equal(data, s.last) {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".linphase-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return err
	}
	s.last = data
	return nil
}
