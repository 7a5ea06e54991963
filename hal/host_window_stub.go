//go:build !cgo

package hal

import "errors"

// ErrWindowClosed is returned by step to end the window loop cleanly.
var ErrWindowClosed = errors.New("window closed")

func RunWindow(_ HAL, _ func() error, _ string) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
