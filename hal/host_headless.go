package hal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Hz    int
	Ticks uint64

	// Script, when set, is called once per tick before step so it can
	// inject input. Returning done stops the run after that tick.
	Script func(tick uint64, inj Injector) (done bool, err error)
}

// RunHeadless drives step from a ticker without opening a window.
func RunHeadless(ctx context.Context, h HAL, step func() error, cfg HeadlessConfig) error {
	hh, ok := h.(*hostHAL)
	if !ok {
		return errors.New("run headless: HAL was not created by hal.New")
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			hh.t.step(1)

			done := false
			if cfg.Script != nil {
				var err error
				done, err = cfg.Script(tick, hh)
				if err != nil {
					return fmt.Errorf("headless script at tick %d: %w", tick, err)
				}
			}
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if done || (cfg.Ticks > 0 && tick >= cfg.Ticks) {
				return nil
			}
		}
	}
}
