package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from LINPHASE_* environment variables; command-line flags
// override it.
type Config struct {
	Headless bool   `envconfig:"HEADLESS" default:"false"`
	Hz       int    `envconfig:"HZ" default:"60"`
	Ticks    uint64 `envconfig:"TICKS" default:"0"`

	Width  int `envconfig:"WIDTH" default:"800"`
	Height int `envconfig:"HEIGHT" default:"600"`

	HTTPAddr      string `envconfig:"HTTP_ADDR"`
	StateFile     string `envconfig:"STATE_FILE"`
	Script        string `envconfig:"SCRIPT"`
	Snapshot      string `envconfig:"SNAPSHOT"`
	SnapshotScale int    `envconfig:"SNAPSHOT_SCALE" default:"1"`

	Verbose bool `envconfig:"VERBOSE" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("linphase", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that flags and the environment can both set.
func (c *Config) Validate() error {
	if c.Hz <= 0 {
		return fmt.Errorf("config: hz must be positive, got %d", c.Hz)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: bad size %dx%d", c.Width, c.Height)
	}
	if c.SnapshotScale < 1 {
		return fmt.Errorf("config: snapshot scale must be at least 1, got %d", c.SnapshotScale)
	}
	return nil
}
