package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/gophterm/internal/common"
)

// Config holds runtime settings for gophterm.
//
// Units: ProgressInterval is a time.Duration; LineWidth counts base64
// characters per envelope line; TransportBufferSize counts bytes.
type Config struct {
	StagingDir          string
	ProgressInterval    time.Duration
	LineWidth           int
	TransportBufferSize int
	WheelAsCursorKeys   bool
	WheelRepeat         int
	LogLevel            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StagingDir = filepath.Join(os.TempDir(), common.AppName)
	c.ProgressInterval = 250 * time.Millisecond
	c.LineWidth = 80
	c.TransportBufferSize = 64 * 1024
	c.WheelAsCursorKeys = false
	c.WheelRepeat = 3
	c.LogLevel = "info"
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.StagingDir == "" {
		return fmt.Errorf("%w: empty staging dir", ErrInvalidConfig)
	}
	if c.LineWidth <= 0 || c.LineWidth%4 != 0 {
		return fmt.Errorf("%w: line width %d is not a positive multiple of 4", ErrInvalidConfig, c.LineWidth)
	}
	if c.TransportBufferSize < c.LineWidth+2 {
		return fmt.Errorf("%w: transport buffer %d cannot hold one envelope line", ErrInvalidConfig, c.TransportBufferSize)
	}
	if c.ProgressInterval <= 0 {
		return fmt.Errorf("%w: progress interval must be positive", ErrInvalidConfig)
	}
	if c.WheelRepeat < 0 {
		return fmt.Errorf("%w: negative wheel repeat", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags found in args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
