package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/gophterm/internal/flagx"
)

var (
	knownFlags = []string{"-d", "-p", "-w", "-b", "-wheel-keys", "-wheel-repeat", "-l"}
	boolFlags  = []string{"-wheel-keys"}
)

// parseFlags populates Config fields from the flags it owns in args. Other
// arguments (sub-commands, their flags) are filtered out beforehand.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StagingDir, "d", cfg.StagingDir, "staging directory for encrypted bulk files")
	progress := fs.Int("p", int(cfg.ProgressInterval/time.Millisecond), "progress publication interval (in milliseconds)")
	fs.IntVar(&cfg.LineWidth, "w", cfg.LineWidth, "upload envelope line width")
	fs.IntVar(&cfg.TransportBufferSize, "b", cfg.TransportBufferSize, "transport write buffer budget (in bytes)")
	fs.BoolVar(&cfg.WheelAsCursorKeys, "wheel-keys", cfg.WheelAsCursorKeys, "report the wheel as cursor keys")
	fs.IntVar(&cfg.WheelRepeat, "wheel-repeat", cfg.WheelRepeat, "cursor keys per wheel notch")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags, boolFlags...)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.ProgressInterval = time.Duration(*progress) * time.Millisecond
	return nil
}

// StripFlags removes every configuration flag, including -c and -config,
// from args so the remainder can be handed to the command parser.
func StripFlags(args []string) []string {
	all := append([]string{"-c", "-config"}, knownFlags...)
	return flagx.StripArgs(args, all, boolFlags...)
}
