package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophterm/internal/flagx"
	"github.com/dmitrijs2005/gophterm/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from "zero" so a partial file only overrides what it
// names.
type JsonConfig struct {
	StagingDir          *string         `json:"staging_dir"`
	ProgressInterval    *timex.Duration `json:"progress_interval"`
	LineWidth           *int            `json:"line_width"`
	TransportBufferSize *int            `json:"transport_buffer_size"`
	WheelAsCursorKeys   *bool           `json:"wheel_as_cursor_keys"`
	WheelRepeat         *int            `json:"wheel_repeat"`
	LogLevel            *string         `json:"log_level"`
}

// parseJson overlays cfg with values loaded from the JSON file named by
// -c / -config in args (or GOPHTERM_CONFIG). No file means no change.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.JsonConfigFlags(args)
	if jsonConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", jsonConfigFile, err)
	}

	if jc.StagingDir != nil {
		cfg.StagingDir = *jc.StagingDir
	}
	if jc.ProgressInterval != nil {
		cfg.ProgressInterval = jc.ProgressInterval.Duration
	}
	if jc.LineWidth != nil {
		cfg.LineWidth = *jc.LineWidth
	}
	if jc.TransportBufferSize != nil {
		cfg.TransportBufferSize = *jc.TransportBufferSize
	}
	if jc.WheelAsCursorKeys != nil {
		cfg.WheelAsCursorKeys = *jc.WheelAsCursorKeys
	}
	if jc.WheelRepeat != nil {
		cfg.WheelRepeat = *jc.WheelRepeat
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
