package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, c *Config)
	}{
		{
			name: "no flags keeps defaults",
			args: []string{"send", "file.bin"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, 80, c.LineWidth)
				assert.Equal(t, 250*time.Millisecond, c.ProgressInterval)
			},
		},
		{
			name: "separate and combined forms",
			args: []string{"-d", "/tmp/x", "-p=500", "-b", "1024", "-l", "debug"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, "/tmp/x", c.StagingDir)
				assert.Equal(t, 500*time.Millisecond, c.ProgressInterval)
				assert.Equal(t, 1024, c.TransportBufferSize)
				assert.Equal(t, "debug", c.LogLevel)
			},
		},
		{
			name: "bool flag does not swallow the next argument",
			args: []string{"-wheel-keys", "mouse", "-wheel-repeat", "7"},
			want: func(t *testing.T, c *Config) {
				assert.True(t, c.WheelAsCursorKeys)
				assert.Equal(t, 7, c.WheelRepeat)
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"--row", "3", "-w", "40", "--sgr"},
			want: func(t *testing.T, c *Config) {
				assert.Equal(t, 40, c.LineWidth)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			require.NoError(t, parseFlags(&c, tt.args))
			tt.want(t, &c)
		})
	}
}

func TestStripFlags(t *testing.T) {
	args := []string{"-c", "cfg.json", "-l", "debug", "-wheel-keys", "send", "-w=64", "photo.png"}
	assert.Equal(t, []string{"send", "photo.png"}, StripFlags(args))
}
