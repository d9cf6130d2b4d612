package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophterm/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Setenv(flagx.ConfigEnv, "")

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"staging_dir":           "/srv/stage",
		"progress_interval":     "100ms",
		"line_width":            64,
		"transport_buffer_size": 4096,
		"wheel_as_cursor_keys":  true,
		"wheel_repeat":          5,
		"log_level":             "warn",
	})

	t.Run("all fields", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", full}))

		assert.Equal(t, "/srv/stage", cfg.StagingDir)
		assert.Equal(t, 100*time.Millisecond, cfg.ProgressInterval)
		assert.Equal(t, 64, cfg.LineWidth)
		assert.Equal(t, 4096, cfg.TransportBufferSize)
		assert.True(t, cfg.WheelAsCursorKeys)
		assert.Equal(t, 5, cfg.WheelRepeat)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("no file → no changes", func(t *testing.T) {
		cfg := &Config{StagingDir: "keep", LineWidth: 12}
		require.NoError(t, parseJson(cfg, []string{"send", "x.bin"}))

		assert.Equal(t, "keep", cfg.StagingDir)
		assert.Equal(t, 12, cfg.LineWidth)
	})

	t.Run("partial file keeps zero-valued overrides", func(t *testing.T) {
		p := writeTempJSON(t, dir, "partial.json", map[string]any{"wheel_repeat": 0})
		cfg := &Config{WheelRepeat: 3, LineWidth: 80}
		require.NoError(t, parseJson(cfg, []string{"-c", p}))

		assert.Equal(t, 0, cfg.WheelRepeat)
		assert.Equal(t, 80, cfg.LineWidth)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		err := parseJson(&Config{}, []string{"-c", bad})
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")})
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
