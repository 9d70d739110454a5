package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	algebra "github.com/njchilds90/goalgebra"
)

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig([]byte(""), "test.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, algebra.DefaultStepLimit, cfg.StepLimit)
	assert.Equal(t, algebra.DefaultMaxPasses, cfg.MaxPasses)
	assert.Equal(t, DefaultSessions, cfg.Sessions)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseConfig_Overrides(t *testing.T) {
	yaml := `
listen: 127.0.0.1:9000
step_limit: 100
max_passes: 10
sessions: 4
log_level: debug
`
	cfg, err := ParseConfig([]byte(yaml), "test.yaml")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, 100, cfg.StepLimit)
	assert.Equal(t, 10, cfg.MaxPasses)
	assert.Equal(t, 4, cfg.Sessions)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParseConfig_ErrorNegativeStepLimit(t *testing.T) {
	_, err := ParseConfig([]byte("step_limit: -1\n"), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test.yaml")
	assert.Contains(t, err.Error(), "step_limit")
}

func TestParseConfig_ErrorNegativeSessions(t *testing.T) {
	_, err := ParseConfig([]byte("sessions: -3\n"), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessions")
}

func TestParseConfig_ErrorLogLevel(t *testing.T) {
	_, err := ParseConfig([]byte("log_level: loud\n"), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestParseConfig_ErrorSyntax(t *testing.T) {
	_, err := ParseConfig([]byte("listen: [\n"), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing test.yaml")
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "algebra.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sessions: 2\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Sessions)
	assert.Equal(t, DefaultListen, cfg.Listen)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.SimplifierOptions(slog.Default()), 3)
}
