package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.InDelta(t, 0.30, cfg.Underwriting.UnderpricedThreshold, 1e-9)
	assert.InDelta(t, 0.28, cfg.Underwriting.ExpenseRatioFloor, 1e-9)
	assert.InDelta(t, 250.0, cfg.Underwriting.ReservesPerUnit, 1e-9)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
underwriting:
  underpriced_threshold: 0.25
  reserves_per_unit: 300
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 0.25, cfg.Underwriting.UnderpricedThreshold, 1e-9)
	assert.InDelta(t, 300.0, cfg.Underwriting.ReservesPerUnit, 1e-9)

	// Untouched values keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.InDelta(t, 0.28, cfg.Underwriting.ExpenseRatioFloor, 1e-9)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644))

	t.Setenv("UW_SERVER_PORT", "7070")
	t.Setenv("UW_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  string
		content string
	}{
		{name: "bad port", content: "server:\n  port: -1\n"},
		{name: "bad log format", content: "logging:\n  format: xml\n"},
		{name: "bad underpriced threshold", content: "underwriting:\n  underpriced_threshold: 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
