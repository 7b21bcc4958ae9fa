package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		require.Equal(t, Default(), s)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "modelbench.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://gpu-box:11434/v1
workers: 8
timeout_seconds: 300
requests_per_second: 2.5
baseline_dir: /var/lib/modelbench
`), 0o644))

		s, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, "http://gpu-box:11434/v1", s.BaseURL)
		require.Equal(t, 8, s.Workers)
		require.Equal(t, 300*time.Second, s.Timeout())
		require.Equal(t, 2.5, s.RequestsPerSecond)
		require.Equal(t, "/var/lib/modelbench", s.BaselineDir)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "modelbench.yaml")
		require.NoError(t, os.WriteFile(path, []byte("workers: 0\n"), 0o644))
		_, err := Load(path)
		require.ErrorContains(t, err, "workers")
	})
}

func TestApplyOverrides(t *testing.T) {
	t.Run("weakly typed values decode", func(t *testing.T) {
		s := Default()
		err := s.ApplyOverrides(map[string]any{
			"workers":         "6",
			"base_url":        "http://localhost:8080/v1",
			"timeout_seconds": 30,
		})
		require.NoError(t, err)
		require.Equal(t, 6, s.Workers)
		require.Equal(t, "http://localhost:8080/v1", s.BaseURL)
		require.Equal(t, 30, s.TimeoutSeconds)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		s := Default()
		err := s.ApplyOverrides(map[string]any{"wrokers": 6})
		require.Error(t, err)
	})

	t.Run("overrides must still validate", func(t *testing.T) {
		s := Default()
		err := s.ApplyOverrides(map[string]any{"workers": 0})
		require.ErrorContains(t, err, "workers")
	})
}

func TestStandardConfigs(t *testing.T) {
	configs := StandardConfigs()
	require.Len(t, configs, 6)

	tags := make(map[string]bool)
	for _, cfg := range configs {
		require.NoError(t, cfg.Validate(), "config %s", cfg.Tag)
		require.False(t, tags[cfg.Tag], "duplicate tag %s", cfg.Tag)
		tags[cfg.Tag] = true
	}

	t.Run("creative is the only sampling template", func(t *testing.T) {
		for _, cfg := range configs {
			require.Equal(t, cfg.Tag == "creative", !cfg.Deterministic(), "config %s", cfg.Tag)
		}
	})
}

func TestConfigByTag(t *testing.T) {
	t.Run("empty selection returns all", func(t *testing.T) {
		configs, err := ConfigByTag(nil)
		require.NoError(t, err)
		require.Len(t, configs, 6)
	})

	t.Run("tags resolve in order", func(t *testing.T) {
		configs, err := ConfigByTag([]string{"creative", "precise"})
		require.NoError(t, err)
		require.Len(t, configs, 2)
		require.Equal(t, "creative", configs[0].Tag)
		require.Equal(t, "precise", configs[1].Tag)
	})

	t.Run("unknown tag is an error", func(t *testing.T) {
		_, err := ConfigByTag([]string{"warp-speed"})
		require.ErrorContains(t, err, "unknown config template")
	})
}
