// Test Type: Unit Test
// Description: Tests for the config package - layered configuration loading

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yoelcortes/setupforge/pkg/config"
)

func TestLoad(t *testing.T) {
	t.Run("embedded_defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "fast", cfg.Build.Compression)
		assert.Equal(t, "Output", cfg.Build.OutputDir)
		assert.Equal(t, ".sfpkg", cfg.Build.Extension)
	})

	t.Run("file_overrides_defaults", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, config.ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("[build]\ncompression = \"max\"\n"), 0644))

		cfg, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "max", cfg.Build.Compression)
		// Untouched keys keep their defaults
		assert.Equal(t, "Output", cfg.Build.OutputDir)
	})

	t.Run("missing_file_is_fine", func(t *testing.T) {
		cfg, err := config.Load(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "fast", cfg.Build.Compression)
	})

	t.Run("env_overrides_file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, config.ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("[build]\ncompression = \"max\"\n"), 0644))
		t.Setenv("SETUPFORGE_BUILD__COMPRESSION", "none")

		cfg, err := config.Load(dir)
		require.NoError(t, err)
		assert.Equal(t, "none", cfg.Build.Compression)
	})

	t.Run("bad_toml_is_an_error", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, config.ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte("[build\n"), 0644))

		_, err := config.Load(dir)
		require.Error(t, err)
	})
}

func TestWriteTemplate(t *testing.T) {
	t.Run("writes_defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setupforge.toml")
		require.NoError(t, config.WriteTemplate(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "compression")
		assert.Contains(t, string(data), "fast")
	})

	t.Run("refuses_to_overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "setupforge.toml")
		require.NoError(t, os.WriteFile(path, []byte("# mine"), 0644))

		err := config.WriteTemplate(path)
		require.Error(t, err)
	})
}
