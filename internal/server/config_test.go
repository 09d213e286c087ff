package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "outputs", cfg.OutputDir)
	assert.EqualValues(t, 50, cfg.MaxUploadMB)
	assert.Equal(t, 30, cfg.DownloadTimeoutSec)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svgtrace.toml")
	content := `
addr = "127.0.0.1:9999"
engine_binary = "/usr/local/bin/vtracer"

[redis]
addr = "localhost:6379"
db = 2
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, "/usr/local/bin/vtracer", cfg.EngineBinary)
	// Unset keys keep their defaults.
	assert.EqualValues(t, 50, cfg.MaxUploadMB)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
