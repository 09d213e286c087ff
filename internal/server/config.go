package server

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the HTTP server configuration.
// All fields have working defaults so the server runs with zero config; a
// TOML file and CLI flags can override them.
type Config struct {
	// Addr is the listen address (host:port).
	Addr string `toml:"addr"`

	// OutputDir is where converted SVGs are retained for download.
	OutputDir string `toml:"output_dir"`

	// UploadDir is where acquired input images are staged. Empty selects
	// the system temp dir.
	UploadDir string `toml:"upload_dir"`

	// EngineBinary is the path to the vectorization engine executable.
	// Empty selects "vtracer" from PATH.
	EngineBinary string `toml:"engine_binary"`

	// MaxUploadMB caps the total size of a multipart conversion request.
	MaxUploadMB int64 `toml:"max_upload_mb"`

	// DownloadTimeoutSec bounds URL-mode image fetches, in seconds.
	DownloadTimeoutSec int `toml:"download_timeout_sec"`

	// Redis configures the optional shared result cache. When Addr is
	// empty, a file cache under OutputDir is used instead.
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig holds the optional Redis cache settings.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		OutputDir:          "outputs",
		MaxUploadMB:        50,
		DownloadTimeoutSec: 30,
	}
}

// LoadConfig reads a TOML config file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}
