// Package config loads gateway settings from an optional YAML file with
// environment-variable overrides. Precedence: SOPY_* env vars, then the file,
// then compiled defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults match the original deployment layout.
const (
	DefaultListenAddr      = "127.0.0.1:8000"
	DefaultAdminSocketPath = "/tmp/sopy_admin.sock"
	DefaultDBPath          = "sopy_admin.db"
	DefaultUpstreamTimeout = 5 * time.Minute
)

// Config holds the gateway's runtime settings.
type Config struct {
	// ListenAddr is the public HTTP bind address.
	ListenAddr string `yaml:"listen_addr"`

	// AdminSocketPath is the unix socket the admin channel binds.
	AdminSocketPath string `yaml:"admin_socket_path"`

	// DBPath is the SQLite config-store file.
	DBPath string `yaml:"db_path"`

	// UpstreamTimeout bounds a single forwarded backend call.
	UpstreamTimeout time.Duration `yaml:"-"`
}

// UnmarshalYAML parses the duration field from its "30s"/"5m" string form,
// which yaml.v3 does not handle for time.Duration on its own.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ListenAddr      string `yaml:"listen_addr"`
		AdminSocketPath string `yaml:"admin_socket_path"`
		DBPath          string `yaml:"db_path"`
		UpstreamTimeout string `yaml:"upstream_timeout"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.ListenAddr = raw.ListenAddr
	c.AdminSocketPath = raw.AdminSocketPath
	c.DBPath = raw.DBPath
	if raw.UpstreamTimeout != "" {
		d, err := time.ParseDuration(raw.UpstreamTimeout)
		if err != nil {
			return fmt.Errorf("invalid upstream_timeout: %w", err)
		}
		c.UpstreamTimeout = d
	}
	return nil
}

// Load reads path (if it exists), applies env overrides, then fills defaults.
// A missing file is not an error; env vars and defaults still apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment overrides
	if addr := os.Getenv("SOPY_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if sock := os.Getenv("SOPY_ADMIN_SOCKET"); sock != "" {
		cfg.AdminSocketPath = sock
	}
	if dbPath := os.Getenv("SOPY_DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if timeout := os.Getenv("SOPY_UPSTREAM_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SOPY_UPSTREAM_TIMEOUT: %w", err)
		}
		cfg.UpstreamTimeout = d
	}

	// Defaults
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.AdminSocketPath == "" {
		cfg.AdminSocketPath = DefaultAdminSocketPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = DefaultUpstreamTimeout
	}

	return &cfg, nil
}
