package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AdminSocketPath != DefaultAdminSocketPath {
		t.Errorf("AdminSocketPath = %q", cfg.AdminSocketPath)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UpstreamTimeout != DefaultUpstreamTimeout {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sopy.yaml")
	content := "listen_addr: 0.0.0.0:9090\nadmin_socket_path: /run/sopy/admin.sock\ndb_path: /var/lib/sopy/admin.db\nupstream_timeout: 30s\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "0.0.0.0:9090" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.AdminSocketPath != "/run/sopy/admin.sock" {
		t.Errorf("AdminSocketPath = %q", cfg.AdminSocketPath)
	}
	if cfg.DBPath != "/var/lib/sopy/admin.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UpstreamTimeout != 30*time.Second {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sopy.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: 127.0.0.1:7000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SOPY_LISTEN_ADDR", "127.0.0.1:7001")
	t.Setenv("SOPY_DB_PATH", "env.db")
	t.Setenv("SOPY_UPSTREAM_TIMEOUT", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7001" {
		t.Errorf("env must win over file, got %q", cfg.ListenAddr)
	}
	if cfg.DBPath != "env.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.UpstreamTimeout != time.Minute {
		t.Errorf("UpstreamTimeout = %v", cfg.UpstreamTimeout)
	}
}

func TestInvalidTimeoutEnv(t *testing.T) {
	t.Setenv("SOPY_UPSTREAM_TIMEOUT", "soon")
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("expected error for unparseable timeout")
	}
}

func TestMalformedConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sopy.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: [nope"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Errorf("expected parse error")
	}
}
