package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.DBPath != "showcal.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Admin != nil {
		t.Errorf("Admin should default to nil, got %+v", cfg.Admin)
	}
}

func TestLoadPartialFileNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showcal.yaml")
	content := `listen: ":9090"
admin:
  username: admin
  password_hash: "$2a$10$abcdefghijklmnopqrstuv"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	// Unset fields take defaults.
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.GenerateCron != "15 5 * * *" {
		t.Errorf("GenerateCron = %q", cfg.GenerateCron)
	}
	if cfg.Admin == nil || cfg.Admin.Username != "admin" {
		t.Errorf("Admin = %+v", cfg.Admin)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "showcal.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
