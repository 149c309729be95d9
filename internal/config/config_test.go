package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasklane/internal/config"
)

func writeSettings(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write settings: %v", err)
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv(config.EnvProjectID, "")
	t.Setenv(config.EnvDatabase, "")
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Database != config.DefaultDatabase {
		t.Errorf("expected default database, got %q", cfg.Database)
	}
	if cfg.SyncTimeout != config.DefaultSyncTimeout {
		t.Errorf("expected default sync timeout, got %v", cfg.SyncTimeout)
	}
	if cfg.ProjectID != "" {
		t.Errorf("expected empty project, got %q", cfg.ProjectID)
	}
}

func TestNew_SettingsFile(t *testing.T) {
	t.Setenv(config.EnvProjectID, "")
	t.Setenv(config.EnvDatabase, "")
	dir := t.TempDir()
	writeSettings(t, dir, `
project_id = "todo-app-123"
database = "tasks-db"
sync_timeout = "3s"
debug = true
`)

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectID != "todo-app-123" {
		t.Errorf("expected project from file, got %q", cfg.ProjectID)
	}
	if cfg.Database != "tasks-db" {
		t.Errorf("expected database from file, got %q", cfg.Database)
	}
	if cfg.SyncTimeout != 3*time.Second {
		t.Errorf("expected 3s, got %v", cfg.SyncTimeout)
	}
	if !cfg.Debug {
		t.Error("expected debug from file")
	}
}

func TestNew_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `project_id = "from-file"`)
	t.Setenv(config.EnvProjectID, "from-env")
	t.Setenv(config.EnvDatabase, "")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProjectID != "from-env" {
		t.Errorf("expected env to win, got %q", cfg.ProjectID)
	}
}

func TestNew_InvalidSettings(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, `sync_timeout = "soon"`)

	_, err := config.New(dir)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), config.SettingsFile) {
		t.Errorf("expected error to name the settings file, got %v", err)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", config.AppName) {
		t.Errorf("unexpected dir %q", got)
	}
}

func TestTokenFiles(t *testing.T) {
	cfg := &config.Config{Dir: t.TempDir()}
	if cfg.HasToken() {
		t.Fatal("expected no token")
	}
	if err := os.WriteFile(cfg.TokenPath(), []byte("{}"), 0600); err != nil {
		t.Fatalf("failed to write token: %v", err)
	}
	if !cfg.HasToken() {
		t.Fatal("expected token")
	}
	if err := cfg.RemoveToken(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HasToken() {
		t.Error("expected token removed")
	}
}
