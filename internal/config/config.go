// Package config handles the XDG configuration directory, its files and the
// optional config.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// AppName is the application directory name.
	AppName = "tasklane"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.toml"

	// DefaultDatabase is the Firestore database used when none is configured.
	DefaultDatabase = "(default)"

	// DefaultSyncTimeout bounds the wait for the first snapshots.
	DefaultSyncTimeout = 15 * time.Second
)

// Environment variables overriding config.toml.
const (
	EnvProjectID = "TASKLANE_PROJECT_ID"
	EnvDatabase  = "TASKLANE_DATABASE"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// ProjectID is the Google Cloud project hosting the Firestore database.
	ProjectID string

	// Database is the Firestore database ID.
	Database string

	// SyncTimeout bounds the wait for the first snapshots of a session.
	SyncTimeout time.Duration
}

// settings mirrors config.toml.
type settings struct {
	ProjectID   string   `toml:"project_id"`
	Database    string   `toml:"database"`
	SyncTimeout duration `toml:"sync_timeout"`
	Debug       bool     `toml:"debug"`
}

// duration decodes TOML strings such as "10s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasklane or $HOME/.config/tasklane.
// Settings are read from config.toml when present, then from the environment.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{
		Dir:         dir,
		Database:    DefaultDatabase,
		SyncTimeout: DefaultSyncTimeout,
	}
	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}
	cfg.loadEnv()
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

func (c *Config) loadSettings() error {
	var s settings
	_, err := toml.DecodeFile(c.SettingsPath(), &s)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	if s.ProjectID != "" {
		c.ProjectID = s.ProjectID
	}
	if s.Database != "" {
		c.Database = s.Database
	}
	if s.SyncTimeout.Duration > 0 {
		c.SyncTimeout = s.SyncTimeout.Duration
	}
	c.Debug = s.Debug
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvProjectID); v != "" {
		c.ProjectID = v
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SettingsPath returns the path to config.toml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
