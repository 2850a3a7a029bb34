// Package config handles the XDG configuration directory, file paths and
// the settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrIncomplete means a setting or credential the backend needs is missing.
var ErrIncomplete = errors.New("incomplete configuration")

const (
	// AppName is the application directory name.
	AppName = "countdo"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// SettingsFile is the TOML settings filename.
	SettingsFile = "config.toml"

	// DefaultSQLiteFile is the sqlite database filename used when no DSN is set.
	DefaultSQLiteFile = "tasks.db"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded from config.toml and the environment.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/countdo or $HOME/.config/countdo.
// Settings start at their defaults; call LoadSettings to read the file.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path of oauth_client.json.
func (c *Config) OAuthClientPath() string { return filepath.Join(c.Dir, OAuthClientFile) }

// TokenPath returns the path of token.json.
func (c *Config) TokenPath() string { return filepath.Join(c.Dir, TokenFile) }

// SettingsPath returns the path of config.toml.
func (c *Config) SettingsPath() string { return filepath.Join(c.Dir, SettingsFile) }

// SQLitePath returns the sqlite DSN: the configured one, or tasks.db in the config dir.
func (c *Config) SQLitePath() string {
	if c.Settings.DSN != "" {
		return c.Settings.DSN
	}
	return filepath.Join(c.Dir, DefaultSQLiteFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient reports whether oauth_client.json exists.
func (c *Config) HasOAuthClient() bool { return fileExists(c.OAuthClientPath()) }

// HasToken reports whether token.json exists.
func (c *Config) HasToken() bool { return fileExists(c.TokenPath()) }

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CheckCredentials reports missing OAuth files with a hint on how to fix them.
func (c *Config) CheckCredentials() error {
	if !c.HasOAuthClient() {
		return fmt.Errorf("%w: oauth_client.json not found in %s", ErrIncomplete, c.Dir)
	}
	if !c.HasToken() {
		return fmt.Errorf("%w: not logged in (run: countdo login)", ErrIncomplete)
	}
	return nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
