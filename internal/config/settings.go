package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"countdo/internal/service"
)

// Backend names accepted in the backend setting.
const (
	BackendFirestore = "firestore"
	BackendSQLite    = "sqlite"
	BackendMySQL     = "mysql"
	BackendMongo     = "mongodb"
)

// Settings is the content of config.toml.
type Settings struct {
	Backend    string `toml:"backend"`
	Project    string `toml:"project"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`

	// DSN is the sqlite file path or the mysql data source name.
	DSN string `toml:"dsn"`

	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	TimeZone    string `toml:"timezone"`
	TickSeconds int    `toml:"tick_seconds"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Backend:       BackendFirestore,
		Database:      "(default)",
		Collection:    service.DefaultCollection,
		MongoDatabase: AppName,
		TickSeconds:   1,
		LogLevel:      "warn",
		LogFormat:     "text",
	}
}

// LoadSettings reads config.toml (if present), then .env in the working
// directory, then COUNTDO_* environment variables. Later sources win.
func (c *Config) LoadSettings() error {
	s := DefaultSettings()

	if _, err := toml.DecodeFile(c.SettingsPath(), &s); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", c.SettingsPath(), err)
	}

	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	loadFromEnv(&s)

	if err := s.Validate(); err != nil {
		return err
	}
	c.Settings = s
	return nil
}

// loadFromEnv overrides settings from environment variables.
func loadFromEnv(s *Settings) {
	vars := []struct {
		name string
		dst  *string
	}{
		{"COUNTDO_BACKEND", &s.Backend},
		{"COUNTDO_PROJECT", &s.Project},
		{"COUNTDO_DATABASE", &s.Database},
		{"COUNTDO_COLLECTION", &s.Collection},
		{"COUNTDO_DSN", &s.DSN},
		{"COUNTDO_MONGO_URI", &s.MongoURI},
		{"COUNTDO_MONGO_DATABASE", &s.MongoDatabase},
		{"COUNTDO_TIMEZONE", &s.TimeZone},
		{"COUNTDO_LOG_LEVEL", &s.LogLevel},
		{"COUNTDO_LOG_FORMAT", &s.LogFormat},
	}
	for _, v := range vars {
		if val := os.Getenv(v.name); val != "" {
			*v.dst = val
		}
	}
}

// Validate checks the backend name and the time zone.
func (s Settings) Validate() error {
	switch s.Backend {
	case BackendFirestore, BackendSQLite, BackendMySQL, BackendMongo:
	default:
		return fmt.Errorf("unknown backend: %q", s.Backend)
	}
	if s.Collection == "" {
		return errors.New("collection must not be empty")
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone, or time.Local.
func (s Settings) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// Tick returns the countdown refresh interval.
func (s Settings) Tick() time.Duration {
	if s.TickSeconds <= 0 {
		return time.Second
	}
	return time.Duration(s.TickSeconds) * time.Second
}
