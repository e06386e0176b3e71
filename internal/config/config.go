// Package config loads tend's settings and persists user preferences.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// Config keys
const (
	KeyDatabasePath      = "database.path"
	KeyNotificationsPath = "notifications.path"
	KeyLogLevel          = "log.level"
	KeyTimelineMode      = "timeline.mode"
)

// Config is the resolved configuration
type Config struct {
	Database      DatabaseConfig      `mapstructure:"database"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Log           LogConfig           `mapstructure:"log"`
	Timeline      TimelineConfig      `mapstructure:"timeline"`
}

// DatabaseConfig locates the SQLite file
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// NotificationsConfig locates the notification tray file
type NotificationsConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig sets the log level (debug, info, warn, error)
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TimelineConfig holds the timeline display preference
type TimelineConfig struct {
	Mode string `mapstructure:"mode"`
}

// Manager reads configuration from defaults, the config file and TEND_*
// environment variables, and writes preference changes back to the file.
type Manager struct {
	mu   sync.Mutex
	v    *viper.Viper
	path string
}

// HomeDir returns the directory holding tend's data, $TEND_HOME or ~/.tend
func HomeDir() (string, error) {
	if dir := os.Getenv("TEND_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tend"), nil
}

// DefaultPath returns the default config file location
func DefaultPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Defaults fills v with the built-in settings rooted at dir
func Defaults(v *viper.Viper, dir string) {
	v.SetDefault(KeyDatabasePath, filepath.Join(dir, "tend.db"))
	v.SetDefault(KeyNotificationsPath, filepath.Join(dir, "notifications.yaml"))
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyTimelineMode, string(TimelineDefault))
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file is not an error.
func Load(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	Defaults(v, filepath.Dir(path))

	v.SetEnvPrefix("TEND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return &Manager{v: v, path: path}, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.path
}

// Config returns the resolved configuration
func (m *Manager) Config() (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Set stores key=value in the config file, leaving other file keys untouched.
// Defaults and environment overrides are not written out.
func (m *Manager) Set(key string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := viper.New()
	file.SetConfigFile(m.path)
	file.SetConfigType("yaml")
	if err := file.ReadInConfig(); err != nil && !isNotExist(err) {
		return fmt.Errorf("failed to read config %s: %w", m.path, err)
	}
	file.Set(key, value)

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := file.WriteConfigAs(m.path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", m.path, err)
	}

	m.v.Set(key, value)
	return nil
}
