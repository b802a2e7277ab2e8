package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported calendar providers.
const (
	ProviderNone   = ""
	ProviderICloud = "icloud"
	ProviderGoogle = "google"
)

// ICloudConfig holds CalDAV credentials. iCloud requires an app-specific password.
type ICloudConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Username     string `yaml:"username"`
	Password     string `yaml:"app_password"`
	CalendarName string `yaml:"calendar_name"`
}

// GoogleConfig holds OAuth client credentials and the token account to use.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Account      string `yaml:"account"`
}

// Config is the top-level application configuration.
type Config struct {
	// Provider selects the calendar backend. Empty disables calendar sync.
	Provider string `yaml:"provider"`

	// StatePath is the JSON file holding the event map, liked meetups and joined teams.
	StatePath string `yaml:"state_path"`

	// Timezone is the IANA zone meetup and game times are interpreted in.
	Timezone string `yaml:"timezone"`

	LogLevel string `yaml:"log_level"`

	// Schedule is the cron spec used by `sync --watch`.
	Schedule string `yaml:"schedule"`

	ICloud ICloudConfig `yaml:"icloud"`
	Google GoogleConfig `yaml:"google"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:  ProviderNone,
		StatePath: "challengeu-state.json",
		Timezone:  "Local",
		LogLevel:  "info",
		Schedule:  "0 6 * * *",
	}
}

// Normalize fills in zero values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.StatePath == "" {
		c.StatePath = def.StatePath
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Schedule == "" {
		c.Schedule = def.Schedule
	}
}

// Validate reports settings the backends cannot work with.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderNone:
	case ProviderICloud:
		if c.ICloud.Username == "" || c.ICloud.Password == "" {
			return errors.New("icloud provider needs ICLOUD_USERNAME and ICLOUD_APP_SPECIFIC_PASSWORD")
		}
	case ProviderGoogle:
	default:
		return fmt.Errorf("unknown calendar provider %q", c.Provider)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

// Load reads the YAML file at path, applies environment overrides and
// normalizes the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.Normalize()
	return cfg, nil
}

// ApplyEnv overrides fields with any set environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Provider, "CALENDAR_PROVIDER")
	set(&c.StatePath, "STATE_PATH")
	set(&c.Timezone, "PRIMARY_TIMEZONE")
	set(&c.LogLevel, "LOG_LEVEL")
	set(&c.Schedule, "SYNC_SCHEDULE")
	set(&c.ICloud.Endpoint, "CALDAV_ENDPOINT")
	set(&c.ICloud.Username, "ICLOUD_USERNAME")
	set(&c.ICloud.Password, "ICLOUD_APP_SPECIFIC_PASSWORD")
	set(&c.ICloud.CalendarName, "ICLOUD_CALENDAR_NAME")
	set(&c.Google.ClientID, "GOOGLE_CLIENT_ID")
	set(&c.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	set(&c.Google.Account, "GOOGLE_ACCOUNT")
}
