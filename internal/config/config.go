package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jbrinkw/coachbyte/internal/calendar"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Day       DayConfig       `yaml:"day"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string        `yaml:"driver"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Name     string        `yaml:"name"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
	SSLMode  string        `yaml:"sslmode"`
	Path     string        `yaml:"path"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DayConfig places the logical day boundary.
type DayConfig struct {
	Timezone  string `yaml:"timezone"`
	StartTime string `yaml:"start_time"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

// Location loads the configured timezone.
func (d DayConfig) Location() (*time.Location, error) {
	return calendar.LoadLocation(d.Timezone)
}

// StartMinutes returns the day boundary as minutes after midnight.
func (d DayConfig) StartMinutes() int {
	return calendar.ParseDayStart(d.StartTime)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix COACHBYTE_ and underscore-separated paths:
//
//	COACHBYTE_SERVER_HOST, COACHBYTE_SERVER_PORT,
//	COACHBYTE_DB_DRIVER, COACHBYTE_DB_HOST, COACHBYTE_DB_PORT, COACHBYTE_DB_NAME,
//	COACHBYTE_DB_USER, COACHBYTE_DB_PASSWORD, COACHBYTE_DB_SSLMODE, COACHBYTE_DB_PATH,
//	COACHBYTE_DAY_TIMEZONE, COACHBYTE_DAY_START_TIME,
//	COACHBYTE_LOG_LEVEL, COACHBYTE_LOG_FORMAT, COACHBYTE_LOG_FILE,
//	COACHBYTE_TAILSCALE_ENABLED, COACHBYTE_TAILSCALE_HOSTNAME
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:    ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database:  DatabaseConfig{Driver: DriverPostgres, Timeout: 5 * time.Second},
		Day:       DayConfig{Timezone: calendar.DefaultTimezone, StartTime: "00:00"},
		Tailscale: TailscaleConfig{Hostname: "coachbyte"},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COACHBYTE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COACHBYTE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("COACHBYTE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("COACHBYTE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("COACHBYTE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("COACHBYTE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("COACHBYTE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("COACHBYTE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("COACHBYTE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("COACHBYTE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("COACHBYTE_DAY_TIMEZONE"); v != "" {
		cfg.Day.Timezone = v
	}
	if v := os.Getenv("COACHBYTE_DAY_START_TIME"); v != "" {
		cfg.Day.StartTime = v
	}
	if v := os.Getenv("COACHBYTE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("COACHBYTE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("COACHBYTE_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("COACHBYTE_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("COACHBYTE_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}
	if c.Database.Timeout < 0 {
		return fmt.Errorf("database.timeout must not be negative")
	}
	if _, err := c.Day.Location(); err != nil {
		return fmt.Errorf("day.timezone: %w", err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
