package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	App       AppConfig       `yaml:"app"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host                  string `yaml:"host"`
	Port                  int    `yaml:"port"`
	User                  string `yaml:"user"`
	Password              string `yaml:"password"`
	Database              string `yaml:"database"`
	SSLMode               string `yaml:"ssl_mode"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
	MaxOpenConns          int    `yaml:"max_open_conns"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// AppConfig contains business settings
type AppConfig struct {
	Timezone string `yaml:"timezone"`
}

// SchedulerConfig contains nightly job settings. Cron specs carry a leading
// seconds field and run in the App timezone.
type SchedulerConfig struct {
	FlagOpenRentalsCron  string `yaml:"flag_open_rentals_cron"`
	ArchiveDayReportCron string `yaml:"archive_day_report_cron"`
	ReportDir            string `yaml:"report_dir"`
}

const DefaultTimezone = "America/Toronto"

// Load reads configuration from a YAML file. An empty path skips the file and
// builds the configuration from the environment alone.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables if present
	if err := cfg.overrideWithEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() error {
	// Database secrets may point at a mounted secret file
	secrets := []struct {
		env    string
		target *string
	}{
		{"DB_HOST", &c.Database.Host},
		{"DB_USER", &c.Database.User},
		{"DB_PASSWORD", &c.Database.Password},
	}
	for _, s := range secrets {
		val, err := secretEnv(s.env)
		if err != nil {
			return err
		}
		if val != "" {
			*s.target = val
		}
	}
	port, err := secretEnv("DB_PORT")
	if err != nil {
		return err
	}
	if port != "" {
		fmt.Sscanf(port, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// App
	if val := os.Getenv("DEFAULT_TIMEZONE"); val != "" {
		c.App.Timezone = val
	}

	// Scheduler
	if val := os.Getenv("REPORT_DIR"); val != "" {
		c.Scheduler.ReportDir = val
	}
	return nil
}

// secretEnv returns the value of an environment variable. When the value names
// an existing file, the trimmed file contents are returned instead.
func secretEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", nil
	}
	info, err := os.Stat(val)
	if err != nil || info.IsDir() {
		return val, nil
	}
	data, err := os.ReadFile(val)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file for %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSeconds == 0 {
		c.Server.ReadTimeoutSeconds = 15
	}
	if c.Server.WriteTimeoutSeconds == 0 {
		c.Server.WriteTimeoutSeconds = 30
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.ConnectTimeoutSeconds == 0 {
		c.Database.ConnectTimeoutSeconds = 10
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = DefaultTimezone
	}
	if c.Scheduler.FlagOpenRentalsCron == "" {
		c.Scheduler.FlagOpenRentalsCron = "0 0 20 * * *"
	}
	if c.Scheduler.ArchiveDayReportCron == "" {
		c.Scheduler.ArchiveDayReportCron = "0 30 23 * * *"
	}
	if c.Scheduler.ReportDir == "" {
		c.Scheduler.ReportDir = "reports"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// App validation
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}

	return nil
}

// Location returns the configured business timezone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDatabaseConnectionString returns a PostgreSQL connection URL with the
// credentials percent-encoded
func (c *Config) GetDatabaseConnectionString() string {
	query := url.Values{}
	query.Set("sslmode", c.Database.SSLMode)
	query.Set("connect_timeout", strconv.Itoa(c.Database.ConnectTimeoutSeconds))
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Database,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
