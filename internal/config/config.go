// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"

	"moodlens/internal/analytics"
)

// Environment types
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// LogLevel represents the logging level for the application
type LogLevel string

// Available log levels
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Database types
const (
	SQLiteDatabase = "sqlite"
)

const defaultPrivateKey = "88888888888888888888888888888888"

// Config holds all configuration parameters for the application
type Config struct {
	// Application settings
	AppName     string   `mapstructure:"appname"`
	AppPort     string   `mapstructure:"appport"`
	Environment string   `mapstructure:"environment"`
	LogLevel    LogLevel `mapstructure:"loglevel"`
	PrivateKey  string   `mapstructure:"privatekey"`
	APIKey      string   `mapstructure:"apikey"` // Bearer key for entry writes, empty disables the check

	// File paths
	DatabasePath          string `mapstructure:"storagepath"`
	DatabaseName          string `mapstructure:"-"` // Derived from other settings
	PublicDirectory       string `mapstructure:"publicdir"`
	PublicAssetsUrlPrefix string `mapstructure:"publicassetsurlprefix"`

	// Logging settings
	LogsDirectory    string `mapstructure:"logsdir"`
	LogsMaxSizeInMb  int    `mapstructure:"logsmaxsizeinmb"`
	LogsMaxBackups   int    `mapstructure:"logsmaxbackups"`
	LogsMaxAgeInDays int    `mapstructure:"logsmaxageindays"`

	// Database settings
	DatabaseType         string `mapstructure:"dbtype"`
	DatabaseMaxOpenConns int    `mapstructure:"dbmaxopenconns"`
	DatabaseMaxIdleConns int    `mapstructure:"dbmaxidleconns"`

	// Report settings
	Timezone             string `mapstructure:"timezone"`
	MaxTagsPerEntry      int    `mapstructure:"maxtagsperentry"`
	TagRankSize          int    `mapstructure:"tagranksize"`
	ReportWorkers        int    `mapstructure:"reportworkers"`
	ReportTimeoutSeconds int    `mapstructure:"reporttimeoutseconds"`

	// Job scheduling settings
	JobIntervalSeconds int `mapstructure:"jobintervalseconds"`

	// Data retention settings, 0 keeps entries forever
	EntryRetentionDays int `mapstructure:"entryretentiondays"`

	location *time.Location
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig returns the application configuration
func GetConfig() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("appname", "moodlens")
		v.SetDefault("appport", "3000")
		v.SetDefault("environment", Development)
		v.SetDefault("loglevel", string(LogLevelDebug))
		v.SetDefault("privatekey", defaultPrivateKey)
		v.SetDefault("apikey", "")
		v.SetDefault("storagepath", "storage")
		v.SetDefault("publicdir", "public")
		v.SetDefault("publicassetsurlprefix", "/")
		v.SetDefault("logsdir", "logs")
		v.SetDefault("logsmaxsizeinmb", 20)
		v.SetDefault("logsmaxbackups", 10)
		v.SetDefault("logsmaxageindays", 30)
		v.SetDefault("dbtype", SQLiteDatabase)
		v.SetDefault("dbmaxopenconns", 0)
		v.SetDefault("dbmaxidleconns", 0)
		v.SetDefault("timezone", "UTC")
		v.SetDefault("maxtagsperentry", 12)
		v.SetDefault("tagranksize", 3)
		v.SetDefault("reportworkers", 4)
		v.SetDefault("reporttimeoutseconds", 10)
		v.SetDefault("jobintervalseconds", 300)
		v.SetDefault("entryretentiondays", 0)

		v.BindEnv("appname", "MOODLENS_APP_NAME")
		v.BindEnv("appport", "MOODLENS_APP_PORT")
		v.BindEnv("environment", "MOODLENS_ENV")
		v.BindEnv("loglevel", "MOODLENS_LOG_LEVEL")
		v.BindEnv("privatekey", "MOODLENS_PRIVATE_KEY")
		v.BindEnv("apikey", "MOODLENS_API_KEY")
		v.BindEnv("storagepath", "MOODLENS_STORAGE_PATH")
		v.BindEnv("publicdir", "MOODLENS_PUBLIC_DIR")
		v.BindEnv("publicassetsurlprefix", "MOODLENS_PUBLIC_ASSETS_URL_PREFIX")
		v.BindEnv("logsdir", "MOODLENS_LOGS_DIR")
		v.BindEnv("logsmaxsizeinmb", "MOODLENS_LOGS_MAX_SIZE_IN_MB")
		v.BindEnv("logsmaxbackups", "MOODLENS_LOGS_MAX_BACKUPS")
		v.BindEnv("logsmaxageindays", "MOODLENS_LOGS_MAX_AGE_IN_DAYS")
		v.BindEnv("dbtype", "MOODLENS_DB_TYPE")
		v.BindEnv("dbmaxopenconns", "MOODLENS_DB_MAX_OPEN_CONNS")
		v.BindEnv("dbmaxidleconns", "MOODLENS_DB_MAX_IDLE_CONNS")
		v.BindEnv("timezone", "MOODLENS_TIMEZONE")
		v.BindEnv("maxtagsperentry", "MOODLENS_MAX_TAGS_PER_ENTRY")
		v.BindEnv("tagranksize", "MOODLENS_TAG_RANK_SIZE")
		v.BindEnv("reportworkers", "MOODLENS_REPORT_WORKERS")
		v.BindEnv("reporttimeoutseconds", "MOODLENS_REPORT_TIMEOUT_SECONDS")
		v.BindEnv("jobintervalseconds", "MOODLENS_JOB_INTERVAL_SECONDS")
		v.BindEnv("entryretentiondays", "MOODLENS_ENTRY_RETENTION_DAYS")

		cfg = &Config{}
		if err := v.Unmarshal(cfg); err != nil {
			log.Fatalf("config: failed to unmarshal configuration: %v", err)
		}

		if err := cfg.validate(); err != nil {
			log.Fatalf("config: invalid configuration: %v", err)
		}

		cfg.DatabaseName = cfg.GetDatabasePath()

		if cfg.IsProduction() && cfg.PrivateKey == defaultPrivateKey {
			log.Fatal("Production requires a unique MOODLENS_PRIVATE_KEY (cannot use default)")
		}
	})
	return cfg
}

// validate checks the configuration for errors and resolves the timezone
func (c *Config) validate() error {
	validEnvs := map[string]bool{
		Development: true,
		Production:  true,
		Test:        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}

	validDBTypes := map[string]bool{
		SQLiteDatabase: true,
	}
	if !validDBTypes[c.DatabaseType] {
		return fmt.Errorf("invalid database type: %s", c.DatabaseType)
	}

	if c.PrivateKey == "" {
		return fmt.Errorf("private key is required")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.location = loc

	if c.MaxTagsPerEntry < 1 || c.MaxTagsPerEntry > analytics.MaxTagsPerEntryLimit {
		return fmt.Errorf("max tags per entry must be between 1 and %d, got %d", analytics.MaxTagsPerEntryLimit, c.MaxTagsPerEntry)
	}
	if c.TagRankSize < 1 {
		return fmt.Errorf("tag rank size must be positive, got %d", c.TagRankSize)
	}
	if c.ReportWorkers < 1 {
		return fmt.Errorf("report workers must be positive, got %d", c.ReportWorkers)
	}
	if c.JobIntervalSeconds < 1 {
		return fmt.Errorf("job interval must be at least one second, got %d", c.JobIntervalSeconds)
	}
	if c.EntryRetentionDays < 0 {
		return fmt.Errorf("entry retention days cannot be negative, got %d", c.EntryRetentionDays)
	}

	return nil
}

// GetDatabasePath returns the appropriate database path based on environment
func (c *Config) GetDatabasePath() string {
	if c.DatabaseName == "" {
		c.DatabaseName = filepath.Join(c.DatabasePath,
			fmt.Sprintf("%s-%s.db", c.AppName, c.Environment))
	}
	return c.DatabaseName
}

// Location returns the zone reports group hours and dates in.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// ReportTimeout bounds a single report computation
func (c *Config) ReportTimeout() time.Duration {
	if c.ReportTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.ReportTimeoutSeconds) * time.Second
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// IsTest returns true if the environment is test
func (c *Config) IsTest() bool {
	return c.Environment == Test
}

// GetPort returns the HTTP server port (implements cartridge.Config interface).
func (c *Config) GetPort() string {
	return c.AppPort
}

// GetPublicDirectory returns the path to public/static assets (implements cartridge.Config interface).
func (c *Config) GetPublicDirectory() string {
	return c.PublicDirectory
}

// GetAssetsPrefix returns the URL prefix for static assets (implements cartridge.Config interface).
func (c *Config) GetAssetsPrefix() string {
	return c.PublicAssetsUrlPrefix
}

// GetAppName returns the application name (implements cartridge.FactoryConfig interface).
func (c *Config) GetAppName() string {
	return c.AppName
}

// DatabaseDSN returns the database connection string (implements cartridge.FactoryConfig interface).
func (c *Config) DatabaseDSN() string {
	return c.GetDatabasePath()
}

// GetSessionSecret returns the session encryption key (implements cartridge.FactoryConfig interface).
func (c *Config) GetSessionSecret() string {
	return c.PrivateKey
}

// GetMaxOpenConns returns the MaxOpenConns value. An explicit setting wins;
// tests use a single connection and other environments allow concurrent
// snapshot reads.
func (c *Config) GetMaxOpenConns() int {
	if c.DatabaseMaxOpenConns > 0 {
		return c.DatabaseMaxOpenConns
	}

	if c.Environment == Test {
		return 1
	}

	return 10
}

// GetMaxIdleConns returns the MaxIdleConns value, following GetMaxOpenConns.
func (c *Config) GetMaxIdleConns() int {
	if c.DatabaseMaxIdleConns > 0 {
		return c.DatabaseMaxIdleConns
	}

	if c.Environment == Test {
		return 1
	}

	return 5
}

// GetLogLevel returns the log level as a string (implements cartridge.LogConfigProvider).
func (c *Config) GetLogLevel() string {
	return string(c.LogLevel)
}

// GetLogDirectory returns the logs directory (implements cartridge.LogConfigProvider).
func (c *Config) GetLogDirectory() string {
	return c.LogsDirectory
}

// GetLogMaxSizeMB returns the max log file size in MB (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxSizeMB() int {
	return c.LogsMaxSizeInMb
}

// GetLogMaxBackups returns the max number of log backups (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxBackups() int {
	return c.LogsMaxBackups
}

// GetLogMaxAgeDays returns the max age in days for log files (implements cartridge.LogConfigProvider).
func (c *Config) GetLogMaxAgeDays() int {
	return c.LogsMaxAgeInDays
}

// Reset clears the cached configuration; intended for tests.
func Reset() {
	once = sync.Once{}
	cfg = nil
}
