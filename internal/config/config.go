package config

import (
	"fmt"
	"time"

	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Dataset DatasetConfig `mapstructure:"dataset"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort     int           `mapstructure:"http_port"` // HTTP server port
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  string        `mapstructure:"cors_origins"` // Comma separated, "*" for any
}

// DatasetConfig describes where the availability series comes from
type DatasetConfig struct {
	Path            string        `mapstructure:"path"`             // CSV file with time,available_stores columns
	Timezone        string        `mapstructure:"timezone"`         // Analysis timezone ("America/Bogota", "-05:00", "UTC")
	DuplicatePolicy string        `mapstructure:"duplicate_policy"` // last_write_wins (default) or keep_first
	ReloadInterval  time.Duration `mapstructure:"reload_interval"`  // Periodic reload; 0 disables it
}

// EngineConfig holds the defaults applied to requests that omit a parameter,
// and the digest bounds
type EngineConfig struct {
	Granularity  string        `mapstructure:"granularity"`   // raw, 1min, 5min, 15min, 30min, 1hour
	Threshold    float64       `mapstructure:"threshold"`     // anomaly threshold in standard deviations
	Window       int           `mapstructure:"window"`        // rolling half-width in points; 0 is automatic
	Alignment    string        `mapstructure:"alignment"`     // centered or trailing
	HourStart    int           `mapstructure:"hour_start"`    // default hour filter lower bound
	HourEnd      int           `mapstructure:"hour_end"`      // default hour filter upper bound
	MaxDays      int           `mapstructure:"max_days"`      // digest: most recent days kept
	MaxDrops     int           `mapstructure:"max_drops"`     // digest: largest drops kept
	MaxAnomalies int           `mapstructure:"max_anomalies"` // digest: strongest anomalies kept
	DropSpan     time.Duration `mapstructure:"drop_span"`     // digest: drop look-back span
	DropPct      float64       `mapstructure:"drop_pct"`      // digest: minimum drop in percent
}

// CacheConfig represents the view cache configuration
type CacheConfig struct {
	Type       string `mapstructure:"type"`        // memory (default), redis, none
	MaxEntries int    `mapstructure:"max_entries"` // memory: bound on cached views
	URL        string `mapstructure:"url"`         // redis: redis://localhost:6379
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	Prefix     string `mapstructure:"prefix"` // redis: key prefix; keys live until a reload purges them
}

// QueueConfig represents the reload event bus configuration
type QueueConfig struct {
	Type     string `mapstructure:"type"`     // Queue type: memory (default), nats, redis, kafka, none
	URL      string `mapstructure:"url"`      // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Subject  string `mapstructure:"subject"`  // Subject reload events are published on
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`     // Redis database number (default: 0)
	RedisStream string `mapstructure:"redis_stream"` // Redis stream prefix (default: "availmon")

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"` // Kafka broker addresses
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled   bool     `mapstructure:"enabled"`    // Enable/disable API key authentication
	APIKeys   []string `mapstructure:"api_keys"`   // Keys accepted on /v1
	AdminKeys []string `mapstructure:"admin_keys"` // Keys accepted on /admin; empty falls back to api_keys
}

// AdminKeySet returns the keys accepted on admin routes
func (a AuthConfig) AdminKeySet() []string {
	if len(a.AdminKeys) > 0 {
		return a.AdminKeys
	}
	return a.APIKeys
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Dataset.Validate(); err != nil {
		return fmt.Errorf("dataset config: %w", err)
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// Validate validates dataset configuration
func (c *DatasetConfig) Validate() error {
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	switch c.DuplicatePolicy {
	case "", "last_write_wins", "keep_first":
	default:
		return fmt.Errorf("duplicate_policy must be 'last_write_wins' or 'keep_first'")
	}

	if c.ReloadInterval < 0 {
		return fmt.Errorf("reload_interval cannot be negative")
	}

	return nil
}

// Validate validates engine defaults
func (c *EngineConfig) Validate() error {
	if c.Threshold <= 0 {
		return fmt.Errorf("threshold must be positive")
	}
	if c.Window < 0 {
		return fmt.Errorf("window cannot be negative")
	}
	if c.HourStart < 0 || c.HourEnd > 23 || c.HourStart > c.HourEnd {
		return fmt.Errorf("invalid hour range %d-%d", c.HourStart, c.HourEnd)
	}
	if c.MaxDays < 0 || c.MaxDrops < 0 || c.MaxAnomalies < 0 {
		return fmt.Errorf("digest limits cannot be negative")
	}
	if c.DropSpan < 0 || c.DropPct < 0 || c.DropPct > 100 {
		return fmt.Errorf("invalid drop detection settings")
	}
	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch utils.CacheType(c.Type) {
	case "", utils.CacheTypeMemory, utils.CacheTypeNone:
	case utils.CacheTypeRedis:
		if c.URL == "" {
			return fmt.Errorf("url is required for the redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s (supported: memory, redis, none)", c.Type)
	}

	if c.MaxEntries < 0 {
		return fmt.Errorf("max_entries cannot be negative")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch utils.QueueType(c.Type) {
	case "", utils.QueueTypeMemory, utils.QueueTypeNone:
	case utils.QueueTypeNATS, utils.QueueTypeRedis:
		if c.URL == "" {
			return fmt.Errorf("url is required for queue type %s", c.Type)
		}
	case utils.QueueTypeKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka_brokers is required for queue type kafka")
		}
	default:
		return fmt.Errorf("unsupported queue type: %s (supported: memory, nats, redis, kafka, none)", c.Type)
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
