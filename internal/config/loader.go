package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sarenasr/Rappi-Dashboard/internal/utils"
)

// EnvPrefix prefixes every environment override, e.g. AVAILMON_DATASET_PATH
const EnvPrefix = "AVAILMON"

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/availmon")
	}

	setDefaults(v)

	// dataset.path is read from AVAILMON_DATASET_PATH
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults mirrors DefaultConfig so that a partial file or bare
// environment still yields a complete configuration
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("dataset.path", d.Dataset.Path)
	v.SetDefault("dataset.timezone", d.Dataset.Timezone)
	v.SetDefault("dataset.duplicate_policy", d.Dataset.DuplicatePolicy)
	v.SetDefault("dataset.reload_interval", d.Dataset.ReloadInterval)

	v.SetDefault("engine.granularity", d.Engine.Granularity)
	v.SetDefault("engine.threshold", d.Engine.Threshold)
	v.SetDefault("engine.window", d.Engine.Window)
	v.SetDefault("engine.alignment", d.Engine.Alignment)
	v.SetDefault("engine.hour_start", d.Engine.HourStart)
	v.SetDefault("engine.hour_end", d.Engine.HourEnd)
	v.SetDefault("engine.max_days", d.Engine.MaxDays)
	v.SetDefault("engine.max_drops", d.Engine.MaxDrops)
	v.SetDefault("engine.max_anomalies", d.Engine.MaxAnomalies)
	v.SetDefault("engine.drop_span", d.Engine.DropSpan)
	v.SetDefault("engine.drop_pct", d.Engine.DropPct)

	v.SetDefault("cache.type", d.Cache.Type)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.prefix", d.Cache.Prefix)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.subject", d.Queue.Subject)
	v.SetDefault("queue.redis_stream", d.Queue.RedisStream)

	v.SetDefault("auth.enabled", d.Auth.Enabled)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			HTTPPort:     8050,
			ReadTimeout:  utils.DefaultRequestTimeout,
			WriteTimeout: utils.DefaultRequestTimeout,
			CORSOrigins:  "*",
		},
		Dataset: DatasetConfig{
			Path:            "data/Base_Unificada.csv",
			Timezone:        "America/Bogota",
			DuplicatePolicy: "last_write_wins",
		},
		Engine: EngineConfig{
			Granularity:  "5min",
			Threshold:    2.5,
			Window:       0,
			Alignment:    "centered",
			HourStart:    0,
			HourEnd:      23,
			MaxDays:      14,
			MaxDrops:     20,
			MaxAnomalies: 10,
			DropSpan:     10 * time.Minute,
			DropPct:      10,
		},
		Cache: CacheConfig{
			Type:       string(utils.CacheTypeMemory),
			MaxEntries: utils.DefaultCacheEntries,
			Prefix:     "availmon",
		},
		Queue: QueueConfig{
			Type:        string(utils.QueueTypeMemory),
			Subject:     utils.ReloadSubject,
			RedisStream: "availmon",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
