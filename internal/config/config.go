// Package config loads and validates tracker configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Store   StoreConfig   `mapstructure:"store"`
	DB      DBConfig      `mapstructure:"db"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Alert   AlertConfig   `mapstructure:"alert"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// FetchConfig bounds the single fetch attempt made per ingestion.
type FetchConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	RespectRobots  bool   `mapstructure:"respect_robots"`
}

// StoreConfig selects the article store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

// DBConfig controls access to the Postgres article table.
type DBConfig struct {
	DSN                 string `mapstructure:"dsn"`
	Table               string `mapstructure:"table"`
	MaxConns            int32  `mapstructure:"max_conns"`
	MinConns            int32  `mapstructure:"min_conns"`
	ConnLifetimeMinutes int    `mapstructure:"conn_lifetime_minutes"`
}

// SinkConfig toggles raw-markup snapshots.
type SinkConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// AlertConfig governs the watermark poller.
type AlertConfig struct {
	IntervalSeconds int    `mapstructure:"interval_seconds"`
	StatePath       string `mapstructure:"state_path"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("fetch.timeout_seconds", 30)
	v.SetDefault("fetch.user_agent", "article-tracker/1.0")
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("store.backend", StorePostgres)
	// Registered empty so TRACKER_DB_DSN is visible to Unmarshal;
	// AutomaticEnv only surfaces env values for known keys.
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "articles")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.conn_lifetime_minutes", 30)
	v.SetDefault("sink.enabled", false)
	v.SetDefault("sink.dir", "data/html")
	v.SetDefault("alert.interval_seconds", 300)
	v.SetDefault("alert.state_path", "alert_state.txt")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	switch c.Store.Backend {
	case StorePostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required when store.backend is %q", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store.backend must be %q or %q", StorePostgres, StoreMemory)
	}
	if c.Sink.Enabled && c.Sink.Dir == "" {
		return fmt.Errorf("sink.dir must be set when sink is enabled")
	}
	if c.Alert.IntervalSeconds <= 0 {
		return fmt.Errorf("alert.interval_seconds must be > 0")
	}
	return nil
}

// FetchTimeout converts the fetch timeout config into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// AlertInterval converts the poll interval config into a duration.
func (c Config) AlertInterval() time.Duration {
	return time.Duration(c.Alert.IntervalSeconds) * time.Second
}

// ConnLifetime converts the pool lifetime config into a duration.
func (c DBConfig) ConnLifetime() time.Duration {
	return time.Duration(c.ConnLifetimeMinutes) * time.Minute
}
