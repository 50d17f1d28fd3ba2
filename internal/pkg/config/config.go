package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Watcher   WatcherConfig   `mapstructure:"watcher"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// UpstreamConfig carries the transit-provider API credentials and base
// URLs. Keys are required for the api and watcher services.
type UpstreamConfig struct {
	ResRobotKey      string `mapstructure:"resrobot_key"`
	ResRobotBaseURL  string `mapstructure:"resrobot_base_url"`
	TrafiklabKey     string `mapstructure:"trafiklab_key"`
	TrafiklabBaseURL string `mapstructure:"trafiklab_base_url"`
}

// WatcherConfig tunes the commute watcher loop.
type WatcherConfig struct {
	PollIntervalSec  int `mapstructure:"poll_interval_sec"`
	LookaheadMinutes int `mapstructure:"lookahead_minutes"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pendla")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "pendla")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("upstream.resrobot_base_url", "https://api.resrobot.se/v2.1")
	v.SetDefault("upstream.trafiklab_base_url", "https://realtime-api.trafiklab.se/v1")
	v.SetDefault("watcher.poll_interval_sec", 60)
	v.SetDefault("watcher.lookahead_minutes", 30)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "pendla-claims")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: PENDLA_DATABASE_HOST → database.host
	v.SetEnvPrefix("PENDLA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
// Upstream API keys are validated by the services that need them, not here,
// so the migrator and compensator can run without them.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Watcher.PollIntervalSec <= 0 {
		errs = append(errs, "watcher.poll_interval_sec must be positive")
	}
	if c.Watcher.LookaheadMinutes <= 0 {
		errs = append(errs, "watcher.lookahead_minutes must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// RequireUpstreamKeys errors unless both provider keys are configured.
func (c *Config) RequireUpstreamKeys() error {
	if c.Upstream.ResRobotKey == "" {
		return fmt.Errorf("upstream.resrobot_key is required (PENDLA_UPSTREAM_RESROBOT_KEY)")
	}
	if c.Upstream.TrafiklabKey == "" {
		return fmt.Errorf("upstream.trafiklab_key is required (PENDLA_UPSTREAM_TRAFIKLAB_KEY)")
	}
	return nil
}
