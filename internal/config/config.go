// Package config loads the service configuration from a TOML file and
// AUCTION_ prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"drop-auction/utils"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// EnvPrefix prefixes every environment override, e.g. AUCTION_SERVER_ADDR
const EnvPrefix = "AUCTION"

// Config is the global service configuration
type Config struct {
	Server  ServerConf       `toml:"server" mapstructure:"server" json:"server"`
	Store   StoreConf        `toml:"store" mapstructure:"store" json:"store"`
	Auction AuctionConf      `toml:"auction" mapstructure:"auction" json:"auction"`
	Mail    MailConf         `toml:"mail" mapstructure:"mail" json:"mail"`
	Log     utils.LogOptions `toml:"log" mapstructure:"log" json:"log"`
	Metrics MetricsConf      `toml:"metrics" mapstructure:"metrics" json:"metrics"`
	Seed    SeedConf         `toml:"seed" mapstructure:"seed" json:"seed"`
}

// ServerConf configures the HTTP listener
type ServerConf struct {
	Addr            string        `toml:"addr" mapstructure:"addr" json:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
	AllowOrigins    []string      `toml:"allow_origins" mapstructure:"allow_origins" json:"allow_origins"`
}

// StoreConf selects the storage backend
type StoreConf struct {
	Driver string `toml:"driver" mapstructure:"driver" json:"driver"`
	Path   string `toml:"path" mapstructure:"path" json:"path"`
	DSN    string `toml:"dsn" mapstructure:"dsn" json:"-"`
}

// AuctionConf holds the countdown rules
type AuctionConf struct {
	ExtensionWindow time.Duration `toml:"extension_window" mapstructure:"extension_window" json:"extension_window"`
	FarPoll         time.Duration `toml:"far_poll" mapstructure:"far_poll" json:"far_poll"`
	NearPoll        time.Duration `toml:"near_poll" mapstructure:"near_poll" json:"near_poll"`
	NearThreshold   time.Duration `toml:"near_threshold" mapstructure:"near_threshold" json:"near_threshold"`
	ResolveAttempts int           `toml:"resolve_attempts" mapstructure:"resolve_attempts" json:"resolve_attempts"`
}

// MailConf configures outbound messages
type MailConf struct {
	From    string `toml:"from" mapstructure:"from" json:"from"`
	SiteURL string `toml:"site_url" mapstructure:"site_url" json:"site_url"`
}

// MetricsConf configures the Prometheus endpoint
type MetricsConf struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled" json:"enabled"`
	Path    string `toml:"path" mapstructure:"path" json:"path"`
}

// SeedConf controls the demo catalogue loaded into an empty store
type SeedConf struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled" json:"enabled"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.path", "data/auction.db")
	v.SetDefault("store.dsn", "")

	v.SetDefault("auction.extension_window", "30s")
	v.SetDefault("auction.far_poll", "2s")
	v.SetDefault("auction.near_poll", "1s")
	v.SetDefault("auction.near_threshold", "10s")
	v.SetDefault("auction.resolve_attempts", 5)

	v.SetDefault("mail.from", "Dropmaster <dropmaster@4th.host>")
	v.SetDefault("mail.site_url", "http://dropex.4th.host")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("seed.enabled", true)
}

// BindEnv makes AUCTION_SECTION_KEY override section.key
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v. The file, if any,
// must already have been read.
func Load(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// UnmarshalConfig loads and validates the TOML file at configFilePath
func UnmarshalConfig(configFilePath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	v.SetConfigFile(configFilePath)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configFilePath, err)
	}
	return Load(v)
}

// Validate rejects configurations the service cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("config: store.path is required for the %s driver", DriverSQLite)
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("config: unknown store.driver %q", c.Store.Driver)
	}

	a := c.Auction
	if a.ExtensionWindow <= 0 || a.FarPoll <= 0 || a.NearPoll <= 0 {
		return fmt.Errorf("config: auction durations must be positive")
	}
	if a.NearThreshold < 0 {
		return fmt.Errorf("config: auction.near_threshold must not be negative")
	}
	if a.ResolveAttempts < 1 {
		return fmt.Errorf("config: auction.resolve_attempts must be at least 1")
	}
	return nil
}
