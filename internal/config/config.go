// Package config provides Viper-based configuration loading for the DM engine.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"
)

// ServerConfig holds network listener settings.
type ServerConfig struct {
	// GRPCHost is the bind address for the directive gRPC service.
	GRPCHost string `mapstructure:"grpc_host"`
	// GRPCPort is the TCP port for the directive gRPC service.
	GRPCPort int `mapstructure:"grpc_port"`
	// MetricsPort serves /metrics; 0 disables the listener.
	MetricsPort int `mapstructure:"metrics_port"`
}

// Addr returns the "host:port" gRPC address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.GRPCPort)
}

// MetricsAddr returns the "host:port" metrics listen address.
func (s ServerConfig) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", s.GRPCHost, s.MetricsPort)
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the postgres:// URL for d with user and password escaped.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// EngineConfig tunes directive execution.
type EngineConfig struct {
	MaxBatchSize    int  `mapstructure:"max_batch_size"`
	RequireApproval bool `mapstructure:"require_approval"`
	// OutboxCapacity bounds the broadcast queue; pushes beyond it are dropped.
	OutboxCapacity int `mapstructure:"outbox_capacity"`
}

// PluginsConfig controls plugin discovery and sandboxing.
type PluginsConfig struct {
	// Dir holds one sub-directory per plugin; empty disables plugins.
	Dir              string `mapstructure:"dir"`
	InstructionLimit int    `mapstructure:"instruction_limit"`
	// APIVersion is the host plugin API version manifests are checked against.
	APIVersion string `mapstructure:"api_version"`
}

// PeerConfig selects the peer messaging transport.
type PeerConfig struct {
	// Transport is "none" or "redis".
	Transport     string `mapstructure:"transport"`
	RedisAddr     string `mapstructure:"redis_addr"`
	ChannelPrefix string `mapstructure:"channel_prefix"`
}

// StorageConfig selects where plugin key/value data lives.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend  string         `mapstructure:"backend"`
	Database DatabaseConfig `mapstructure:"database"`
}

// CatalogConfig points at optional content files.
type CatalogConfig struct {
	MonstersFile string `mapstructure:"monsters_file"`
	// ConditionsDir holds extra condition YAML layered over the built-in set.
	ConditionsDir string `mapstructure:"conditions_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Plugins PluginsConfig `mapstructure:"plugins"`
	Peer    PeerConfig    `mapstructure:"peer"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateServer(c.Server),
		validateLogging(c.Logging),
		validateEngine(c.Engine),
		validatePlugins(c.Plugins),
		validatePeer(c.Peer),
		validateStorage(c.Storage),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func joined(errs []string) error {
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.GRPCHost == "" {
		errs = append(errs, "server.grpc_host must not be empty")
	}
	if !validPort(s.GRPCPort) {
		errs = append(errs, fmt.Sprintf("server.grpc_port must be 1-65535, got %d", s.GRPCPort))
	}
	if s.MetricsPort != 0 && !validPort(s.MetricsPort) {
		errs = append(errs, fmt.Sprintf("server.metrics_port must be 0 or 1-65535, got %d", s.MetricsPort))
	}
	if s.MetricsPort != 0 && s.MetricsPort == s.GRPCPort {
		errs = append(errs, "server.metrics_port must differ from server.grpc_port")
	}
	return joined(errs)
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if !validPort(d.Port) {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	return joined(errs)
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.MaxBatchSize < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_batch_size must be >= 1, got %d", e.MaxBatchSize))
	}
	if e.OutboxCapacity < 1 {
		errs = append(errs, fmt.Sprintf("engine.outbox_capacity must be >= 1, got %d", e.OutboxCapacity))
	}
	return joined(errs)
}

func validatePlugins(p PluginsConfig) error {
	var errs []string
	if p.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("plugins.instruction_limit must be >= 0, got %d", p.InstructionLimit))
	}
	if _, err := semver.NewVersion(p.APIVersion); err != nil {
		errs = append(errs, fmt.Sprintf("plugins.api_version must be a semantic version, got %q", p.APIVersion))
	}
	return joined(errs)
}

func validatePeer(p PeerConfig) error {
	switch p.Transport {
	case "none":
		return nil
	case "redis":
		var errs []string
		if p.RedisAddr == "" {
			errs = append(errs, "peer.redis_addr must not be empty when peer.transport is redis")
		}
		if p.ChannelPrefix == "" {
			errs = append(errs, "peer.channel_prefix must not be empty when peer.transport is redis")
		}
		return joined(errs)
	default:
		return fmt.Errorf("peer.transport must be one of [none, redis], got %q", p.Transport)
	}
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case "memory":
		return nil
	case "postgres":
		if err := validateDatabase(s.Database); err != nil {
			return fmt.Errorf("storage.%w", err)
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be one of [memory, postgres], got %q", s.Backend)
	}
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DM_ prefix
	v.SetEnvPrefix("DM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_host", "127.0.0.1")
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.metrics_port", 9090)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("engine.max_batch_size", 50)
	v.SetDefault("engine.require_approval", false)
	v.SetDefault("engine.outbox_capacity", 256)

	v.SetDefault("plugins.dir", "")
	v.SetDefault("plugins.instruction_limit", 1_000_000)
	v.SetDefault("plugins.api_version", "1.0.0")

	v.SetDefault("peer.transport", "none")
	v.SetDefault("peer.redis_addr", "localhost:6379")
	v.SetDefault("peer.channel_prefix", "dm")

	v.SetDefault("storage.backend", "memory")
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.user", "dm")
	v.SetDefault("storage.database.password", "dm")
	v.SetDefault("storage.database.name", "dmengine")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("storage.database.max_conns", 10)
	v.SetDefault("storage.database.min_conns", 2)
	v.SetDefault("storage.database.max_conn_lifetime", "1h")

	v.SetDefault("catalog.monsters_file", "")
	v.SetDefault("catalog.conditions_dir", "")
}
