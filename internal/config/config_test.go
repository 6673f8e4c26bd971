package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{
			GRPCHost:    "127.0.0.1",
			GRPCPort:    50051,
			MetricsPort: 9090,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Engine: EngineConfig{
			MaxBatchSize:   50,
			OutboxCapacity: 256,
		},
		Plugins: PluginsConfig{
			InstructionLimit: 1000,
			APIVersion:       "1.0.0",
		},
		Peer: PeerConfig{Transport: "none"},
		Storage: StorageConfig{
			Backend: "memory",
			Database: DatabaseConfig{
				Host:            "localhost",
				Port:            5432,
				User:            "dm",
				Password:        "dm",
				Name:            "dmengine",
				SSLMode:         "disable",
				MaxConns:        10,
				MinConns:        2,
				MaxConnLifetime: time.Hour,
			},
		},
	}
}

func TestValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDatabaseDSN(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "postgres://dm:dm@localhost:5432/dmengine?sslmode=disable", cfg.Storage.Database.DSN())
}

func TestDatabaseDSN_EscapesCredentials(t *testing.T) {
	d := validConfig().Storage.Database
	d.Password = "p@ss/w:rd"
	u, err := url.Parse(d.DSN())
	require.NoError(t, err)
	pw, _ := u.User.Password()
	assert.Equal(t, "p@ss/w:rd", pw)
	assert.Equal(t, "localhost:5432", u.Host)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestServerAddr(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "127.0.0.1:50051", cfg.Server.Addr())
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.MetricsAddr())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Engine.MaxBatchSize)
	assert.False(t, cfg.Engine.RequireApproval)
	assert.Equal(t, 256, cfg.Engine.OutboxCapacity)
	assert.Equal(t, "1.0.0", cfg.Plugins.APIVersion)
	assert.Equal(t, "none", cfg.Peer.Transport)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, time.Hour, cfg.Storage.Database.MaxConnLifetime)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	err := os.WriteFile(path, []byte(`
server:
  grpc_host: 0.0.0.0
  grpc_port: 6000
  metrics_port: 0
logging:
  level: debug
  format: console
engine:
  max_batch_size: 20
  require_approval: true
plugins:
  dir: /srv/plugins
  api_version: 1.2.0
peer:
  transport: redis
  redis_addr: redis:6379
  channel_prefix: table-1
storage:
  backend: postgres
  database:
    host: db
    user: testuser
    name: testdb
    max_conn_lifetime: 30m
catalog:
  monsters_file: monsters.yaml
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.GRPCPort)
	assert.Zero(t, cfg.Server.MetricsPort)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 20, cfg.Engine.MaxBatchSize)
	assert.True(t, cfg.Engine.RequireApproval)
	assert.Equal(t, "/srv/plugins", cfg.Plugins.Dir)
	assert.Equal(t, "redis", cfg.Peer.Transport)
	assert.Equal(t, "testuser", cfg.Storage.Database.User)
	assert.Equal(t, 5432, cfg.Storage.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Storage.Database.MaxConnLifetime)
	assert.Equal(t, "monsters.yaml", cfg.Catalog.MonstersFile)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DM_ENGINE_MAX_BATCH_SIZE", "7")
	t.Setenv("DM_LOGGING_LEVEL", "warn")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Engine.MaxBatchSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadInvalidPath(t *testing.T) {
	_, err := Load("/nonexistent/path.yaml")
	assert.Error(t, err)
}

func TestValidateAggregatesViolations(t *testing.T) {
	cfg := validConfig()
	cfg.Server.GRPCPort = 0
	cfg.Logging.Level = "trace"
	cfg.Engine.MaxBatchSize = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.grpc_port")
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "engine.max_batch_size")
}

func TestValidateLogging(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateMetricsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.MetricsPort = 0
	assert.NoError(t, cfg.Validate())

	cfg.Server.MetricsPort = cfg.Server.GRPCPort
	assert.Error(t, cfg.Validate())
}

func TestValidatePluginAPIVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Plugins.APIVersion = "one"
	assert.ErrorContains(t, cfg.Validate(), "plugins.api_version")
}

func TestValidatePeer(t *testing.T) {
	cfg := validConfig()
	cfg.Peer = PeerConfig{Transport: "redis"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "peer.redis_addr")

	cfg.Peer = PeerConfig{Transport: "carrier-pigeon"}
	assert.Error(t, cfg.Validate())
}

func TestValidateStorageOnlyChecksDatabaseForPostgres(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Database.Port = 0
	assert.NoError(t, cfg.Validate())

	cfg.Storage.Backend = "postgres"
	assert.ErrorContains(t, cfg.Validate(), "storage.database.port")

	cfg.Storage.Backend = "sqlite"
	assert.Error(t, cfg.Validate())
}

// Property-based tests

func TestPropertyDatabasePortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(-1000, 100000).Draw(t, "port")
		cfg := validConfig()
		cfg.Storage.Backend = "postgres"
		cfg.Storage.Database.Port = port
		err := cfg.Validate()
		if validPort(port) != (err == nil) {
			t.Fatalf("port %d: validity %v, err %v", port, validPort(port), err)
		}
	})
}

func TestPropertyMinConnsNeverExceedsMax(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxConns := rapid.Int32Range(1, 100).Draw(t, "max_conns")
		minConns := rapid.Int32Range(0, maxConns+100).Draw(t, "min_conns")
		cfg := validConfig()
		cfg.Storage.Backend = "postgres"
		cfg.Storage.Database.MaxConns = maxConns
		cfg.Storage.Database.MinConns = minConns
		err := cfg.Validate()
		if (minConns <= maxConns) != (err == nil) {
			t.Fatalf("min_conns=%d max_conns=%d: err %v", minConns, maxConns, err)
		}
	})
}

func TestPropertyDSNContainsAllFields(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		host := rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "host")
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		user := rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "user")
		name := rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "name")

		dsn := DatabaseConfig{Host: host, Port: port, User: user, Name: name, SSLMode: "disable"}.DSN()
		assert.Contains(t, dsn, host)
		assert.Contains(t, dsn, user)
		assert.Contains(t, dsn, name)
		assert.Contains(t, dsn, "disable")
	})
}
