// Package testutil starts throwaway infrastructure for integration tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/storage/postgres"
)

// PluginDB is a disposable PostgreSQL database for plugin storage tests.
type PluginDB struct {
	Pool   *postgres.Pool
	Config config.DatabaseConfig
}

// StartPluginDB runs postgres:16-alpine, connects a Pool to it, and, when
// migrated is true, applies the embedded plugin storage migrations.
//
// Precondition: Docker is reachable.
// Postcondition: The container and pool are released by t.Cleanup.
func StartPluginDB(t *testing.T, migrated bool) *PluginDB {
	t.Helper()
	ctx := context.Background()
	start := time.Now()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dmengine_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("starting postgres: %v [%s]", err, time.Since(start))
	}
	t.Cleanup(func() { _ = ctr.Terminate(context.Background()) })

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("postgres host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("postgres port: %v", err)
	}
	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "test",
		Password:        "test",
		Name:            "dmengine_test",
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
	}

	if migrated {
		m, err := postgres.NewMigrator(cfg.DSN())
		if err != nil {
			t.Fatalf("creating migrator: %v", err)
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			t.Fatalf("migrating: %v", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	t.Cleanup(pool.Close)
	t.Logf("plugin db ready (migrated=%v) [%s]", migrated, time.Since(start))
	return &PluginDB{Pool: pool, Config: cfg}
}
