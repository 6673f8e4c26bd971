// Package postgres persists plugin key/value data in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/config"
)

// connectTimeout bounds the initial ping in NewPool.
const connectTimeout = 10 * time.Second

// ErrSchemaOutdated is returned by CheckSchema when migrations are missing.
var ErrSchemaOutdated = errors.New("plugin storage schema is not migrated")

// Pool owns the pgx pool that plugin storage runs on.
type Pool struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewPool connects to cfg's database and pings it.
//
// Precondition: cfg passed config validation.
// Postcondition: Returns a reachable Pool or a non-nil error; on error nothing is left open.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	logger.Info("plugin storage connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", cfg.MaxConns),
	)
	return &Pool{db: db, logger: logger}, nil
}

// CheckSchema verifies the database carries every embedded migration.
//
// Postcondition: Returns nil, or an error wrapping ErrSchemaOutdated when the
// schema is absent, behind, or dirty.
func (p *Pool) CheckSchema(ctx context.Context) error {
	want, err := LatestVersion()
	if err != nil {
		return err
	}
	var (
		version int64
		dirty   bool
	)
	err = p.db.QueryRow(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable:
		return fmt.Errorf("%w: no schema_migrations table (run cmd/migrate)", ErrSchemaOutdated)
	case err != nil:
		return fmt.Errorf("reading schema version: %w", err)
	case dirty:
		return fmt.Errorf("%w: version %d is dirty", ErrSchemaOutdated, version)
	case uint(version) < want:
		return fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, version, want)
	}
	p.logger.Debug("plugin storage schema current", zap.Int64("version", version))
	return nil
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.db.Close()
}

// DB returns the underlying pgxpool.Pool for use by stores.
func (p *Pool) DB() *pgxpool.Pool {
	return p.db
}
