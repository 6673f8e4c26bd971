package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PluginStore is a plugin.Storage backed by the plugin_kv table.
// All methods are safe for concurrent use.
type PluginStore struct {
	db *pgxpool.Pool
}

// NewPluginStore creates a PluginStore backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with migrations applied.
func NewPluginStore(db *pgxpool.Pool) *PluginStore {
	return &PluginStore{db: db}
}

// Get returns the value stored under (pluginID, key).
//
// Postcondition: ok is false and err nil when no row exists.
func (s *PluginStore) Get(ctx context.Context, pluginID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value FROM plugin_kv WHERE plugin_id = $1 AND key = $2`,
		pluginID, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading plugin %s key %q: %w", pluginID, key, err)
	}
	return value, true, nil
}

// Set upserts value under (pluginID, key).
func (s *PluginStore) Set(ctx context.Context, pluginID, key, value string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO plugin_kv (plugin_id, key, value)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (plugin_id, key)
		 DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		pluginID, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing plugin %s key %q: %w", pluginID, key, err)
	}
	return nil
}

// Delete removes (pluginID, key). Deleting a missing key is not an error.
func (s *PluginStore) Delete(ctx context.Context, pluginID, key string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM plugin_kv WHERE plugin_id = $1 AND key = $2`,
		pluginID, key,
	); err != nil {
		return fmt.Errorf("deleting plugin %s key %q: %w", pluginID, key, err)
	}
	return nil
}

// Keys lists pluginID's keys in ascending order.
func (s *PluginStore) Keys(ctx context.Context, pluginID string) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key FROM plugin_kv WHERE plugin_id = $1 ORDER BY key`,
		pluginID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing plugin %s keys: %w", pluginID, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning plugin %s keys: %w", pluginID, err)
	}
	return keys, nil
}
