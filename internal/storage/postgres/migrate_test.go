package postgres

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr, downErr, stepsErr, versionErr error
	version                              uint
	steps                                []int
	closed                               bool
}

func (f *fakeMigrator) Up() error   { return f.upErr }
func (f *fakeMigrator) Down() error { return f.downErr }
func (f *fakeMigrator) Steps(n int) error {
	f.steps = append(f.steps, n)
	return f.stepsErr
}
func (f *fakeMigrator) Version() (uint, bool, error) { return f.version, false, f.versionErr }
func (f *fakeMigrator) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://dm:dm@db:5432/dmengine?sslmode=disable", migrateURL("postgres://dm:dm@db:5432/dmengine?sslmode=disable"))
	assert.Equal(t, "pgx5://db/x", migrateURL("postgresql://db/x"))
	assert.Equal(t, "pgx5://db/x", migrateURL("pgx5://db/x"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

func TestMigratorTreatsNoChangeAsSuccess(t *testing.T) {
	f := &fakeMigrator{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange, stepsErr: migrate.ErrNoChange}
	m := &Migrator{m: f}
	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
	assert.NoError(t, m.Steps(-1))
	assert.Equal(t, []int{-1}, f.steps)
}

func TestMigratorWrapsFailures(t *testing.T) {
	boom := errors.New("connection refused")
	m := &Migrator{m: &fakeMigrator{upErr: boom, versionErr: boom}}
	err := m.Up()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "migrating up")

	_, _, err = m.Version()
	assert.ErrorIs(t, err, boom)
}

func TestMigratorVersionOfFreshDatabase(t *testing.T) {
	f := &fakeMigrator{versionErr: migrate.ErrNilVersion}
	m := &Migrator{m: f}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)
	require.NoError(t, m.Close())
	assert.True(t, f.closed)
}

func TestLatestVersionMatchesNewestMigration(t *testing.T) {
	v, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
}
