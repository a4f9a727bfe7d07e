package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/blog-cms/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunMigrations_CreatesTables(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.RunMigrations())

	var tables []string
	err := db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('category', 'article') ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"article", "category"}, tables)

	// second run is a no-op
	require.NoError(t, db.RunMigrations())
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.RunMigrations())

	var enabled int
	require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, enabled)

	_, err := db.Exec(`INSERT INTO article (category_id, title, introduction, text, pub_date) VALUES (42, 't', 'i', 'x', CURRENT_TIMESTAMP)`)
	assert.Error(t, err, "insert with a dangling category must fail")
}

func TestMigrateDown(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.MigrateDown())

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'article'"))
	assert.Zero(t, count)
}

func TestFileDatabaseCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blog.db")
	db, err := New(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: path}, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.DirExists(t, filepath.Dir(path))
	assert.Equal(t, config.DriverSQLite, db.Driver())
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t,
		"blog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		sqliteDSN("blog.db"))
	assert.Equal(t,
		"file:blog.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		sqliteDSN("file:blog.db?mode=rwc"))
}
