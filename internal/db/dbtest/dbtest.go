// Package dbtest builds migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/koe-contest/internal/db"
)

// New creates an in-memory SQLite database and applies migrations.
func New(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.DriverSQLite, "file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(conn), "Failed to apply migrations")

	t.Cleanup(func() { conn.Close() })
	return conn
}

// NewFile creates a migrated SQLite database file in a temporary directory. Unlike New it allows
// several open connections, so concurrent writers contend the way they do in production.
func NewFile(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.DriverSQLite, filepath.Join(t.TempDir(), "koe.db"))
	require.NoError(t, err, "Failed to open file DB")

	require.NoError(t, db.RunMigrations(conn), "Failed to apply migrations")

	t.Cleanup(func() { conn.Close() })
	return conn
}
