// Package testing holds helpers shared by package tests.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/syntaxis/db"
)

// CreateTestDB returns an empty, fully migrated in-memory lexicon.
// The connection is closed when the test ends.
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err, "open in-memory lexicon")
	// each pooled connection to :memory: would be its own database
	conn.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn, zaptest.NewLogger(t).Sugar()), "migrate test lexicon")
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// CreateTestDBFile is CreateTestDB backed by a file under t.TempDir, for
// tests that reopen the database or need more than one connection.
func CreateTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "lexicon.db")
	conn, err := db.OpenWithMigrations(path, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err, "open file lexicon")
	t.Cleanup(func() { _ = conn.Close() })

	return conn, path
}
