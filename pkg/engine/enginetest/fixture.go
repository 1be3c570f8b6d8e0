// Package enginetest builds SQLite fixtures for tests.
package enginetest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/JayJamieson/sqlite-api/pkg/engine"
)

// UsersOrders is the two-table schema most tests start from.
var UsersOrders = []string{
	`CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)`,
	`CREATE TABLE orders (id INTEGER PRIMARY KEY, user_id INTEGER)`,
	`INSERT INTO users (id, name) VALUES (1, 'ada'), (2, 'grace')`,
	`INSERT INTO orders (id, user_id) VALUES (10, 1), (11, 2), (12, 2)`,
}

// Database creates a SQLite file from stmts and returns its raw bytes.
func Database(t testing.TB, stmts ...string) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fixture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)

	for _, stmt := range stmts {
		_, err := db.ExecContext(context.Background(), stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// Engine returns an engine using the pure Go driver and a per-test work dir.
func Engine(t testing.TB) *engine.Engine {
	t.Helper()

	e, err := engine.New(engine.Options{Driver: "sqlite", WorkDir: t.TempDir()})
	require.NoError(t, err)
	return e
}

// Handle loads stmts into a live handle that is closed with the test.
func Handle(t testing.TB, stmts ...string) engine.Handle {
	t.Helper()

	h, err := Engine(t).Load(context.Background(), Database(t, stmts...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}
