package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JayJamieson/sqlite-api/pkg/engine/enginetest"
)

func writeDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.sqlite")
	require.NoError(t, os.WriteFile(path, enginetest.Database(t, enginetest.UsersOrders...), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--work-dir", t.TempDir(), "--log-level", "off"))

	err := cmd.Execute()
	return out.String(), err
}

func TestTablesCommand(t *testing.T) {
	out, err := run(t, "tables", writeDatabase(t))
	require.NoError(t, err)

	assert.Contains(t, out, "users")
	assert.Contains(t, out, "orders")
}

func TestQueryCommandResult(t *testing.T) {
	out, err := run(t, "query", writeDatabase(t), "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)

	assert.Contains(t, out, "ada")
	assert.Contains(t, out, "grace")
	assert.Contains(t, out, "(2 rows)")
}

func TestQueryCommandJSON(t *testing.T) {
	out, err := run(t, "query", writeDatabase(t), "SELECT id, name FROM users ORDER BY id", "--format", "json")
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	assert.Equal(t, []map[string]any{
		{"id": float64(1), "name": "ada"},
		{"id": float64(2), "name": "grace"},
	}, rows)
}

func TestQueryCommandSave(t *testing.T) {
	src := writeDatabase(t)
	saved := filepath.Join(t.TempDir(), "out.sqlite")

	out, err := run(t, "query", src, "CREATE TABLE notes (body TEXT)", "--save", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "notes")

	out, err = run(t, "tables", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "notes")

	out, err = run(t, "tables", src)
	require.NoError(t, err)
	assert.NotContains(t, out, "notes")
}

func TestQueryCommandError(t *testing.T) {
	_, err := run(t, "query", writeDatabase(t), "SELECT * FROM missing")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	src := writeDatabase(t)
	dir := t.TempDir()

	tests := []struct {
		name   string
		args   []string
		file   string
		prefix string
	}{
		{name: "seed", args: []string{"--format", "seed", "--table", "users"}, file: "users-seed.ts", prefix: "await prisma.users.createMany"},
		{name: "full seed", args: []string{"--format", "full-seed"}, file: "full.ts", prefix: "await prisma."},
		{name: "workbook", args: []string{"--format", "xlsx", "--table", "orders"}, file: "orders.xlsx", prefix: "PK"},
		{name: "database", args: []string{"--format", "sqlite"}, file: "copy.sqlite", prefix: "SQLite format 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			args := append([]string{"export", src, "--out", path}, tt.args...)

			_, err := run(t, args...)
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, []byte(tt.prefix)), string(data[:min(len(data), 40)]))
		})
	}
}

func TestExportCommandErrors(t *testing.T) {
	src := writeDatabase(t)

	_, err := run(t, "export", src, "--format", "seed")
	assert.ErrorContains(t, err, "--table")

	_, err = run(t, "export", src, "--format", "csv")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "export", src, "--format", "seed", "--table", "missing", "--out", "-")
	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "tables", writeDatabase(t), "--driver", "postgres")
	assert.ErrorContains(t, err, "unsupported driver")
}
