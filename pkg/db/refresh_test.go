package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/engine/enginetest"
	"github.com/JayJamieson/sqlite-api/pkg/models"
)

func tableByName(tables []*models.Table, name string) *models.Table {
	for _, t := range tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

func TestRefresh(t *testing.T) {
	h := enginetest.Handle(t, append(enginetest.UsersOrders,
		`CREATE TABLE "odd ""name""" (k TEXT)`,
		`CREATE TABLE counters (id INTEGER PRIMARY KEY AUTOINCREMENT, n INTEGER)`,
	)...)

	tables, err := Refresh(context.Background(), h)
	require.NoError(t, err)

	names := make([]string, len(tables))
	for i, table := range tables {
		names[i] = table.Name
	}
	assert.ElementsMatch(t, []string{"users", "orders", `odd "name"`, "counters"}, names)

	users := tableByName(tables, "users")
	require.NotNil(t, users)
	assert.Equal(t, []models.Column{
		{Name: "id", Type: "INTEGER", Selected: true},
		{Name: "name", Type: "TEXT", Selected: true},
	}, users.Columns)
	require.Len(t, users.Rows, 2)
	assert.Equal(t, models.Row{"id": int64(1), "name": "ada"}, users.Rows[0])

	odd := tableByName(tables, `odd "name"`)
	require.NotNil(t, odd)
	assert.Equal(t, []string{"k"}, odd.ColumnNames())
	assert.Empty(t, odd.Rows)
}

type failingExecutor struct {
	inner  Executor
	failOn string
}

func (f *failingExecutor) Execute(ctx context.Context, query string) ([]engine.ResultSet, error) {
	if strings.Contains(query, f.failOn) {
		return nil, &engine.Error{Op: engine.OpExecute, Err: errors.New("database is locked")}
	}
	return f.inner.Execute(ctx, query)
}

func TestRefreshAbortsOnFailure(t *testing.T) {
	h := enginetest.Handle(t, enginetest.UsersOrders...)

	tests := []struct {
		name   string
		failOn string
	}{
		{name: "catalog", failOn: "sqlite_master"},
		{name: "structure", failOn: "PRAGMA"},
		{name: "rows", failOn: `SELECT * FROM "orders"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := Refresh(context.Background(), &failingExecutor{inner: h, failOn: tt.failOn})
			require.Error(t, err)
			assert.Nil(t, tables)

			var engErr *engine.Error
			assert.ErrorAs(t, err, &engErr)
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"users"`, QuoteIdent("users"))
	assert.Equal(t, `"a""b"`, QuoteIdent(`a"b`))
}
