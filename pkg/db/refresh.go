package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/models"
)

// Executor is the part of an engine handle the refresher needs.
type Executor interface {
	Execute(ctx context.Context, query string) ([]engine.ResultSet, error)
}

// catalogQuery lists user tables in whatever order the engine returns them.
// Internal sqlite_* tables are not user tables.
const catalogQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite\_%' ESCAPE '\'`

// Refresh rebuilds every user table from exec. Any failure aborts the whole
// refresh; no partial table list is returned.
func Refresh(ctx context.Context, exec Executor) ([]*models.Table, error) {
	names, err := TableNames(ctx, exec)
	if err != nil {
		return nil, err
	}

	tables := make([]*models.Table, 0, len(names))
	for _, name := range names {
		table, err := LoadTable(ctx, exec, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, nil
}

func TableNames(ctx context.Context, exec Executor) ([]string, error) {
	sets, err := exec.Execute(ctx, catalogQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	names := []string{}
	if len(sets) == 0 {
		return names, nil
	}

	for _, values := range sets[0].Values {
		if len(values) == 0 {
			continue
		}
		names = append(names, asString(values[0]))
	}
	return names, nil
}

// LoadTable materializes one table: descriptors from PRAGMA table_info, rows
// from SELECT * in default engine order.
func LoadTable(ctx context.Context, exec Executor, name string) (*models.Table, error) {
	columns, err := TableColumns(ctx, exec, name)
	if err != nil {
		return nil, err
	}

	sets, err := exec.Execute(ctx, "SELECT * FROM "+QuoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", name, err)
	}

	var rs *engine.ResultSet
	if len(sets) > 0 {
		rs = &sets[0]
	}

	return Materialize(name, rs, columns), nil
}

func TableColumns(ctx context.Context, exec Executor, name string) ([]models.Column, error) {
	sets, err := exec.Execute(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to get table info for %s: %w", name, err)
	}

	columns := []models.Column{}
	if len(sets) == 0 {
		return columns, nil
	}

	for _, values := range sets[0].Values {
		info, err := columnInfo(values)
		if err != nil {
			return nil, fmt.Errorf("failed to scan column info for %s: %w", name, err)
		}
		columns = append(columns, models.Column{
			Name:     info.Name,
			Type:     info.Type,
			Selected: true,
		})
	}
	return columns, nil
}

// QuoteIdent double-quotes a SQLite identifier.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnInfo(values []any) (models.ColumnInfo, error) {
	if len(values) < 6 {
		return models.ColumnInfo{}, fmt.Errorf("expected 6 columns, got %d", len(values))
	}

	return models.ColumnInfo{
		CID:        int(asInt64(values[0])),
		Name:       asString(values[1]),
		Type:       asString(values[2]),
		NotNull:    asInt64(values[3]) != 0,
		DefaultVal: values[4],
		PK:         asInt64(values[5]) != 0,
	}, nil
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asInt64(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	case []byte:
		var n int64
		fmt.Sscanf(string(val), "%d", &n)
		return n
	case string:
		var n int64
		fmt.Sscanf(val, "%d", &n)
		return n
	default:
		return 0
	}
}
