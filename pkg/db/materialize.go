package db

import (
	"fmt"
	"slices"

	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/models"
)

const (
	ShapeObjects = "objects"
	ShapeArray   = "array"
)

type transformFunc func(columns []string, row models.Row) any

var transformFuncs = map[string]transformFunc{
	ShapeArray:   transformArray,
	ShapeObjects: transformObject,
}

// Materialize converts a raw result set into a Table. When annotations is
// nil the columns come from rs and are typed "unknown"; otherwise the
// annotations are used as the column descriptors, which keeps the column list
// populated for tables without rows. rs may be nil.
func Materialize(name string, rs *engine.ResultSet, annotations []models.Column) *models.Table {
	columns := slices.Clone(annotations)
	if annotations == nil {
		columns = Columns(rs)
	}

	return &models.Table{
		Name:    name,
		Columns: columns,
		Rows:    Rows(rs),
	}
}

// Columns derives selected, untyped descriptors from a result set.
func Columns(rs *engine.ResultSet) []models.Column {
	if rs == nil {
		return []models.Column{}
	}

	columns := make([]models.Column, len(rs.Columns))
	for i, name := range rs.Columns {
		columns[i] = models.Column{
			Name:     name,
			Type:     models.UnknownType,
			Selected: true,
		}
	}
	return columns
}

// Rows zips each value array with the result set's column names. A later
// duplicate column name overwrites the earlier value.
func Rows(rs *engine.ResultSet) []models.Row {
	if rs == nil {
		return []models.Row{}
	}

	rows := make([]models.Row, len(rs.Values))
	for i, values := range rs.Values {
		row := make(models.Row, len(rs.Columns))
		for j, col := range rs.Columns {
			if j < len(values) {
				row[col] = values[j]
			}
		}
		rows[i] = row
	}
	return rows
}

// Transform renders a window of rows in the requested shape. limit <= 0
// means no limit.
func Transform(shape string, columns []string, rows []models.Row, offset, limit int) ([]any, error) {
	fn, ok := transformFuncs[shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", shape)
	}

	if offset < 0 {
		offset = 0
	}
	if offset > len(rows) {
		offset = len(rows)
	}

	end := len(rows)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}

	out := make([]any, 0, end-offset)
	for _, row := range rows[offset:end] {
		out = append(out, fn(columns, row))
	}
	return out, nil
}

func transformArray(columns []string, row models.Row) any {
	arrRow := make([]any, len(columns))

	for i, col := range columns {
		arrRow[i] = row[col]
	}
	return arrRow
}

func transformObject(columns []string, row models.Row) any {
	objRow := make(map[string]any, len(columns))

	for _, col := range columns {
		objRow[col] = row[col]
	}
	return objRow
}
