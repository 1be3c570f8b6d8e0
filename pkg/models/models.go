package models

import (
	"github.com/oapi-codegen/runtime/types"
)

// QueryResultTable is reserved for the output of the most recent ad-hoc query.
const QueryResultTable = "Query Result"

// UnknownType is reported for columns whose declared type is not available.
const UnknownType = "unknown"

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Selected bool   `json:"selected"`
}

// Row maps column name to a scalar value: string, int64, float64, []byte or nil.
type Row map[string]any

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColumnNames returns column names in descriptor order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// WithColumns returns a shallow copy of t carrying its own column slice.
// Rows are shared; they are never mutated after materialization.
func (t *Table) WithColumns(columns []Column) *Table {
	return &Table{
		Name:    t.Name,
		Columns: columns,
		Rows:    t.Rows,
	}
}

// ColumnInfo is one row of PRAGMA table_info.
type ColumnInfo struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	DefaultVal any
	PK         bool
}

type ErrorResponse struct {
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
	Message   string `json:"message"`
}

type TableSummary struct {
	Name     string   `json:"name"`
	Columns  []Column `json:"columns"`
	RowCount int      `json:"row_count"`
}

type ImportResponse struct {
	OK       bool           `json:"ok"`
	ID       types.UUID     `json:"id"`
	Filename string         `json:"filename"`
	Endpoint string         `json:"endpoint"`
	Tables   []TableSummary `json:"tables"`
}

type TablesResponse struct {
	OK      bool           `json:"ok"`
	Current *string        `json:"current"`
	Tables  []TableSummary `json:"tables"`
}

type DataResponseBase struct {
	OK      bool     `json:"ok"`
	QueryMS float64  `json:"query_ms"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Total   int      `json:"total,omitempty"`
}

// DataResponse carries rows in either the objects or the array shape.
type DataResponse struct {
	DataResponseBase
	Rows []any `json:"rows"`
}

type QueryRequest struct {
	SQL string `json:"sql"`
}

type QueryResponse struct {
	OK      bool           `json:"ok"`
	Kind    string         `json:"kind"`
	QueryMS float64        `json:"query_ms"`
	Current *string        `json:"current"`
	Tables  []TableSummary `json:"tables"`
	Result  *DataResponse  `json:"result,omitempty"`
}

type SelectRequest struct {
	Name string `json:"name"`
}

type ColumnRequest struct {
	Selected *bool `json:"selected"`
}

type SpreadsheetImportResponse struct {
	OK       bool             `json:"ok"`
	Inserted bool             `json:"inserted"`
	Rows     int              `json:"rows"`
	Message  string           `json:"message"`
	Data     []map[string]any `json:"data"`
}
