package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JayJamieson/sqlite-api/pkg/export"
	"github.com/JayJamieson/sqlite-api/pkg/models"
	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func renderTables(w io.Writer, state *workspace.State) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"table", "columns", "rows"})

	for _, tbl := range state.Tables() {
		t.AppendRow(table.Row{tbl.Name, len(tbl.Columns), len(tbl.Rows)})
	}

	t.Render()
}

func renderRows(w io.Writer, tbl *models.Table, format string) error {
	records := export.Records(tbl, true)

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case formatTable, "":
	default:
		return fmt.Errorf("unknown format %q, expected table or json", format)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	for _, key := range records[0].Keys {
		header = append(header, key)
	}
	t.AppendHeader(header)

	for _, rec := range records {
		row := make(table.Row, len(rec.Values))
		for i, v := range rec.Values {
			row[i] = formatValue(v)
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(records))
	return nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
