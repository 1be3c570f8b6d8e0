package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/JayJamieson/sqlite-api/pkg/models"
)

const maxSheetNameLen = 31

// Spreadsheet writes the selected columns of t to a single-sheet workbook
// named after the table.
func Spreadsheet(t *models.Table) (Payload, error) {
	records := Records(t, true)

	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(t.Name)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return Payload{}, fmt.Errorf("failed to name sheet: %w", err)
	}

	var header []any
	for _, key := range Keys(t.Columns, true) {
		header = append(header, key)
	}

	if len(header) > 0 {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return Payload{}, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return Payload{}, err
		}

		values := make([]any, len(rec.Values))
		for j, v := range rec.Values {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			values[j] = v
		}

		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return Payload{}, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Payload{}, fmt.Errorf("failed to write workbook: %w", err)
	}

	return Payload{
		Filename:    t.Name + ".xlsx",
		ContentType: ContentTypeSpreadsheet,
		Data:        buf.Bytes(),
	}, nil
}

// ReadSpreadsheet parses the first sheet of a workbook into row objects. The
// first row is the header; empty cells are left out of a record and rows
// without any value are skipped.
func ReadSpreadsheet(r io.Reader) ([]Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	records := []Record{}
	if len(rows) == 0 {
		return records, nil
	}

	header := rows[0]
	for _, row := range rows[1:] {
		var rec Record
		for i, key := range header {
			if key == "" || i >= len(row) || row[i] == "" {
				continue
			}
			rec.Keys = append(rec.Keys, key)
			rec.Values = append(rec.Values, parseCell(row[i]))
		}

		if len(rec.Keys) > 0 {
			records = append(records, rec)
		}
	}

	return records, nil
}

// SheetName makes name acceptable as a worksheet name.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")

	if utf8.RuneCountInString(name) > maxSheetNameLen {
		name = string([]rune(name)[:maxSheetNameLen])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

func parseCell(s string) any {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
