package export

import (
	"bytes"
	"encoding/json"

	"github.com/JayJamieson/sqlite-api/pkg/models"
)

// Record is a row object whose keys keep column order when encoded.
type Record struct {
	Keys   []string
	Values []any
}

// Records builds one Record per row. With onlySelected, columns whose
// Selected flag is false are left out entirely.
func Records(t *models.Table, onlySelected bool) []Record {
	keys := Keys(t.Columns, onlySelected)

	records := make([]Record, len(t.Rows))
	for i, row := range t.Rows {
		values := make([]any, len(keys))
		for j, key := range keys {
			values[j] = row[key]
		}
		records[i] = Record{Keys: keys, Values: values}
	}
	return records
}

// Keys returns the distinct column names in descriptor order.
func Keys(columns []models.Column, onlySelected bool) []string {
	keys := make([]string, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if onlySelected && !col.Selected {
			continue
		}
		if seen[col.Name] {
			continue
		}
		seen[col.Name] = true
		keys = append(keys, col.Name)
	}
	return keys
}

func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.Keys))
	for i, k := range r.Keys {
		m[k] = r.Values[i]
	}
	return m
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := encode(k, "")
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := encode(r.Values[i], "")
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encode marshals v without HTML escaping, indenting when indent is set.
func encode(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
