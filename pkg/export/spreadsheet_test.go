package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestSpreadsheet(t *testing.T) {
	users := usersTable()
	users.Columns[1].Selected = false

	payload, err := Spreadsheet(users)
	require.NoError(t, err)
	assert.Equal(t, "Users.xlsx", payload.Filename)
	assert.Equal(t, ContentTypeSpreadsheet, payload.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(payload.Data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Users"}, f.GetSheetList())

	rows, err := f.GetRows("Users")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"id"}, {"1"}, {"2"}}, rows)
}

func TestReadSpreadsheet(t *testing.T) {
	payload, err := Spreadsheet(usersTable())
	require.NoError(t, err)

	records, err := ReadSpreadsheet(bytes.NewReader(payload.Data))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, map[string]any{"id": int64(1), "name": "ada <&>"}, records[0].Map())
	assert.Equal(t, map[string]any{"id": int64(2)}, records[1].Map(), "empty cells are left out")
}

func TestReadSpreadsheetRejectsGarbage(t *testing.T) {
	_, err := ReadSpreadsheet(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "users", want: "users"},
		{in: "Query Result", want: "Query Result"},
		{in: "a/b:c[d]", want: "a_b_c_d_"},
		{in: "a_table_name_that_is_far_too_long_for_excel", want: "a_table_name_that_is_far_too_lo"},
		{in: "", want: "Sheet1"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SheetName(tt.in))
		})
	}
}
