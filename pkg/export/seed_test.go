package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JayJamieson/sqlite-api/pkg/models"
)

func usersTable() *models.Table {
	return &models.Table{
		Name: "Users",
		Columns: []models.Column{
			{Name: "id", Type: "INTEGER", Selected: true},
			{Name: "name", Type: "TEXT", Selected: true},
		},
		Rows: []models.Row{
			{"id": int64(1), "name": "ada <&>"},
			{"id": int64(2), "name": nil},
		},
	}
}

func TestTableSeed(t *testing.T) {
	payload, err := TableSeed(usersTable())
	require.NoError(t, err)

	want := `await prisma.users.createMany({
  data: [
  {
    "id": 1,
    "name": "ada <&>"
  },
  {
    "id": 2,
    "name": null
  }
],
});`
	assert.Equal(t, want, string(payload.Data))
	assert.Equal(t, "users-seed.ts", payload.Filename)
	assert.Equal(t, ContentTypeText, payload.ContentType)
}

func TestTableSeedKeyOrderFollowsColumns(t *testing.T) {
	table := &models.Table{
		Name: "t",
		Columns: []models.Column{
			{Name: "zeta", Selected: true},
			{Name: "alpha", Selected: true},
		},
		Rows: []models.Row{{"zeta": "z", "alpha": "a"}},
	}

	payload, err := TableSeed(table)
	require.NoError(t, err)

	text := string(payload.Data)
	assert.Less(t, strings.Index(text, `"zeta"`), strings.Index(text, `"alpha"`))
}

func TestTableSeedEmptyTable(t *testing.T) {
	payload, err := TableSeed(&models.Table{Name: "Empty", Columns: []models.Column{{Name: "id", Selected: true}}})
	require.NoError(t, err)
	assert.Equal(t, "await prisma.empty.createMany({\n  data: [],\n});", string(payload.Data))
}

// seedData pulls the JSON array back out of every createMany block.
func seedData(t *testing.T, text string) [][]map[string]any {
	t.Helper()

	var out [][]map[string]any
	for _, block := range strings.Split(text, "\n\n") {
		start := strings.Index(block, "data: ") + len("data: ")
		end := strings.LastIndex(block, ",\n});")
		require.True(t, start > 0 && end > start, block)

		var rows []map[string]any
		require.NoError(t, json.Unmarshal([]byte(block[start:end]), &rows))
		out = append(out, rows)
	}
	return out
}

func TestSelectedColumnFiltering(t *testing.T) {
	users := usersTable()
	users.Columns[1].Selected = false

	orders := &models.Table{
		Name: "orders",
		Columns: []models.Column{
			{Name: "id", Selected: false},
			{Name: "user_id", Selected: true},
		},
		Rows: []models.Row{{"id": int64(10), "user_id": int64(1)}},
	}

	t.Run("table seed drops unselected columns", func(t *testing.T) {
		payload, err := TableSeed(users)
		require.NoError(t, err)

		blocks := seedData(t, string(payload.Data))
		require.Len(t, blocks, 1)
		for _, row := range blocks[0] {
			assert.Equal(t, []string{"id"}, mapKeys(row))
		}
	})

	t.Run("full seed keeps every column", func(t *testing.T) {
		payload, err := FullSeed([]*models.Table{users, orders})
		require.NoError(t, err)
		assert.Equal(t, FullSeedFilename, payload.Filename)

		text := string(payload.Data)
		assert.True(t, strings.HasPrefix(text, "await prisma.users.createMany"))
		assert.Contains(t, text, "});\n\nawait prisma.orders.createMany")

		blocks := seedData(t, text)
		require.Len(t, blocks, 2)
		assert.ElementsMatch(t, []string{"id", "name"}, mapKeys(blocks[0][0]))
		assert.ElementsMatch(t, []string{"id", "user_id"}, mapKeys(blocks[1][0]))
	})
}

func TestRecordsDeduplicatesKeys(t *testing.T) {
	table := &models.Table{
		Name: "Query Result",
		Columns: []models.Column{
			{Name: "id", Selected: true},
			{Name: "id", Selected: true},
		},
		Rows: []models.Row{{"id": int64(2)}},
	}

	records := Records(table, true)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"id"}, records[0].Keys)
	assert.Equal(t, map[string]any{"id": int64(2)}, records[0].Map())
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}
