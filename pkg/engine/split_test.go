package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement without terminator",
			script: "SELECT * FROM users",
			want:   []string{"SELECT * FROM users"},
		},
		{
			name:   "multiple statements",
			script: "DELETE FROM orders; SELECT 1;\n\nSELECT 2;",
			want:   []string{"DELETE FROM orders", "SELECT 1", "SELECT 2"},
		},
		{
			name:   "semicolons inside literals and identifiers",
			script: `INSERT INTO "a;b" VALUES ('x;y', 'it''s;'); SELECT [c;d], ` + "`e;f`" + ` FROM t`,
			want: []string{
				`INSERT INTO "a;b" VALUES ('x;y', 'it''s;')`,
				"SELECT [c;d], `e;f` FROM t",
			},
		},
		{
			name:   "comments only are dropped",
			script: "-- nothing here;\n/* still; nothing */ ;  ;",
			want:   nil,
		},
		{
			name:   "comment containing semicolon inside statement",
			script: "SELECT 1 -- one; two\n; SELECT /* ; */ 2",
			want:   []string{"SELECT 1 -- one; two", "SELECT /* ; */ 2"},
		},
		{
			name: "trigger body stays whole",
			script: `CREATE TRIGGER t AFTER INSERT ON users BEGIN
  UPDATE users SET name = CASE WHEN name IS NULL THEN 'x' ELSE name END;
  DELETE FROM orders;
END; SELECT 1`,
			want: []string{
				`CREATE TRIGGER t AFTER INSERT ON users BEGIN
  UPDATE users SET name = CASE WHEN name IS NULL THEN 'x' ELSE name END;
  DELETE FROM orders;
END`,
				"SELECT 1",
			},
		},
		{
			name:   "transaction keywords are ordinary statements",
			script: "BEGIN; INSERT INTO t VALUES (1); END;",
			want:   []string{"BEGIN", "INSERT INTO t VALUES (1)", "END"},
		},
		{
			name:   "blank script",
			script: "   \n\t ",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.script))
		})
	}
}
