package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// SQLHandle is a Handle backed by a database/sql pool over a working copy.
type SQLHandle struct {
	id   string
	db   *sql.DB
	path string
}

var _ Handle = (*SQLHandle)(nil)

// NewHandle wraps an open pool. path is the working copy removed on Close;
// it may be empty when the pool does not own a file.
func NewHandle(db *sql.DB, path string) *SQLHandle {
	return &SQLHandle{
		id:   uuid.New().String(),
		db:   db,
		path: path,
	}
}

func (e *Engine) Load(ctx context.Context, data []byte) (Handle, error) {
	id := uuid.New().String()
	path := filepath.Join(e.workDir, fmt.Sprintf("%s.sqlite", id))

	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, &Error{Op: OpLoad, Err: fmt.Errorf("failed to write working copy: %w", err)}
	}

	conn, err := sql.Open(e.driver, "file:"+path)
	if err != nil {
		removeFile(path)
		return nil, &Error{Op: OpLoad, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	// One connection keeps transactions and temp objects on the same session.
	conn.SetMaxOpenConns(1)

	var count int
	if err := conn.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&count); err != nil {
		conn.Close()
		removeFile(path)
		return nil, &Error{Op: OpLoad, Err: fmt.Errorf("file is not a readable SQLite database: %w", err)}
	}

	return &SQLHandle{
		id:   id,
		db:   conn,
		path: path,
	}, nil
}

func (h *SQLHandle) ID() string {
	return h.id
}

// Execute runs every statement of query in order. Only statements that yield
// at least one row contribute a ResultSet.
func (h *SQLHandle) Execute(ctx context.Context, query string) ([]ResultSet, error) {
	var results []ResultSet

	for _, stmt := range Split(query) {
		rs, err := h.query(ctx, stmt)
		if err != nil {
			return nil, &Error{Op: OpExecute, Err: err}
		}

		if len(rs.Values) > 0 {
			results = append(results, rs)
		}
	}

	return results, nil
}

func (h *SQLHandle) query(ctx context.Context, stmt string) (ResultSet, error) {
	rows, err := h.db.QueryContext(ctx, stmt)
	if err != nil {
		return ResultSet{}, fmt.Errorf("failed to query data: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return ResultSet{}, fmt.Errorf("failed to get columns: %w", err)
	}

	rs := ResultSet{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))

		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return ResultSet{}, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, v := range values {
			if t, ok := v.(time.Time); ok {
				values[i] = t.Format(time.RFC3339Nano)
			}
		}

		rs.Values = append(rs.Values, values)
	}

	if err := rows.Err(); err != nil {
		return ResultSet{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return rs, nil
}

// Serialize snapshots the live database with VACUUM INTO and returns the
// snapshot's bytes.
func (h *SQLHandle) Serialize(ctx context.Context) ([]byte, error) {
	dir := os.TempDir()
	if h.path != "" {
		dir = filepath.Dir(h.path)
	}

	target := filepath.Join(dir, fmt.Sprintf("%s-export-%s.sqlite", h.id, uuid.New().String()))
	defer removeFile(target)

	if _, err := h.db.ExecContext(ctx, "VACUUM INTO "+quoteLiteral(target)); err != nil {
		return nil, &Error{Op: OpSerialize, Err: fmt.Errorf("failed to snapshot database: %w", err)}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, &Error{Op: OpSerialize, Err: fmt.Errorf("failed to read snapshot: %w", err)}
	}

	return data, nil
}

func (h *SQLHandle) Close() error {
	err := h.db.Close()
	if h.path != "" {
		removeFile(h.path)
	}
	return err
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Error removing %s: %v", path, err)
	}
}
