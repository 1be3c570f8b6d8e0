// Package engine adapts an embedded SQLite engine behind three operations:
// load raw database bytes into a live handle, execute SQL against the handle,
// and serialize the handle back to bytes.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const DefaultDriver = "sqlite"

// Drivers lists the database/sql driver names a handle can be opened with.
var Drivers = []string{"sqlite", "sqlite3", "libsql"}

// ResultSet is one statement's output: column names plus the row values
// positionally aligned to them.
type ResultSet struct {
	Columns []string
	Values  [][]any
}

// Handle is a live database.
type Handle interface {
	ID() string
	Execute(ctx context.Context, query string) ([]ResultSet, error)
	Serialize(ctx context.Context) ([]byte, error)
	Close() error
}

// Loader turns raw database bytes into a Handle.
type Loader interface {
	Load(ctx context.Context, data []byte) (Handle, error)
}

type Options struct {
	Driver  string
	WorkDir string
}

// Engine opens every loaded database as a private working copy under WorkDir.
type Engine struct {
	driver  string
	workDir string
}

var _ Loader = (*Engine)(nil)

func New(opts Options) (*Engine, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DefaultDriver
	}

	if !slices.Contains(Drivers, driver) {
		return nil, &Error{Op: OpInit, Err: fmt.Errorf("unsupported driver %q", driver)}
	}

	if !slices.Contains(sql.Drivers(), driver) {
		return nil, &Error{Op: OpInit, Err: fmt.Errorf("driver %q is not registered", driver)}
	}

	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "./data"
	}

	abs, err := filepath.Abs(workDir)
	if err != nil {
		return nil, &Error{Op: OpInit, Err: fmt.Errorf("failed to resolve work directory: %w", err)}
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, &Error{Op: OpInit, Err: fmt.Errorf("failed to create work directory: %w", err)}
	}

	return &Engine{
		driver:  driver,
		workDir: abs,
	}, nil
}

func (e *Engine) Driver() string {
	return e.driver
}

func (e *Engine) WorkDir() string {
	return e.workDir
}
