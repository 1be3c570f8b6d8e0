package workspace

import (
	"errors"
	"fmt"
)

var (
	ErrEngineNotReady  = errors.New("database engine is not initialized")
	ErrNoDatabase      = errors.New("no database loaded")
	ErrEmptyQuery      = errors.New("query is empty")
	ErrTableNotFound   = errors.New("table not found")
	ErrColumnNotFound  = errors.New("column not found")
	ErrNoTableSelected = errors.New("no table selected")
)

// InitError reports why the engine could not be initialized. It matches
// ErrEngineNotReady so callers can treat both the same way.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("engine initialization failed: %v", e.Cause)
}

func (e *InitError) Unwrap() error {
	return e.Cause
}

func (e *InitError) Is(target error) bool {
	return target == ErrEngineNotReady
}

// LoadError covers reading, parsing or opening an uploaded file.
type LoadError struct {
	Filename string
	Cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Filename, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

type QueryError struct {
	Query string
	Cause error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

type ExportError struct {
	Format string
	Cause  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export failed: %v", e.Format, e.Cause)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}
