// Package workspace owns the loaded database and the materialized view of it.
//
// Every operation holds the workspace lock for its whole duration, so imports,
// queries and exports run one at a time and always see a consistent State.
// An operation that fails leaves the published State untouched.
package workspace

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/JayJamieson/sqlite-api/pkg/db"
	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/export"
	"github.com/JayJamieson/sqlite-api/pkg/metrics"
	"github.com/JayJamieson/sqlite-api/pkg/models"
	"github.com/JayJamieson/sqlite-api/pkg/utils"
)

const (
	OutcomeResult  = "result"
	OutcomeRefresh = "refresh"

	FormatSQLite      = "sqlite"
	FormatSpreadsheet = "xlsx"
	FormatSeed        = "seed"
	FormatFullSeed    = "full-seed"
)

var (
	databaseExtensions    = []string{".sqlite", ".db"}
	spreadsheetExtensions = []string{".xlsx", ".xls"}
)

type Options struct {
	Logger  *log.Logger
	Metrics *metrics.Metrics
	Client  *http.Client
}

type Workspace struct {
	mu       sync.Mutex
	loader   engine.Loader
	initErr  error
	handle   engine.Handle
	state    *State
	logger   *log.Logger
	metrics  *metrics.Metrics
	client   *http.Client
}

// Outcome describes what a query did to the workspace.
type Outcome struct {
	Kind    string
	State   *State
	Result  *models.Table
	Elapsed time.Duration
}

// New returns a workspace without an engine. Call Init before importing.
func New(opts Options) *Workspace {
	logger := opts.Logger
	if logger == nil {
		logger = log.New("workspace")
	}

	client := opts.Client
	if client == nil {
		client = utils.HTTPClient
	}

	return &Workspace{
		state:   NewState(nil),
		logger:  logger,
		metrics: opts.Metrics,
		client:  client,
	}
}

// Init attaches the engine produced by open. A failure is remembered and
// reported by every later operation; the workspace stays usable otherwise.
func (w *Workspace) Init(open func() (engine.Loader, error)) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	loader, err := open()
	if err != nil {
		w.initErr = &InitError{Cause: err}
		w.logger.Errorf("Error initializing engine: %v", err)
		return w.initErr
	}

	w.loader = loader
	w.initErr = nil
	return nil
}

func (w *Workspace) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loader != nil
}

// State returns the currently published state.
func (w *Workspace) State() *State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Database returns the loaded file name and handle id, if a database is loaded.
func (w *Workspace) Database() (filename string, id string, ok bool) {
	return w.State().Database()
}

func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.handle == nil {
		return nil
	}
	err := w.handle.Close()
	w.handle = nil
	return err
}

// Import replaces the loaded database with data and rebuilds every table.
// The previous database stays live until the new one is fully materialized.
func (w *Workspace) Import(ctx context.Context, filename string, data []byte) (*State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	state, err := w.importLocked(ctx, filename, data)
	w.metrics.Import(err)
	if err != nil {
		w.logger.Errorf("Error loading database %s: %v", filename, err)
		return nil, err
	}

	w.logger.Infof("Loaded %s with %d tables", filename, state.Len())
	return state, nil
}

// ImportFromURL downloads a database file and imports it.
func (w *Workspace) ImportFromURL(ctx context.Context, rawURL string) (*State, error) {
	if err := w.ready(); err != nil {
		w.metrics.Import(err)
		return nil, err
	}

	filename := utils.FilenameFromURL(rawURL, "downloaded.sqlite")

	body, err := utils.DownloadFile(ctx, w.client, rawURL)
	if err != nil {
		loadErr := &LoadError{Filename: filename, Cause: err}
		w.metrics.Import(loadErr)
		w.logger.Errorf("Error downloading %s: %v", rawURL, err)
		return nil, loadErr
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		loadErr := &LoadError{Filename: filename, Cause: fmt.Errorf("failed to read download: %w", err)}
		w.metrics.Import(loadErr)
		w.logger.Errorf("Error downloading %s: %v", rawURL, err)
		return nil, loadErr
	}

	return w.Import(ctx, filename, data)
}

func (w *Workspace) importLocked(ctx context.Context, filename string, data []byte) (*State, error) {
	if err := w.readyLocked(); err != nil {
		return nil, err
	}

	if !hasExtension(filename, databaseExtensions) {
		return nil, &LoadError{
			Filename: filename,
			Cause:    fmt.Errorf("unsupported file type %q, expected one of %s", filepath.Ext(filename), strings.Join(databaseExtensions, ", ")),
		}
	}

	h, err := w.loader.Load(ctx, data)
	if err != nil {
		return nil, &LoadError{Filename: filename, Cause: err}
	}

	next, err := w.refresh(ctx, h)
	if err != nil {
		if closeErr := h.Close(); closeErr != nil {
			w.logger.Warnf("Error closing rejected database: %v", closeErr)
		}
		return nil, &LoadError{Filename: filename, Cause: err}
	}

	next.filename = filename
	next.id = h.ID()

	previous := w.handle
	w.handle = h
	w.publish(next)

	if previous != nil {
		if err := previous.Close(); err != nil {
			w.logger.Warnf("Error closing previous database: %v", err)
		}
	}

	return next, nil
}

// Execute runs query against the loaded database. When the first result set
// has rows it becomes the "Query Result" table and is selected. Otherwise the
// statement is treated as schema-changing and every table is rebuilt; an
// empty SELECT takes that path too.
func (w *Workspace) Execute(ctx context.Context, query string) (*Outcome, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	outcome, err := w.executeLocked(ctx, query)
	if err != nil {
		w.metrics.Query("error")
		w.logger.Errorf("Error executing query: %v", err)
		return nil, err
	}

	w.metrics.Query(outcome.Kind)
	return outcome, nil
}

func (w *Workspace) executeLocked(ctx context.Context, query string) (*Outcome, error) {
	if err := w.readyLocked(); err != nil {
		return nil, err
	}
	if w.handle == nil {
		return nil, ErrNoDatabase
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	start := time.Now()

	sets, err := w.handle.Execute(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Cause: err}
	}

	// Only the first result set is displayed; later ones are dropped.
	if len(sets) > 0 && len(sets[0].Values) > 0 {
		result := db.Materialize(models.QueryResultTable, &sets[0], nil)

		next, _ := w.state.withTable(result).withCurrent(models.QueryResultTable)
		w.publish(next)

		return &Outcome{
			Kind:    OutcomeResult,
			State:   next,
			Result:  result,
			Elapsed: time.Since(start),
		}, nil
	}

	next, err := w.refresh(ctx, w.handle)
	if err != nil {
		return nil, &QueryError{Query: query, Cause: err}
	}

	// The synthetic result is not part of the database, so a rebuild of the
	// database tables carries it over, unless the database now has a real
	// table of that name. The selection is always cleared.
	if _, exists := next.Table(models.QueryResultTable); !exists {
		if previous, ok := w.state.Table(models.QueryResultTable); ok {
			next = next.withTable(previous)
		}
	}
	next.filename, next.id = w.state.filename, w.state.id
	w.publish(next)

	return &Outcome{
		Kind:    OutcomeRefresh,
		State:   next,
		Elapsed: time.Since(start),
	}, nil
}

// Select makes name the current table.
func (w *Workspace) Select(name string) (*State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	next, ok := w.state.withCurrent(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}

	w.publish(next)
	return next, nil
}

// SetColumnSelected flips the visibility/export flag of one column. The flag
// lasts until the table is rebuilt.
func (w *Workspace) SetColumnSelected(tableName, column string, selected bool) (*models.Table, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.lookupLocked(tableName)
	if err != nil {
		return nil, err
	}

	columns := make([]models.Column, len(t.Columns))
	found := false
	for i, c := range t.Columns {
		if c.Name == column {
			c.Selected = selected
			found = true
		}
		columns[i] = c
	}

	if !found {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, t.Name, column)
	}

	updated := t.WithColumns(columns)
	next := w.state.clone()
	next.tables[updated.Name] = updated
	w.publish(next)

	return updated, nil
}

// ExportDatabase serializes the live database.
func (w *Workspace) ExportDatabase(ctx context.Context) (export.Payload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := w.exportDatabaseLocked(ctx)
	return w.exported(FormatSQLite, payload, err)
}

func (w *Workspace) exportDatabaseLocked(ctx context.Context) (export.Payload, error) {
	if w.handle == nil {
		return export.Payload{}, ErrNoDatabase
	}

	data, err := w.handle.Serialize(ctx)
	if err != nil {
		return export.Payload{}, &ExportError{Format: FormatSQLite, Cause: err}
	}
	return export.Database(data), nil
}

// ExportSpreadsheet writes the selected columns of a table (the current one
// when tableName is empty) to a workbook.
func (w *Workspace) ExportSpreadsheet(tableName string) (export.Payload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := w.exportTableLocked(tableName, FormatSpreadsheet, export.Spreadsheet)
	return w.exported(FormatSpreadsheet, payload, err)
}

// ExportTableSeed renders the selected columns of a table (the current one
// when tableName is empty) as a seed script.
func (w *Workspace) ExportTableSeed(tableName string) (export.Payload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	payload, err := w.exportTableLocked(tableName, FormatSeed, export.TableSeed)
	return w.exported(FormatSeed, payload, err)
}

// ExportFullSeed renders every table with every column, whatever the column
// visibility flags say.
func (w *Workspace) ExportFullSeed() (export.Payload, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.handle == nil {
		return w.exported(FormatFullSeed, export.Payload{}, ErrNoDatabase)
	}

	payload, err := export.FullSeed(w.state.Tables())
	if err != nil {
		err = &ExportError{Format: FormatFullSeed, Cause: err}
	}
	return w.exported(FormatFullSeed, payload, err)
}

func (w *Workspace) exportTableLocked(tableName, format string, fn func(*models.Table) (export.Payload, error)) (export.Payload, error) {
	t, err := w.lookupLocked(tableName)
	if err != nil {
		return export.Payload{}, err
	}

	payload, err := fn(t)
	if err != nil {
		return export.Payload{}, &ExportError{Format: format, Cause: err}
	}
	return payload, nil
}

func (w *Workspace) exported(format string, payload export.Payload, err error) (export.Payload, error) {
	w.metrics.Export(format, err)
	if err != nil {
		w.logger.Errorf("Error exporting %s: %v", format, err)
		return export.Payload{}, err
	}
	return payload, nil
}

// ImportSpreadsheet parses the first sheet of a workbook and logs the rows.
// It is a stub: nothing is inserted into the database.
func (w *Workspace) ImportSpreadsheet(tableName, filename string, r io.Reader) ([]export.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.lookupLocked(tableName)
	if err != nil {
		return nil, err
	}

	if !hasExtension(filename, spreadsheetExtensions) {
		err := &LoadError{
			Filename: filename,
			Cause:    fmt.Errorf("unsupported file type %q, expected one of %s", filepath.Ext(filename), strings.Join(spreadsheetExtensions, ", ")),
		}
		w.logger.Errorf("Error importing spreadsheet: %v", err)
		return nil, err
	}

	records, err := export.ReadSpreadsheet(r)
	if err != nil {
		loadErr := &LoadError{Filename: filename, Cause: err}
		w.logger.Errorf("Error importing spreadsheet: %v", loadErr)
		return nil, loadErr
	}

	data := make([]map[string]any, len(records))
	for i, rec := range records {
		data[i] = rec.Map()
	}
	w.logger.Infoj(log.JSON{
		"message": "imported spreadsheet rows (not inserted)",
		"table":   t.Name,
		"file":    filename,
		"rows":    len(records),
		"data":    data,
	})

	return records, nil
}

func (w *Workspace) ready() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.readyLocked()
}

func (w *Workspace) readyLocked() error {
	if w.loader != nil {
		return nil
	}
	if w.initErr != nil {
		return w.initErr
	}
	return ErrEngineNotReady
}

func (w *Workspace) lookupLocked(name string) (*models.Table, error) {
	if name == "" {
		t, ok := w.state.CurrentTable()
		if !ok {
			return nil, ErrNoTableSelected
		}
		return t, nil
	}

	t, ok := w.state.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	return t, nil
}

// refresh rebuilds all tables from h into a fresh State with no selection.
func (w *Workspace) refresh(ctx context.Context, h engine.Handle) (*State, error) {
	start := time.Now()
	tables, err := db.Refresh(ctx, h)
	w.metrics.Refresh(time.Since(start))
	if err != nil {
		return nil, err
	}
	return NewState(tables), nil
}

func (w *Workspace) publish(next *State) {
	w.state = next
	w.metrics.Tables(next.Len())
}

func hasExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}
