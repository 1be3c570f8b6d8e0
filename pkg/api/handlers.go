package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/JayJamieson/sqlite-api/pkg/db"
	"github.com/JayJamieson/sqlite-api/pkg/export"
	"github.com/JayJamieson/sqlite-api/pkg/models"
	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

var _ ServerInterface = (*Server)(nil)

// ImportDatabase implements ServerInterface.
func (h *Server) ImportDatabase(ctx echo.Context, params ImportDatabaseParams) error {
	reqCtx := ctx.Request().Context()

	var (
		state *workspace.State
		err   error
	)

	if params.Url != nil && *params.Url != "" {
		state, err = h.workspace.ImportFromURL(reqCtx, *params.Url)
	} else if params.Name != nil && *params.Name != "" {
		data, readErr := io.ReadAll(ctx.Request().Body)
		if readErr != nil {
			return createErrorResponse(ctx, http.StatusBadRequest, "Upload error", readErr.Error())
		}
		state, err = h.workspace.Import(reqCtx, *params.Name, data)
	} else {
		return createErrorResponse(ctx, http.StatusBadRequest, "Missing import parameters",
			"Either 'url' or 'name' parameter must be provided")
	}

	if err != nil {
		return errorResponse(ctx, err)
	}

	filename, id, _ := state.Database()
	handleID, err := uuid.Parse(id)
	if err != nil {
		return createErrorResponse(ctx, http.StatusInternalServerError, "Import error", err.Error())
	}

	endpoint := fmt.Sprintf("%s://%s/api/tables", ctx.Scheme(), ctx.Request().Host)

	return ctx.JSON(http.StatusOK, models.ImportResponse{
		OK:       true,
		ID:       handleID,
		Filename: filename,
		Endpoint: endpoint,
		Tables:   summaries(state),
	})
}

// ExportDatabase implements ServerInterface.
func (h *Server) ExportDatabase(ctx echo.Context) error {
	payload, err := h.workspace.ExportDatabase(ctx.Request().Context())
	if err != nil {
		return errorResponse(ctx, err)
	}
	return attachment(ctx, payload)
}

// ListTables implements ServerInterface.
func (h *Server) ListTables(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, tablesResponse(h.workspace.State()))
}

// GetTable implements ServerInterface.
func (h *Server) GetTable(ctx echo.Context, name string, params GetTableParams) error {
	start := time.Now()

	t, ok := h.workspace.State().Table(name)
	if !ok {
		return createErrorResponse(ctx, http.StatusNotFound, "Resource not found",
			fmt.Sprintf("%s: %s", workspace.ErrTableNotFound, name))
	}

	shape := db.ShapeObjects
	if params.Shape != nil && *params.Shape != "" {
		shape = *params.Shape
	}

	var limit, offset int
	if params.Size != nil {
		limit = *params.Size
	}
	if params.Offset != nil {
		offset = *params.Offset
	}

	rows, err := db.Transform(shape, export.Keys(t.Columns, true), t.Rows, offset, limit)
	if err != nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid shape", err.Error())
	}

	resp := dataResponse(t, rows)
	resp.QueryMS = elapsedMS(time.Since(start))

	return ctx.JSON(http.StatusOK, resp)
}

// SetColumn implements ServerInterface.
func (h *Server) SetColumn(ctx echo.Context, name string, column string) error {
	var req models.ColumnRequest
	if err := ctx.Bind(&req); err != nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid body", err.Error())
	}
	if req.Selected == nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid body", "'selected' is required")
	}

	t, err := h.workspace.SetColumnSelected(name, column, *req.Selected)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, summary(t))
}

// ExportSpreadsheet implements ServerInterface.
func (h *Server) ExportSpreadsheet(ctx echo.Context, name string) error {
	payload, err := h.workspace.ExportSpreadsheet(name)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return attachment(ctx, payload)
}

// ImportSpreadsheet implements ServerInterface.
func (h *Server) ImportSpreadsheet(ctx echo.Context, name string, params ImportSpreadsheetParams) error {
	data, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Upload error", err.Error())
	}

	records, err := h.workspace.ImportSpreadsheet(name, params.Name, bytes.NewReader(data))
	if err != nil {
		return errorResponse(ctx, err)
	}

	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		rows[i] = rec.Map()
	}

	return ctx.JSON(http.StatusOK, models.SpreadsheetImportResponse{
		OK:       true,
		Inserted: false,
		Rows:     len(records),
		Message:  "Spreadsheet parsed; importing rows into a table is not supported yet",
		Data:     rows,
	})
}

// ExportTableSeed implements ServerInterface.
func (h *Server) ExportTableSeed(ctx echo.Context, name string) error {
	payload, err := h.workspace.ExportTableSeed(name)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return attachment(ctx, payload)
}

// ExportFullSeed implements ServerInterface.
func (h *Server) ExportFullSeed(ctx echo.Context) error {
	payload, err := h.workspace.ExportFullSeed()
	if err != nil {
		return errorResponse(ctx, err)
	}
	return attachment(ctx, payload)
}

// SelectTable implements ServerInterface.
func (h *Server) SelectTable(ctx echo.Context) error {
	var req models.SelectRequest
	if err := ctx.Bind(&req); err != nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid body", err.Error())
	}
	if req.Name == "" {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid body", "'name' is required")
	}

	state, err := h.workspace.Select(req.Name)
	if err != nil {
		return errorResponse(ctx, err)
	}

	return ctx.JSON(http.StatusOK, tablesResponse(state))
}

// RunQuery implements ServerInterface.
func (h *Server) RunQuery(ctx echo.Context) error {
	var req models.QueryRequest
	if err := ctx.Bind(&req); err != nil {
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid body", err.Error())
	}

	outcome, err := h.workspace.Execute(ctx.Request().Context(), req.SQL)
	if err != nil {
		return errorResponse(ctx, err)
	}

	resp := models.QueryResponse{
		OK:      true,
		Kind:    outcome.Kind,
		QueryMS: elapsedMS(outcome.Elapsed),
		Current: current(outcome.State),
		Tables:  summaries(outcome.State),
	}

	if outcome.Result != nil {
		rows, err := db.Transform(db.ShapeObjects, export.Keys(outcome.Result.Columns, true), outcome.Result.Rows, 0, 0)
		if err != nil {
			return createErrorResponse(ctx, http.StatusInternalServerError, "Query error", err.Error())
		}
		result := dataResponse(outcome.Result, rows)
		result.QueryMS = resp.QueryMS
		resp.Result = &result
	}

	return ctx.JSON(http.StatusOK, resp)
}

func attachment(ctx echo.Context, payload export.Payload) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", payload.Filename))
	return ctx.Blob(http.StatusOK, payload.ContentType, payload.Data)
}

func dataResponse(t *models.Table, rows []any) models.DataResponse {
	return models.DataResponse{
		DataResponseBase: models.DataResponseBase{
			OK:      true,
			Name:    t.Name,
			Columns: t.Columns,
			Total:   len(t.Rows),
		},
		Rows: rows,
	}
}

func tablesResponse(state *workspace.State) models.TablesResponse {
	return models.TablesResponse{
		OK:      true,
		Current: current(state),
		Tables:  summaries(state),
	}
}

func summaries(state *workspace.State) []models.TableSummary {
	tables := state.Tables()
	out := make([]models.TableSummary, len(tables))
	for i, t := range tables {
		out[i] = summary(t)
	}
	return out
}

func summary(t *models.Table) models.TableSummary {
	return models.TableSummary{
		Name:     t.Name,
		Columns:  t.Columns,
		RowCount: len(t.Rows),
	}
}

func current(state *workspace.State) *string {
	name, ok := state.Current()
	if !ok {
		return nil
	}
	return &name
}

func elapsedMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}

// errorResponse maps workspace failures onto HTTP statuses.
func errorResponse(ctx echo.Context, err error) error {
	var (
		loadErr   *workspace.LoadError
		queryErr  *workspace.QueryError
		exportErr *workspace.ExportError
	)

	switch {
	case errors.Is(err, workspace.ErrEngineNotReady):
		return createErrorResponse(ctx, http.StatusServiceUnavailable, "Engine not ready", err.Error())
	case errors.Is(err, workspace.ErrNoDatabase):
		return createErrorResponse(ctx, http.StatusConflict, "No database loaded", err.Error())
	case errors.Is(err, workspace.ErrEmptyQuery), errors.Is(err, workspace.ErrNoTableSelected):
		return createErrorResponse(ctx, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, workspace.ErrTableNotFound), errors.Is(err, workspace.ErrColumnNotFound):
		return createErrorResponse(ctx, http.StatusNotFound, "Resource not found", err.Error())
	case errors.As(err, &loadErr):
		return createErrorResponse(ctx, http.StatusUnprocessableEntity, "Load error", err.Error())
	case errors.As(err, &queryErr):
		return createErrorResponse(ctx, http.StatusUnprocessableEntity, "Query error", err.Error())
	case errors.As(err, &exportErr):
		return createErrorResponse(ctx, http.StatusInternalServerError, "Export error", err.Error())
	default:
		return createErrorResponse(ctx, http.StatusInternalServerError, "Internal error", err.Error())
	}
}

func createErrorResponse(ctx echo.Context, status int, error string, message string) error {
	resp := models.ErrorResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     error,
		Message:   message,
	}
	return ctx.JSON(status, resp)
}
