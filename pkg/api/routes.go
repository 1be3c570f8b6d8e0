package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ImportDatabaseParams defines parameters for ImportDatabase.
type ImportDatabaseParams struct {
	Name *string `form:"name,omitempty" json:"name,omitempty"`
	Url  *string `form:"url,omitempty" json:"url,omitempty"`
}

// GetTableParams defines parameters for GetTable.
type GetTableParams struct {
	Shape  *string `form:"_shape,omitempty" json:"_shape,omitempty"`
	Size   *int    `form:"_size,omitempty" json:"_size,omitempty"`
	Offset *int    `form:"_offset,omitempty" json:"_offset,omitempty"`
}

// ImportSpreadsheetParams defines parameters for ImportSpreadsheet.
type ImportSpreadsheetParams struct {
	Name string `form:"name" json:"name"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /api/database)
	ImportDatabase(ctx echo.Context, params ImportDatabaseParams) error
	// (GET /api/database)
	ExportDatabase(ctx echo.Context) error
	// (GET /api/tables)
	ListTables(ctx echo.Context) error
	// (GET /api/tables/{name})
	GetTable(ctx echo.Context, name string, params GetTableParams) error
	// (PATCH /api/tables/{name}/columns/{column})
	SetColumn(ctx echo.Context, name string, column string) error
	// (GET /api/tables/{name}/xlsx)
	ExportSpreadsheet(ctx echo.Context, name string) error
	// (POST /api/tables/{name}/xlsx)
	ImportSpreadsheet(ctx echo.Context, name string, params ImportSpreadsheetParams) error
	// (GET /api/tables/{name}/seed)
	ExportTableSeed(ctx echo.Context, name string) error
	// (GET /api/seed)
	ExportFullSeed(ctx echo.Context) error
	// (PUT /api/current)
	SelectTable(ctx echo.Context) error
	// (POST /api/query)
	RunQuery(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) ImportDatabase(ctx echo.Context) error {
	var params ImportDatabaseParams

	if err := runtime.BindQueryParameter("form", true, false, "name", ctx.QueryParams(), &params.Name); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter name: %s", err))
	}

	if err := runtime.BindQueryParameter("form", true, false, "url", ctx.QueryParams(), &params.Url); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter url: %s", err))
	}

	return w.Handler.ImportDatabase(ctx, params)
}

func (w *ServerInterfaceWrapper) ExportDatabase(ctx echo.Context) error {
	return w.Handler.ExportDatabase(ctx)
}

func (w *ServerInterfaceWrapper) ListTables(ctx echo.Context) error {
	return w.Handler.ListTables(ctx)
}

func (w *ServerInterfaceWrapper) GetTable(ctx echo.Context) error {
	name, err := bindPath(ctx, "name")
	if err != nil {
		return err
	}

	var params GetTableParams

	if err := runtime.BindQueryParameter("form", true, false, "_shape", ctx.QueryParams(), &params.Shape); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter _shape: %s", err))
	}

	if err := runtime.BindQueryParameter("form", true, false, "_size", ctx.QueryParams(), &params.Size); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter _size: %s", err))
	}

	if err := runtime.BindQueryParameter("form", true, false, "_offset", ctx.QueryParams(), &params.Offset); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter _offset: %s", err))
	}

	return w.Handler.GetTable(ctx, name, params)
}

func (w *ServerInterfaceWrapper) SetColumn(ctx echo.Context) error {
	name, err := bindPath(ctx, "name")
	if err != nil {
		return err
	}

	column, err := bindPath(ctx, "column")
	if err != nil {
		return err
	}

	return w.Handler.SetColumn(ctx, name, column)
}

func (w *ServerInterfaceWrapper) ExportSpreadsheet(ctx echo.Context) error {
	name, err := bindPath(ctx, "name")
	if err != nil {
		return err
	}
	return w.Handler.ExportSpreadsheet(ctx, name)
}

func (w *ServerInterfaceWrapper) ImportSpreadsheet(ctx echo.Context) error {
	name, err := bindPath(ctx, "name")
	if err != nil {
		return err
	}

	var params ImportSpreadsheetParams

	if err := runtime.BindQueryParameter("form", true, true, "name", ctx.QueryParams(), &params.Name); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter name: %s", err))
	}

	return w.Handler.ImportSpreadsheet(ctx, name, params)
}

func (w *ServerInterfaceWrapper) ExportTableSeed(ctx echo.Context) error {
	name, err := bindPath(ctx, "name")
	if err != nil {
		return err
	}
	return w.Handler.ExportTableSeed(ctx, name)
}

func (w *ServerInterfaceWrapper) ExportFullSeed(ctx echo.Context) error {
	return w.Handler.ExportFullSeed(ctx)
}

func (w *ServerInterfaceWrapper) SelectTable(ctx echo.Context) error {
	return w.Handler.SelectTable(ctx)
}

func (w *ServerInterfaceWrapper) RunQuery(ctx echo.Context) error {
	return w.Handler.RunQuery(ctx)
}

func bindPath(ctx echo.Context, param string) (string, error) {
	var value string

	err := runtime.BindStyledParameterWithOptions("simple", param, ctx.Param(param), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter %s: %s", param, err))
	}
	return value, nil
}

// EchoRouter is the subset of echo routing RegisterHandlers needs, so both
// *echo.Echo and *echo.Group can be used.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/database", wrapper.ImportDatabase)
	router.GET(baseURL+"/api/database", wrapper.ExportDatabase)
	router.GET(baseURL+"/api/tables", wrapper.ListTables)
	router.GET(baseURL+"/api/tables/:name", wrapper.GetTable)
	router.PATCH(baseURL+"/api/tables/:name/columns/:column", wrapper.SetColumn)
	router.GET(baseURL+"/api/tables/:name/xlsx", wrapper.ExportSpreadsheet)
	router.POST(baseURL+"/api/tables/:name/xlsx", wrapper.ImportSpreadsheet)
	router.GET(baseURL+"/api/tables/:name/seed", wrapper.ExportTableSeed)
	router.GET(baseURL+"/api/seed", wrapper.ExportFullSeed)
	router.PUT(baseURL+"/api/current", wrapper.SelectTable)
	router.POST(baseURL+"/api/query", wrapper.RunQuery)
}
