package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/JayJamieson/sqlite-api/pkg/config"
	"github.com/JayJamieson/sqlite-api/pkg/engine"
	"github.com/JayJamieson/sqlite-api/pkg/utils"
	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

// openWorkspace loads path into a fresh workspace. The caller closes it.
func openWorkspace(cmd *cobra.Command, path string) (*workspace.Workspace, error) {
	cfg := getConfig(cmd.Context())

	logger := log.New("sqlite-api")
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(cfg.Level())

	ws := workspace.New(workspace.Options{
		Logger: logger,
		Client: utils.NewHTTPClient(cfg.DownloadTimeout),
	})

	if err := ws.Init(loader(cfg)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if _, err := ws.Import(cmd.Context(), filepath.Base(path), data); err != nil {
		return nil, err
	}

	return ws, nil
}

func loader(cfg *config.Config) func() (engine.Loader, error) {
	return func() (engine.Loader, error) {
		eng, err := engine.New(engine.Options{Driver: cfg.Driver, WorkDir: cfg.WorkDir})
		if err != nil {
			return nil, err
		}
		return eng, nil
	}
}

// saveDatabase writes the live database of ws to path.
func saveDatabase(ctx context.Context, ws *workspace.Workspace, path string) error {
	payload, err := ws.ExportDatabase(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, payload.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
