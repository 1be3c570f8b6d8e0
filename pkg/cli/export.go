package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JayJamieson/sqlite-api/pkg/export"
	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

func newExportCommand() *cobra.Command {
	var (
		format    string
		tableName string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a database, a table or a seed script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			var payload export.Payload
			switch format {
			case workspace.FormatSQLite:
				payload, err = ws.ExportDatabase(cmd.Context())
			case workspace.FormatSpreadsheet:
				payload, err = exportTable(ws, tableName, ws.ExportSpreadsheet)
			case workspace.FormatSeed:
				payload, err = exportTable(ws, tableName, ws.ExportTableSeed)
			case workspace.FormatFullSeed:
				payload, err = ws.ExportFullSeed()
			default:
				return fmt.Errorf("unknown format %q, expected sqlite, xlsx, seed or full-seed", format)
			}
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = payload.Filename
			}
			if path == "-" {
				_, err := cmd.OutOrStdout().Write(payload.Data)
				return err
			}

			if err := os.WriteFile(path, payload.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", path, len(payload.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", workspace.FormatSQLite, "Export format (sqlite|xlsx|seed|full-seed)")
	cmd.Flags().StringVar(&tableName, "table", "", "Table to export for xlsx and seed")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path, - for stdout (default: the export's file name)")

	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{workspace.FormatSQLite, workspace.FormatSpreadsheet, workspace.FormatSeed, workspace.FormatFullSeed}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// exportTable selects tableName before exporting so the single-table exports
// work from the command line, where nothing is selected yet.
func exportTable(ws *workspace.Workspace, tableName string, fn func(string) (export.Payload, error)) (export.Payload, error) {
	if tableName == "" {
		return export.Payload{}, fmt.Errorf("--table is required for this format")
	}
	if _, err := ws.Select(tableName); err != nil {
		return export.Payload{}, err
	}
	return fn("")
}
