package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JayJamieson/sqlite-api/pkg/workspace"
)

func newQueryCommand() *cobra.Command {
	var (
		save   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "query <file> <sql>",
		Short: "Run SQL against a database file",
		Long: `Run SQL against a working copy of a database file. A statement that
returns rows prints them; anything else prints the refreshed table list.
The file itself is never modified; use --save to write the result.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			outcome, err := ws.Execute(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outcome.Kind == workspace.OutcomeResult {
				if err := renderRows(out, outcome.Result, format); err != nil {
					return err
				}
			} else {
				renderTables(out, outcome.State)
			}

			if save != "" {
				if err := saveDatabase(cmd.Context(), ws, save); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", save)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&save, "save", "", "Write the database to this path after running the query")
	cmd.Flags().StringVar(&format, "format", formatTable, "Output format for rows (table|json)")

	return cmd
}
