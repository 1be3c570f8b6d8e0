package cli

import (
	"github.com/spf13/cobra"
)

func newTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <file>",
		Short: "List the tables of a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, args[0])
			if err != nil {
				return err
			}
			defer ws.Close()

			renderTables(cmd.OutOrStdout(), ws.State())
			return nil
		},
	}
}
