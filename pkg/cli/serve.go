package cli

import (
	"github.com/spf13/cobra"

	"github.com/JayJamieson/sqlite-api/pkg/api"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, err := api.New(getConfig(cmd.Context()))
			if err != nil {
				return err
			}
			return server.Start()
		},
	}
}
