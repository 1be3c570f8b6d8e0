// Package cli wires the sqlite-api commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JayJamieson/sqlite-api/pkg/config"
)

var Version = "0.1.0"

type configKey struct{}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlite-api",
		Short: "Browse, query and export SQLite databases",
		Long: `sqlite-api loads a SQLite database file, materializes its tables and
lets you run SQL against it. Results can be exported as a workbook, a Prisma
seed script or the raw database file.

Run "sqlite-api serve" for the HTTP API, or use the other commands directly
against a file.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, cfg))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newExportCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{
		Port:     config.DefaultPort,
		WorkDir:  config.DefaultWorkDir,
		LogLevel: config.DefaultLevel,
	}
}
