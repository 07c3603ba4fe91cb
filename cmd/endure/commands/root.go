// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to functions in the handlers package.
package commands

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/jzx17/endure/cmd/endure/handlers"
)

// Root returns the root command for the endure CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "endure",
		Short:         "Retry commands with configurable backoff",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().IntP("verbosity", "v", 0, "Log verbosity (1 logs every retry)")

	cmd.AddCommand(Run())
	cmd.AddCommand(Schedule())
	cmd.AddCommand(Fib())
	cmd.AddCommand(Version())

	return cmd
}

// logger builds the stderr logger for cmd from the verbosity flag
func logger(cmd *cobra.Command) logr.Logger {
	verbosity, err := cmd.Flags().GetInt("verbosity")
	if err != nil {
		verbosity = 0
	}
	return handlers.NewLogger(cmd.ErrOrStderr(), verbosity)
}
