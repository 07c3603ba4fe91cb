package commands

import (
	"github.com/spf13/cobra"

	"github.com/jzx17/endure/cmd/endure/handlers"
)

// Schedule returns the command that prints a retry schedule.
func Schedule() *cobra.Command {
	var policy policyFlags
	var count uint

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the delays a policy would wait between retries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Schedule(cmd.OutOrStdout(), policy.options(cmd), count)
		},
	}

	policy.bind(cmd)
	cmd.Flags().UintVar(&count, "count", 10, "Number of retries to show")

	return cmd
}
