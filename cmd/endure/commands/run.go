package commands

import (
	"github.com/spf13/cobra"

	"github.com/jzx17/endure/cmd/endure/handlers"
)

// Run returns the command that retries an external command.
func Run() *cobra.Command {
	var policy policyFlags
	var exitCodes []int
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run [flags] -- command [args...]",
		Short: "Run a command, retrying it while it fails",
		Long: `Run a command and retry it while it exits with a non-zero code.

Retries stop when the command succeeds, the retry budget is spent, the
maximum duration elapses, or the process is interrupted. Settings come
from --config and are overridden by flags.

Examples:
  endure run -n 5 -b exponential -- curl -fsS https://example.com/health
  endure run --retry-on-exit-code 75 --max-duration 2m -- ./sync.sh
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Run(cmd.Context(), handlers.RunOptions{
				Policy:      policy.options(cmd),
				ExitCodes:   exitCodes,
				MetricsAddr: metricsAddr,
				Command:     args,
				Stdout:      cmd.OutOrStdout(),
				Stderr:      cmd.ErrOrStderr(),
				Logger:      logger(cmd),
			})
		},
	}

	policy.bind(cmd)
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().IntSliceVar(&exitCodes, "retry-on-exit-code", nil, "Only retry these exit codes (default any non-zero code)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	return cmd
}
