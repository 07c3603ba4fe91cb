package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jzx17/endure/cmd/endure/handlers"
)

// Fib returns the command that prints Fibonacci numbers.
func Fib() *cobra.Command {
	return &cobra.Command{
		Use:   "fib N",
		Short: "Print the first N Fibonacci numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 10, 0)
			if err != nil {
				return fmt.Errorf("invalid count %q: %w", args[0], err)
			}
			return handlers.Fibonacci(cmd.OutOrStdout(), uint(n))
		},
	}
}
