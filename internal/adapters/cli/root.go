package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCommand creates the root command for the dispatch daemon
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dispatch-daemon",
		Short: "Daily procurement-buyer dispatch service",
		Long: `dispatch-daemon plans each business day's buying work: it assigns
pending order items to stores and buyers, optimizes every buyer's store
route, and tracks execution in the field.

Examples:
  dispatch-daemon serve
  dispatch-daemon plan --date 2026-08-24 --dispatch
  dispatch-daemon assign --date 2026-08-24
  dispatch-daemon routes --date 2026-08-24
  dispatch-daemon matrix recompute
  dispatch-daemon migrate`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: search ./config.yaml)")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewPlanCommand())
	rootCmd.AddCommand(NewAssignCommand())
	rootCmd.AddCommand(NewRoutesCommand())
	rootCmd.AddCommand(NewMatrixCommand())
	rootCmd.AddCommand(NewMigrateCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
