// Package cli wires the regraft command line surface on top of the
// engine, working copy and state packages.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "regraft",
		Short:   "Regraft rewrites revision history onto a different parent",
		Version: version,
		Long: `Regraft rewrites revision history: it replays a range of revisions on
top of a different parent, tolerates interruption and conflicts, and
persists enough state to continue or abort safely.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCommitCmd())
	rootCmd.AddCommand(newLogCmd())
	rootCmd.AddCommand(newRebaseCmd())
	rootCmd.AddCommand(newContinueCmd())
	rootCmd.AddCommand(newAbortCmd())
	rootCmd.AddCommand(newTodoCmd())
	rootCmd.AddCommand(newResolveCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newUpgradeCmd())
	rootCmd.AddCommand(newPseudonymsCmd())

	return rootCmd
}
