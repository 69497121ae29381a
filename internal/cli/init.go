package cli

import (
	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/worktree"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new regraft working copy in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, err := worktree.Init(".")
			if err != nil {
				return err
			}
			output.NewSplog().Info("Initialized empty working copy in %s", wt.Root())
			return nil
		},
	}
}
