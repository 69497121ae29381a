package cli

import (
	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/output"
)

// newResolveCmd creates the resolve command
func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>...",
		Short: "Mark conflicted files as resolved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()

			if err := wt.Resolve(args...); err != nil {
				return err
			}
			remaining, err := wt.Conflicts()
			if err != nil {
				return err
			}
			splog := output.NewSplog()
			if len(remaining) == 0 {
				splog.Info("All conflicts resolved.")
				splog.Tip("Run 'regraft continue' to resume the rebase.")
			} else {
				splog.Info("%d conflicts remaining.", len(remaining))
			}
			return nil
		},
	}
}
