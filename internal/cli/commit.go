package cli

import (
	"os"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/worktree"
)

// newCommitCmd creates the commit command
func newCommitCmd() *cobra.Command {
	var message string
	var committer string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the working files as a new revision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, err := worktree.Open(".")
			if err != nil {
				return err
			}
			if err := wt.Lock(); err != nil {
				return err
			}
			defer wt.Unlock()

			if committer == "" {
				committer = os.Getenv("REGRAFT_COMMITTER")
			}
			if committer == "" {
				committer = "unknown"
			}

			changed, err := wt.HasChanges()
			if err != nil {
				return err
			}
			pending, err := wt.PendingMerges()
			if err != nil {
				return err
			}
			splog := output.NewSplog()
			if !changed && len(pending) == 0 {
				splog.Info("No changes to commit.")
				return nil
			}

			rev, err := wt.Commit(worktree.CommitOptions{
				Message:   message,
				Committer: committer,
			})
			if err != nil {
				return err
			}
			splog.Info("Committed revision %s", output.RevisionStyle(rev.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "Commit message")
	cmd.Flags().StringVar(&committer, "committer", "", "Committer identity, e.g. 'Jane <jane@example.com>'")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}
