package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the mainline history of the branch, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, err := worktree.Open(".")
			if err != nil {
				return err
			}
			splog := output.NewSplog()

			head, err := wt.LastRevision()
			if err != nil {
				return err
			}
			if head == store.NullRevision {
				splog.Info("No revisions.")
				return nil
			}
			graph, err := store.BuildGraph(wt.Repo, head)
			if err != nil {
				return err
			}
			history := graph.FirstParentHistory(head)
			for i := len(history) - 1; i >= 0; i-- {
				rev, err := wt.Repo.Get(history[i])
				if err != nil {
					return err
				}
				subject, _, _ := strings.Cut(rev.Message, "\n")
				splog.Info("%4d %s %s", i+1, output.RevisionStyle(rev.ID), subject)
			}
			return nil
		},
	}
}
