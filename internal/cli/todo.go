package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/worktree"
)

// newTodoCmd creates the todo command
func newTodoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "todo",
		Short: "List the revisions that still need to be replayed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, err := worktree.Open(".")
			if err != nil {
				return err
			}
			splog := output.NewSplog()

			_, replaceMap, err := wt.State.ReadPlan()
			if err != nil {
				if stderrors.Is(err, errors.ErrNoPlan) {
					return errors.NewPreconditionError("no rebase in progress")
				}
				return err
			}

			activeID, err := wt.State.ReadActiveRevision()
			if err != nil {
				return err
			}
			if activeID != "" {
				splog.Info("Currently replaying: %s", output.RevisionStyle(activeID))
			}
			for _, revid := range engine.Todo(wt.Repo, replaceMap) {
				splog.Info("%s -> %s", output.PendingStyle(revid), output.RevisionStyle(replaceMap[revid].NewID))
			}
			return nil
		},
	}
}
