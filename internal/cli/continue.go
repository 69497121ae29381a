package cli

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/merge"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/replay"
)

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "continue",
		Short: "Continue an interrupted rebase after resolving conflicts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()
			splog := output.NewSplog()

			// Abort if there are any conflicts left
			conflicts, err := wt.Conflicts()
			if err != nil {
				return err
			}
			if len(conflicts) != 0 {
				splog.Warn("There are still conflicts present.")
				splog.Tip("Fix the files and mark them with 'regraft resolve', then try again.")
				return errors.NewConflictError("", conflicts)
			}

			_, replaceMap, err := wt.State.ReadPlan()
			if err != nil {
				if stderrors.Is(err, errors.ErrNoPlan) {
					return errors.NewPreconditionError("no rebase to continue")
				}
				return err
			}

			// A recorded active revision means the previous replay was
			// merged but never committed; finish it first.
			activeID, err := wt.State.ReadActiveRevision()
			if err != nil {
				return err
			}
			if activeID != "" {
				oldRev, err := wt.Repo.Get(activeID)
				if err != nil {
					return err
				}
				if err := replay.CommitRebase(wt, oldRev, replaceMap[activeID].NewID); err != nil {
					return err
				}
			}

			err = engine.Rebase(wt.Repo, replaceMap, replay.Worktree(wt, merge.NewFileMerger()))
			if err != nil {
				return adviseOnConflict(splog, err)
			}
			return wt.State.RemovePlan()
		},
	}
}
