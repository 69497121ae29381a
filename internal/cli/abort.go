package cli

import (
	stderrors "errors"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/output"
)

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort an interrupted rebase and restore the original branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()

			lastRevInfo, _, err := wt.State.ReadPlan()
			if err != nil {
				if stderrors.Is(err, errors.ErrNoPlan) {
					return errors.NewPreconditionError("no rebase to abort")
				}
				return err
			}

			if !force {
				confirmed := false
				prompt := &survey.Confirm{
					Message: "Abort the current rebase? Replayed revisions stay in the repository but the branch is restored.",
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					return nil
				}
			}

			// Restore the position captured when the plan was written.
			// Revisions created so far are left in place; history rewriting
			// never deletes immutable objects.
			if err := wt.CompleteRevert([]string{lastRevInfo.RevisionID}); err != nil {
				return err
			}
			if err := wt.State.WriteActiveRevision(""); err != nil {
				return err
			}
			if err := wt.State.RemovePlan(); err != nil {
				return err
			}
			output.NewSplog().Info("Rebase aborted; branch restored to %s", output.RevisionStyle(lastRevInfo.RevisionID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not ask for confirmation")

	return cmd
}
