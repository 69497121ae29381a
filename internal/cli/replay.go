package cli

import (
	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/merge"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/replay"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

// newReplayCmd creates the replay command
func newReplayCmd() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "replay --from <location> <revision>...",
		Short: "Replay revisions from another branch on top of this one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()

			source, err := worktree.Open(from)
			if err != nil {
				return err
			}
			splog := output.NewSplog()
			merger := merge.NewFileMerger()

			for i, revid := range args {
				splog.Progress("replaying commits", i, len(args))
				if err := store.Fetch(wt.Repo, source.Repo, revid); err != nil {
					return err
				}
				newID := regenerateRevisionID(wt.Repo, revid)
				head, err := wt.LastRevision()
				if err != nil {
					return err
				}
				err = replay.Delta(wt, merger, revid, newID, []string{head})
				if err != nil {
					return adviseOnConflict(splog, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Working copy to replay revisions from")
	_ = cmd.MarkFlagRequired("from")

	return cmd
}
