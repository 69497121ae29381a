package cli

import (
	"github.com/spf13/cobra"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/merge"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/replay"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

// newRebaseCmd creates the rebase command
func newRebaseCmd() *cobra.Command {
	var onto string
	var startID string
	var stopID string
	var alwaysRebaseMerges bool
	var pendingMerges bool
	var dryRun bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "rebase [upstream]",
		Short: "Replay this branch's revisions on top of another branch",
		Long: `Rebasing modifies the history of the current branch so that it appears
to start from a different point. Revisions unique to this branch are
replayed one by one on top of the upstream branch head.

A replay may produce conflicts. When that happens the command stops with
the plan preserved; fix the files, mark them with 'regraft resolve' and
run 'regraft continue', or give up with 'regraft abort'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pendingMerges && (startID != "" || stopID != "") {
				return errors.NewPreconditionError("--pending-merges cannot be combined with --start or --stop")
			}
			upstreamLocation := ""
			if len(args) == 1 {
				upstreamLocation = args[0]
			}
			if upstreamLocation == "" {
				if !pendingMerges {
					return errors.NewPreconditionError("an upstream location is required")
				}
				upstreamLocation = "."
			}

			wt, unlock, err := openLocked()
			if err != nil {
				return err
			}
			defer unlock()

			splog := output.NewSplog()
			splog.SetVerbose(verbose)
			return runRebase(wt, splog, rebaseOptions{
				upstreamLocation:   upstreamLocation,
				onto:               onto,
				startID:            startID,
				stopID:             stopID,
				alwaysRebaseMerges: alwaysRebaseMerges,
				pendingMerges:      pendingMerges,
				dryRun:             dryRun,
				verbose:            verbose,
			})
		},
	}

	cmd.Flags().StringVar(&onto, "onto", "", "Different revision in the upstream branch to replay onto")
	cmd.Flags().StringVar(&startID, "start", "", "First revision to replay (defaults to the oldest unique revision)")
	cmd.Flags().StringVar(&stopID, "stop", "", "Stop replaying before this revision")
	cmd.Flags().BoolVar(&alwaysRebaseMerges, "always-rebase-merges", false, "Don't skip revisions that merge already present revisions")
	cmd.Flags().BoolVar(&pendingMerges, "pending-merges", false, "Rebase the pending merge onto the local branch")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done, but don't actually do anything")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "List the revisions that will be rebased")

	return cmd
}

type rebaseOptions struct {
	upstreamLocation   string
	onto               string
	startID            string
	stopID             string
	alwaysRebaseMerges bool
	pendingMerges      bool
	dryRun             bool
	verbose            bool
}

func runRebase(wt *worktree.WorkTree, splog *output.Splog, opts rebaseOptions) error {
	// Abort if there already is a plan
	if wt.State.PlanExists() {
		splog.Warn("A rebase operation was interrupted.")
		splog.Tip("Continue using 'regraft continue' or abort using 'regraft abort'.")
		return errors.ErrPlanExists
	}

	upstream, err := worktree.Open(opts.upstreamLocation)
	if err != nil {
		return err
	}
	upstreamHead, err := upstream.LastRevision()
	if err != nil {
		return err
	}

	if opts.pendingMerges {
		parents, err := wt.ParentIDs()
		if err != nil {
			return err
		}
		if len(parents) < 2 {
			return errors.NewPreconditionError("no pending merges present")
		}
		if len(parents) > 2 {
			return errors.NewPreconditionError("rebasing more than one pending merge is not supported")
		}
	}

	// Pull required revisions
	if upstreamHead != store.NullRevision {
		if err := store.Fetch(wt.Repo, upstream.Repo, upstreamHead); err != nil {
			return err
		}
	}
	onto := opts.onto
	if onto == "" {
		onto = upstreamHead
	} else if err := store.Fetch(wt.Repo, upstream.Repo, onto); err != nil {
		return err
	}
	if onto == store.NullRevision {
		return errors.NewPreconditionError("cannot rebase onto the null revision")
	}

	head, err := wt.LastRevision()
	if err != nil {
		return err
	}
	if opts.pendingMerges {
		merges, err := wt.PendingMerges()
		if err != nil {
			return err
		}
		head = merges[0]
	}
	if head == store.NullRevision {
		splog.Info("No revisions to rebase.")
		return nil
	}

	graph, err := store.BuildGraph(wt.Repo, head, onto)
	if err != nil {
		return err
	}
	ontoAncestry := graph.Ancestry(onto)
	headAncestry := graph.Ancestry(head)

	var history []string
	for _, revid := range graph.FirstParentHistory(head) {
		if !ontoAncestry[revid] {
			history = append(history, revid)
		}
	}

	if opts.startID == "" {
		if headAncestry[onto] && len(history) == 0 {
			splog.Info("No revisions to rebase.")
			return nil
		}
		if len(history) == 0 {
			// The target has everything we have; just move up to it
			splog.Info("Base branch is descendant of current branch. Pulling instead.")
			return pullTo(wt, onto)
		}
	}

	// Check for changes in the working copy
	if !opts.pendingMerges {
		changed, err := wt.HasChanges()
		if err != nil {
			return err
		}
		if changed {
			return errors.ErrUncommittedChanges
		}
	}

	replaceMap, err := engine.GenerateSimplePlan(history, opts.startID, opts.stopID,
		onto, ontoAncestry, wt.Repo.Parents,
		func(revid string) string { return regenerateRevisionID(wt.Repo, revid) },
		!opts.alwaysRebaseMerges)
	if err != nil {
		return err
	}

	if opts.verbose || opts.dryRun {
		todo := engine.Todo(wt.Repo, replaceMap)
		splog.Info("%d revisions will be rebased:", len(todo))
		for _, revid := range todo {
			splog.Info("%s", output.PendingStyle(revid))
		}
	}
	if opts.dryRun {
		return nil
	}

	lastRevInfo, err := wt.LastRevisionInfo()
	if err != nil {
		return err
	}
	if err := wt.State.WritePlan(lastRevInfo, replaceMap); err != nil {
		return err
	}
	err = engine.Rebase(wt.Repo, replaceMap, replay.Worktree(wt, merge.NewFileMerger()))
	if err != nil {
		return adviseOnConflict(splog, err)
	}
	return wt.State.RemovePlan()
}

// pullTo fast-forwards the branch and working files to revid.
func pullTo(wt *worktree.WorkTree, revid string) error {
	snapshot, err := wt.RevisionSnapshot(revid)
	if err != nil {
		return err
	}
	if err := wt.WriteSnapshot(snapshot); err != nil {
		return err
	}
	return wt.SetLastRevision(revid)
}

// regenerateRevisionID derives the default new id for a replayed revision
// from its recorded committer and timestamp.
func regenerateRevisionID(repo store.Repository, revid string) string {
	rev, err := repo.Get(revid)
	if err != nil {
		return store.GenerateRevisionID("", 0)
	}
	return store.GenerateRevisionID(rev.Committer, rev.Timestamp)
}
