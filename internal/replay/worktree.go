package replay

import (
	stderrors "errors"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/merge"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

// Worktree returns a replay function that replays revisions through the
// working copy: revert to the new first parent, three-way merge the old
// revision in, commit under the new id.
func Worktree(wt *worktree.WorkTree, merger merge.Merger) engine.ReplayFunc {
	return func(_ engine.Repository, oldID, newID string, newParents []string) error {
		return Delta(wt, merger, oldID, newID, newParents)
	}
}

// Delta replays one revision through the working copy. It is exported for
// the ad hoc replay command, which drives it without a persisted plan.
func Delta(wt *worktree.WorkTree, merger merge.Merger, oldID, newID string, newParents []string) error {
	oldRev, err := wt.Repo.Get(oldID)
	if err != nil {
		return err
	}
	changed, err := wt.HasChanges()
	if err != nil {
		return err
	}
	if changed {
		return errors.ErrUncommittedChanges
	}

	base := store.NullRevision
	if len(newParents) == 0 {
		newParents = []string{store.NullRevision}
	}
	if err := wt.CompleteRevert(newParents[:1]); err != nil {
		return err
	}

	// The marker makes a crash between merge and commit auditable: a
	// later continue finishes this replay instead of starting the next.
	if err := wt.State.WriteActiveRevision(oldID); err != nil {
		return err
	}

	if newParents[0] != store.NullRevision {
		graph, err := store.BuildGraph(wt.Repo, newParents[0], oldID)
		if err != nil {
			return err
		}
		mergeBase, err := graph.MergeBase(newParents[0], oldID)
		if err != nil {
			var unrelated *errors.UnrelatedHistoriesError
			if !stderrors.As(err, &unrelated) {
				return err
			}
			// No common ancestor; merge against the empty tree
		} else {
			base = mergeBase
		}
	}

	baseFiles, err := wt.RevisionSnapshot(base)
	if err != nil {
		return err
	}
	ours, err := wt.RevisionSnapshot(newParents[0])
	if err != nil {
		return err
	}
	theirs, err := wt.RevisionSnapshot(oldID)
	if err != nil {
		return err
	}

	merged, conflicts := merger.Merge(baseFiles, ours, theirs)
	if err := wt.WriteSnapshot(merged); err != nil {
		return err
	}
	for _, p := range newParents[1:] {
		if err := wt.AddPendingMerge(p); err != nil {
			return err
		}
	}
	if len(conflicts) > 0 {
		if err := wt.SetConflicts(conflicts); err != nil {
			return err
		}
		return errors.NewConflictError(oldID, conflicts)
	}

	return CommitRebase(wt, oldRev, newID)
}

// CommitRebase commits the working copy as the replayed form of oldRev
// and clears the active-revision marker. Continue calls this directly to
// finish a replay that conflicted after its merge.
func CommitRebase(wt *worktree.WorkTree, oldRev *store.Revision, newID string) error {
	if oldRev.ID == newID {
		return errors.NewPreconditionError("replayed revision %s must not keep its id", newID)
	}
	_, err := wt.Commit(worktree.CommitOptions{
		Message:    oldRev.Message,
		Committer:  oldRev.Committer,
		Timestamp:  oldRev.Timestamp,
		Timezone:   oldRev.Timezone,
		RevisionID: newID,
		RebaseOf:   oldRev.ID,
		Origin:     oldRev.Origin,
	})
	if err != nil {
		return err
	}
	return wt.State.WriteActiveRevision("")
}
