package cli

import (
	stderrors "errors"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/output"
	"regraft.dev/regraft/internal/worktree"
)

// openLocked opens the working copy containing the current directory and
// takes its write lock. The returned unlock must run on every exit path.
func openLocked() (*worktree.WorkTree, func(), error) {
	wt, err := worktree.Open(".")
	if err != nil {
		return nil, nil, err
	}
	if err := wt.Lock(); err != nil {
		return nil, nil, err
	}
	return wt, wt.Unlock, nil
}

// adviseOnConflict prints resolution guidance when err is a replay
// conflict, and passes every error through.
func adviseOnConflict(splog *output.Splog, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, errors.ErrConflict) {
		splog.Warn("A conflict occurred replaying a commit.")
		splog.Tip("Resolve the conflict, mark it with 'regraft resolve', then run 'regraft continue' or 'regraft abort'.")
	}
	return err
}
