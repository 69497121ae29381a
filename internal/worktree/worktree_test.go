package worktree_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

func initTree(t *testing.T) *worktree.WorkTree {
	t.Helper()
	wt, err := worktree.Init(t.TempDir())
	require.NoError(t, err)
	return wt
}

func writeFile(t *testing.T, wt *worktree.WorkTree, path, content string) {
	t.Helper()
	abs := filepath.Join(wt.Root(), path)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func commit(t *testing.T, wt *worktree.WorkTree, message string) *store.Revision {
	t.Helper()
	rev, err := wt.Commit(worktree.CommitOptions{
		Message:   message,
		Committer: "Jane Doe <jane@example.com>",
		Timestamp: 1700000000,
	})
	require.NoError(t, err)
	return rev
}

func TestInitAndOpen(t *testing.T) {
	dir := t.TempDir()
	wt, err := worktree.Init(dir)
	require.NoError(t, err)

	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 0, info.Revno)
	require.Equal(t, store.NullRevision, info.RevisionID)

	// A second init in the same directory is rejected.
	var precondErr *errors.PreconditionError
	_, err = worktree.Init(dir)
	require.ErrorAs(t, err, &precondErr)

	// Open searches upward from a subdirectory.
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	opened, err := worktree.Open(sub)
	require.NoError(t, err)
	require.Equal(t, wt.Root(), opened.Root())
}

func TestOpenOutsideWorkingCopy(t *testing.T) {
	var precondErr *errors.PreconditionError
	_, err := worktree.Open(t.TempDir())
	require.ErrorAs(t, err, &precondErr)
}

func TestCommit(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "hello.txt", "hello\n")

	rev := commit(t, wt, "first")
	require.Empty(t, rev.Parents, "the first commit has no parents")
	require.Equal(t, "hello\n", rev.Files["hello.txt"].Content)
	require.Equal(t, rev.ID, rev.Files["hello.txt"].Revision)

	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 1, info.Revno)
	require.Equal(t, rev.ID, info.RevisionID)

	writeFile(t, wt, "other.txt", "other\n")
	second := commit(t, wt, "second")
	require.Equal(t, []string{rev.ID}, second.Parents)

	// Unchanged files keep their original last-modified marker.
	require.Equal(t, rev.ID, second.Files["hello.txt"].Revision)
	require.Equal(t, second.ID, second.Files["other.txt"].Revision)

	info, err = wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 2, info.Revno)
}

func TestCommitPinnedRevisionID(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "a.txt", "a\n")

	rev, err := wt.Commit(worktree.CommitOptions{
		Message:    "pinned",
		Committer:  "Jane Doe <jane@example.com>",
		Timestamp:  1700000000,
		RevisionID: "pinned-id",
		RebaseOf:   "old-id",
	})
	require.NoError(t, err)
	require.Equal(t, "pinned-id", rev.ID)
	require.Equal(t, "old-id", rev.RebaseOf)
}

func TestHasChanges(t *testing.T) {
	wt := initTree(t)

	dirty, err := wt.HasChanges()
	require.NoError(t, err)
	require.False(t, dirty, "an empty tree on an empty branch is clean")

	writeFile(t, wt, "a.txt", "a\n")
	dirty, err = wt.HasChanges()
	require.NoError(t, err)
	require.True(t, dirty)

	commit(t, wt, "a")
	dirty, err = wt.HasChanges()
	require.NoError(t, err)
	require.False(t, dirty)

	writeFile(t, wt, "a.txt", "changed\n")
	dirty, err = wt.HasChanges()
	require.NoError(t, err)
	require.True(t, dirty)
}

func TestPendingMerges(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "a.txt", "a\n")
	first := commit(t, wt, "first")

	require.NoError(t, wt.AddPendingMerge("merged-rev"))
	require.NoError(t, wt.AddPendingMerge("merged-rev"), "adding twice records once")

	merges, err := wt.PendingMerges()
	require.NoError(t, err)
	require.Equal(t, []string{"merged-rev"}, merges)

	parents, err := wt.ParentIDs()
	require.NoError(t, err)
	require.Equal(t, []string{first.ID, "merged-rev"}, parents)

	// Committing records the merge parent and clears the queue. The merged
	// revision must exist in the repo for the commit to validate.
	require.NoError(t, wt.Repo.Commit(&store.Revision{
		ID:        "merged-rev",
		Committer: "Jane Doe <jane@example.com>",
		Timestamp: 1700000000,
		Message:   "on the other branch",
	}))
	writeFile(t, wt, "a.txt", "merged\n")
	rev := commit(t, wt, "merge")
	require.Equal(t, []string{first.ID, "merged-rev"}, rev.Parents)

	merges, err = wt.PendingMerges()
	require.NoError(t, err)
	require.Empty(t, merges)
}

func TestConflicts(t *testing.T) {
	wt := initTree(t)

	paths, err := wt.Conflicts()
	require.NoError(t, err)
	require.Empty(t, paths)

	require.NoError(t, wt.SetConflicts([]string{"a.txt", "b.txt"}))
	paths, err = wt.Conflicts()
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, paths)

	require.NoError(t, wt.Resolve("a.txt"))
	paths, err = wt.Conflicts()
	require.NoError(t, err)
	require.Equal(t, []string{"b.txt"}, paths)

	require.NoError(t, wt.Resolve("b.txt"))
	paths, err = wt.Conflicts()
	require.NoError(t, err)
	require.Empty(t, paths)
}

func TestSetLastRevisionRecomputesRevno(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "a.txt", "a\n")
	first := commit(t, wt, "first")
	writeFile(t, wt, "a.txt", "b\n")
	commit(t, wt, "second")

	require.NoError(t, wt.SetLastRevision(first.ID))
	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 1, info.Revno)
	require.Equal(t, first.ID, info.RevisionID)

	require.NoError(t, wt.SetLastRevision(store.NullRevision))
	info, err = wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 0, info.Revno)
}

func TestCompleteRevert(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "a.txt", "a\n")
	first := commit(t, wt, "first")
	writeFile(t, wt, "a.txt", "second\n")
	writeFile(t, wt, "b.txt", "b\n")
	second := commit(t, wt, "second")

	require.NoError(t, wt.SetConflicts([]string{"a.txt"}))
	require.NoError(t, wt.CompleteRevert([]string{first.ID, "extra-parent"}))

	data, err := os.ReadFile(filepath.Join(wt.Root(), "a.txt"))
	require.NoError(t, err)
	require.Equal(t, "a\n", string(data))
	_, err = os.Stat(filepath.Join(wt.Root(), "b.txt"))
	require.True(t, os.IsNotExist(err), "files not in the target snapshot are removed")

	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, first.ID, info.RevisionID)

	merges, err := wt.PendingMerges()
	require.NoError(t, err)
	require.Equal(t, []string{"extra-parent"}, merges)

	conflicts, err := wt.Conflicts()
	require.NoError(t, err)
	require.Empty(t, conflicts)

	// The reverted-away revision is still in the repository.
	require.True(t, wt.Repo.Has(second.ID))
}

func TestCompleteRevertToEmptyBranch(t *testing.T) {
	wt := initTree(t)
	writeFile(t, wt, "a.txt", "a\n")
	commit(t, wt, "first")

	require.NoError(t, wt.CompleteRevert(nil))

	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, store.NullRevision, info.RevisionID)
	require.Equal(t, 0, info.Revno)

	disk, err := wt.DiskSnapshot()
	require.NoError(t, err)
	require.Empty(t, disk)
}
