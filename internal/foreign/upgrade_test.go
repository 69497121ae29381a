package foreign_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/foreign"
	"regraft.dev/regraft/internal/store"
	"regraft.dev/regraft/internal/worktree"
)

func mappedRevision(id string, parents []string, message string) *store.Revision {
	return &store.Revision{
		ID:        id,
		Parents:   parents,
		Committer: "Jane Doe <jane@example.com>",
		Timestamp: 1700000000,
		Message:   message,
		Files: map[string]store.Entry{
			"a.txt": {FileID: "a-id", Revision: id, Content: "content for " + message},
		},
	}
}

// upgradeFixture builds a repo with one v1-mapped revision and a native
// descendant, plus a foreign source holding the v2 form.
func upgradeFixture(t *testing.T, v2Message string) (repo, foreignRepo *store.MemoryRepository) {
	t.Helper()
	repo = store.NewMemoryRepository()
	require.NoError(t, repo.Commit(mappedRevision("git-v1:aaaa", nil, "imported")))
	require.NoError(t, repo.Commit(mappedRevision("local-1", []string{"git-v1:aaaa"}, "local work")))

	foreignRepo = store.NewMemoryRepository()
	require.NoError(t, foreignRepo.Commit(mappedRevision("git-v2:aaaa", nil, v2Message)))
	return repo, foreignRepo
}

func TestCreateUpgradePlan(t *testing.T) {
	repo, foreignRepo := upgradeFixture(t, "imported")
	registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())

	plan, renames, err := foreign.CreateUpgradePlan(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", false)
	require.NoError(t, err)

	require.True(t, repo.Has("git-v2:aaaa"), "missing v2 revisions are fetched")

	require.Equal(t, map[string]string{
		"git-v1:aaaa": "git-v2:aaaa",
		"local-1":     "local-1-git-v2-upgrade",
	}, renames)

	require.NotContains(t, plan, "git-v1:aaaa", "seed renames point at existing revisions")
	require.Equal(t, []string{"git-v2:aaaa"}, plan["local-1"].NewParents)
}

func TestCreateUpgradePlanRejectsChangedContent(t *testing.T) {
	repo, foreignRepo := upgradeFixture(t, "rewritten upstream")
	registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())

	var changedErr *errors.ChangedContentError
	_, _, err := foreign.CreateUpgradePlan(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", false)
	require.ErrorAs(t, err, &changedErr)

	// The override accepts the changed metadata.
	_, _, err = foreign.CreateUpgradePlan(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", true)
	require.NoError(t, err)
}

func TestUpgradeRepository(t *testing.T) {
	repo, foreignRepo := upgradeFixture(t, "imported")
	registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())

	renames, err := foreign.UpgradeRepository(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", false)
	require.NoError(t, err)

	newID := renames["local-1"]
	require.True(t, repo.Has(newID))

	rev, err := repo.Get(newID)
	require.NoError(t, err)
	require.Equal(t, []string{"git-v2:aaaa"}, rev.Parents)
	require.Equal(t, "local-1", rev.RebaseOf)
	require.Equal(t, "local work", rev.Message)

	// Per-file markers follow the rename.
	require.Equal(t, newID, rev.Files["a.txt"].Revision)

	// The old revisions are left in place; history is copied, not erased.
	require.True(t, repo.Has("git-v1:aaaa"))
	require.True(t, repo.Has("local-1"))
}

func TestUpgradeRepositoryIsIdempotent(t *testing.T) {
	repo, foreignRepo := upgradeFixture(t, "imported")
	registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())

	first, err := foreign.UpgradeRepository(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", false)
	require.NoError(t, err)

	before, err := repo.AllRevisions()
	require.NoError(t, err)

	second, err := foreign.UpgradeRepository(repo, foreignRepo,
		foreign.NewGitMappingV2(), registry, "", false)
	require.NoError(t, err)
	require.Equal(t, first["git-v1:aaaa"], second["git-v1:aaaa"])

	after, err := repo.AllRevisions()
	require.NoError(t, err)
	require.Equal(t, before, after, "a second upgrade creates nothing new")
}

func TestUpgradeWorkingTree(t *testing.T) {
	wt, err := worktree.Init(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, wt.Repo.Commit(mappedRevision("git-v1:aaaa", nil, "imported")))
	require.NoError(t, wt.Repo.Commit(mappedRevision("local-1", []string{"git-v1:aaaa"}, "local work")))
	require.NoError(t, wt.SetLastRevision("local-1"))

	foreignRepo := store.NewMemoryRepository()
	require.NoError(t, foreignRepo.Commit(mappedRevision("git-v2:aaaa", nil, "imported")))

	registry := foreign.NewRegistry(foreign.NewGitMappingV1(), foreign.NewGitMappingV2())
	renames, err := foreign.UpgradeWorkingTree(wt, foreignRepo,
		foreign.NewGitMappingV2(), registry, false)
	require.NoError(t, err)

	head, err := wt.LastRevision()
	require.NoError(t, err)
	require.Equal(t, renames["local-1"], head)

	info, err := wt.LastRevisionInfo()
	require.NoError(t, err)
	require.Equal(t, 2, info.Revno)
}

func TestUpgradeWorkingTreeEmptyBranch(t *testing.T) {
	wt, err := worktree.Init(t.TempDir())
	require.NoError(t, err)

	registry := foreign.NewRegistry(foreign.NewGitMappingV1())
	renames, err := foreign.UpgradeWorkingTree(wt, store.NewMemoryRepository(),
		foreign.NewGitMappingV2(), registry, false)
	require.NoError(t, err)
	require.Empty(t, renames)
}
