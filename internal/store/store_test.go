package store_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/store"
)

func testRevision(id string, parents ...string) *store.Revision {
	return &store.Revision{
		ID:        id,
		Parents:   parents,
		Committer: "Jane Doe <jane@example.com>",
		Timestamp: 1700000000,
		Message:   "commit " + id,
		Files: map[string]store.Entry{
			"hello.txt": {FileID: "hello-id", Revision: id, Content: "content of " + id},
		},
	}
}

func repositoryContract(t *testing.T, repo store.Repository) {
	t.Helper()

	require.False(t, repo.Has("rev-a"))
	_, err := repo.Get("rev-a")
	require.ErrorIs(t, err, errors.ErrRevisionNotFound)

	require.NoError(t, repo.Commit(testRevision("rev-a")))
	require.NoError(t, repo.Commit(testRevision("rev-b", "rev-a")))

	require.True(t, repo.Has("rev-a"))
	rev, err := repo.Get("rev-b")
	require.NoError(t, err)
	require.Equal(t, "commit rev-b", rev.Message)
	require.Equal(t, "content of rev-b", rev.Files["hello.txt"].Content)

	parents, err := repo.Parents("rev-b")
	require.NoError(t, err)
	require.Equal(t, []string{"rev-a"}, parents)

	ids, err := repo.AllRevisions()
	require.NoError(t, err)
	require.Equal(t, []string{"rev-a", "rev-b"}, ids)

	// Revisions are immutable; a second commit under the same id fails.
	var precondErr *errors.PreconditionError
	require.ErrorAs(t, repo.Commit(testRevision("rev-a")), &precondErr)

	require.ErrorAs(t, repo.Commit(testRevision("")), &precondErr)
	require.ErrorAs(t, repo.Commit(testRevision(store.NullRevision)), &precondErr)
	require.ErrorAs(t, repo.Commit(testRevision("rev-x", "rev-x")), &precondErr)
}

func TestMemoryRepository(t *testing.T) {
	repositoryContract(t, store.NewMemoryRepository())
}

func TestFileRepository(t *testing.T) {
	repo, err := store.OpenFileRepository(t.TempDir())
	require.NoError(t, err)
	repositoryContract(t, repo)
}

func TestFileRepositoryReopen(t *testing.T) {
	dir := t.TempDir()
	repo, err := store.OpenFileRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Commit(testRevision("rev-a")))

	reopened, err := store.OpenFileRepository(dir)
	require.NoError(t, err)
	require.True(t, reopened.Has("rev-a"))
	rev, err := reopened.Get("rev-a")
	require.NoError(t, err)
	require.Equal(t, "commit rev-a", rev.Message)
}

func TestFileRepositoryEscapesIDs(t *testing.T) {
	repo, err := store.OpenFileRepository(t.TempDir())
	require.NoError(t, err)

	// Mapped foreign ids contain characters with filesystem meaning.
	id := "git-v1:0123abcd/../weird"
	require.NoError(t, repo.Commit(testRevision(id)))
	require.True(t, repo.Has(id))

	ids, err := repo.AllRevisions()
	require.NoError(t, err)
	require.Equal(t, []string{id}, ids)
}

func TestFetch(t *testing.T) {
	src := store.NewMemoryRepository()
	require.NoError(t, src.Commit(testRevision("rev-a")))
	require.NoError(t, src.Commit(testRevision("rev-b", "rev-a")))
	require.NoError(t, src.Commit(testRevision("rev-x")))
	require.NoError(t, src.Commit(testRevision("rev-m", "rev-b", "rev-x")))

	t.Run("copies the transitive ancestry", func(t *testing.T) {
		dst := store.NewMemoryRepository()
		require.NoError(t, store.Fetch(dst, src, "rev-m"))
		for _, id := range []string{"rev-a", "rev-b", "rev-x", "rev-m"} {
			require.True(t, dst.Has(id), id)
		}
	})

	t.Run("skips revisions already present", func(t *testing.T) {
		dst := store.NewMemoryRepository()
		require.NoError(t, dst.Commit(testRevision("rev-a")))
		require.NoError(t, store.Fetch(dst, src, "rev-b"))
		require.True(t, dst.Has("rev-b"))
	})

	t.Run("fails on a missing source revision", func(t *testing.T) {
		dst := store.NewMemoryRepository()
		err := store.Fetch(dst, src, "rev-gone")
		require.ErrorIs(t, err, errors.ErrRevisionNotFound)
	})
}

func TestGenerateRevisionID(t *testing.T) {
	id := store.GenerateRevisionID("Jane Doe <jane@example.com>", 1700000000)
	require.True(t, strings.HasPrefix(id, "jane-20231114221320-"), id)
	require.NotContains(t, id, " ")

	other := store.GenerateRevisionID("Jane Doe <jane@example.com>", 1700000000)
	require.NotEqual(t, id, other, "each generated id is unique")

	anon := store.GenerateRevisionID("", 0)
	require.True(t, strings.HasPrefix(anon, "unknown-"), anon)
}
