package foreign

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/store"
)

// GitRepository exposes a git repository as a read-only revision store
// under a given mapping. It is the fetch source for mapping upgrades.
type GitRepository struct {
	repo    *git.Repository
	mapping Mapping
}

// OpenGitRepository opens the git repository at path.
func OpenGitRepository(path string, mapping Mapping) (*GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository at %s: %w", path, err)
	}
	return &GitRepository{repo: repo, mapping: mapping}, nil
}

// NewGitRepository wraps an already-open go-git repository.
func NewGitRepository(repo *git.Repository, mapping Mapping) *GitRepository {
	return &GitRepository{repo: repo, mapping: mapping}
}

func (g *GitRepository) commit(revid string) (*object.Commit, error) {
	foreign, ok := g.mapping.Parse(revid)
	if !ok {
		return nil, errors.NewRevisionNotFoundError(revid)
	}
	commit, err := g.repo.CommitObject(plumbing.NewHash(foreign))
	if err != nil {
		if err == plumbing.ErrObjectNotFound {
			return nil, errors.NewRevisionNotFoundError(revid)
		}
		return nil, fmt.Errorf("failed to read commit %s: %w", foreign, err)
	}
	return commit, nil
}

// Has reports whether the revision is present under the mapping
func (g *GitRepository) Has(revid string) bool {
	_, err := g.commit(revid)
	return err == nil
}

// Get converts a git commit into a native revision. The per-file
// last-modified markers all point at the commit itself; git does not
// record them and the distinction only matters for revisions this engine
// rewrites afterwards.
func (g *GitRepository) Get(revid string) (*store.Revision, error) {
	commit, err := g.commit(revid)
	if err != nil {
		return nil, err
	}

	var parents []string
	for _, h := range commit.ParentHashes {
		parents = append(parents, g.mapping.RevisionID(h.String()))
	}

	files := make(map[string]store.Entry)
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to read tree of %s: %w", revid, err)
	}
	err = tree.Files().ForEach(func(f *object.File) error {
		content, err := f.Contents()
		if err != nil {
			return err
		}
		files[f.Name] = store.Entry{FileID: f.Name, Revision: revid, Content: content}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read files of %s: %w", revid, err)
	}

	when := commit.Committer.When
	_, offset := when.Zone()
	return &store.Revision{
		ID:        revid,
		Parents:   parents,
		Committer: fmt.Sprintf("%s <%s>", commit.Committer.Name, commit.Committer.Email),
		Timestamp: when.Unix(),
		Timezone:  offset,
		Message:   commit.Message,
		Origin:    "git:" + commit.Hash.String(),
		Files:     files,
	}, nil
}

// Parents returns the mapped parent ids of a revision
func (g *GitRepository) Parents(revid string) ([]string, error) {
	rev, err := g.Get(revid)
	if err != nil {
		return nil, err
	}
	return rev.Parents, nil
}

// AllRevisions returns the mapped id of every commit in the repository
func (g *GitRepository) AllRevisions() ([]string, error) {
	iter, err := g.repo.CommitObjects()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate commits: %w", err)
	}
	var ids []string
	err = iter.ForEach(func(c *object.Commit) error {
		ids = append(ids, g.mapping.RevisionID(c.Hash.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Commit is not supported; the foreign repository is read-only.
func (g *GitRepository) Commit(rev *store.Revision) error {
	return errors.NewPreconditionError("foreign git repository is read-only")
}
