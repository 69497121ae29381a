package store

import (
	"sort"

	"regraft.dev/regraft/internal/errors"
)

// Repository is the read/write surface of a revision store.
type Repository interface {
	// Has reports whether the revision is present
	Has(revid string) bool
	// Get returns a revision by id
	Get(revid string) (*Revision, error)
	// Parents returns the parent ids of a revision
	Parents(revid string) ([]string, error)
	// AllRevisions returns every stored revision id
	AllRevisions() ([]string, error)
	// Commit stores a new immutable revision. Storing an id that already
	// exists is an error; revisions are never overwritten.
	Commit(rev *Revision) error
}

// Fetch copies a revision and its transitive ancestry from src into dst.
// Revisions already present in dst are not copied again.
func Fetch(dst, src Repository, revid string) error {
	todo := []string{revid}
	for len(todo) > 0 {
		id := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if id == NullRevision || dst.Has(id) {
			continue
		}
		rev, err := src.Get(id)
		if err != nil {
			return err
		}
		missing := false
		for _, p := range rev.Parents {
			if p != NullRevision && !dst.Has(p) {
				if !missing {
					// Revisit after the parents have been copied
					todo = append(todo, id)
					missing = true
				}
				todo = append(todo, p)
			}
		}
		if missing {
			continue
		}
		if err := dst.Commit(rev.Clone()); err != nil {
			return err
		}
	}
	return nil
}

// MemoryRepository is an in-memory Repository, used by tests and by
// upgrades that operate without a working copy.
type MemoryRepository struct {
	revisions map[string]*Revision
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{revisions: make(map[string]*Revision)}
}

// Has reports whether the revision is present
func (m *MemoryRepository) Has(revid string) bool {
	_, ok := m.revisions[revid]
	return ok
}

// Get returns a revision by id
func (m *MemoryRepository) Get(revid string) (*Revision, error) {
	rev, ok := m.revisions[revid]
	if !ok {
		return nil, errors.NewRevisionNotFoundError(revid)
	}
	return rev.Clone(), nil
}

// Parents returns the parent ids of a revision
func (m *MemoryRepository) Parents(revid string) ([]string, error) {
	rev, ok := m.revisions[revid]
	if !ok {
		return nil, errors.NewRevisionNotFoundError(revid)
	}
	return append([]string(nil), rev.Parents...), nil
}

// AllRevisions returns every stored revision id, sorted
func (m *MemoryRepository) AllRevisions() ([]string, error) {
	ids := make([]string, 0, len(m.revisions))
	for id := range m.revisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Commit stores a new immutable revision
func (m *MemoryRepository) Commit(rev *Revision) error {
	if err := validateRevision(rev); err != nil {
		return err
	}
	if _, ok := m.revisions[rev.ID]; ok {
		return errors.NewPreconditionError("revision %s already exists", rev.ID)
	}
	m.revisions[rev.ID] = rev.Clone()
	return nil
}

func validateRevision(rev *Revision) error {
	if rev.ID == "" || rev.ID == NullRevision {
		return errors.NewPreconditionError("invalid revision id %q", rev.ID)
	}
	for _, p := range rev.Parents {
		if p == rev.ID {
			return errors.NewPreconditionError("revision %s lists itself as parent", rev.ID)
		}
	}
	return nil
}
