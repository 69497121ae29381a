package store

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"regraft.dev/regraft/internal/errors"
)

// FileRepository is an on-disk Repository storing one JSON record per
// revision. Records are written whole-value via rename, so a crash never
// leaves a half-written revision visible.
type FileRepository struct {
	root string
}

// OpenFileRepository opens (creating if needed) a repository rooted at dir.
func OpenFileRepository(dir string) (*FileRepository, error) {
	revDir := filepath.Join(dir, "revisions")
	if err := os.MkdirAll(revDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create revision store: %w", err)
	}
	return &FileRepository{root: dir}, nil
}

// Root returns the store root directory.
func (f *FileRepository) Root() string {
	return f.root
}

func (f *FileRepository) revisionPath(revid string) string {
	// Ids may contain characters that are not filename-safe
	return filepath.Join(f.root, "revisions", url.PathEscape(revid)+".json")
}

// Has reports whether the revision is present
func (f *FileRepository) Has(revid string) bool {
	_, err := os.Stat(f.revisionPath(revid))
	return err == nil
}

// Get returns a revision by id
func (f *FileRepository) Get(revid string) (*Revision, error) {
	data, err := os.ReadFile(f.revisionPath(revid))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewRevisionNotFoundError(revid)
		}
		return nil, fmt.Errorf("failed to read revision %s: %w", revid, err)
	}
	var rev Revision
	if err := json.Unmarshal(data, &rev); err != nil {
		return nil, fmt.Errorf("failed to parse revision %s: %w", revid, err)
	}
	return &rev, nil
}

// Parents returns the parent ids of a revision
func (f *FileRepository) Parents(revid string) ([]string, error) {
	rev, err := f.Get(revid)
	if err != nil {
		return nil, err
	}
	return rev.Parents, nil
}

// AllRevisions returns every stored revision id, sorted
func (f *FileRepository) AllRevisions() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.root, "revisions"))
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		id, err := url.PathUnescape(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Commit stores a new immutable revision
func (f *FileRepository) Commit(rev *Revision) error {
	if err := validateRevision(rev); err != nil {
		return err
	}
	path := f.revisionPath(rev.ID)
	if _, err := os.Stat(path); err == nil {
		return errors.NewPreconditionError("revision %s already exists", rev.ID)
	}
	data, err := json.MarshalIndent(rev, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal revision %s: %w", rev.ID, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write revision %s: %w", rev.ID, err)
	}
	return os.Rename(tmp, path)
}
