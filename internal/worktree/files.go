package worktree

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"regraft.dev/regraft/internal/store"
)

// BasisSnapshot returns the file snapshot of the branch head, or an empty
// snapshot for an empty branch.
func (wt *WorkTree) BasisSnapshot() (map[string]store.Entry, error) {
	head, err := wt.LastRevision()
	if err != nil {
		return nil, err
	}
	return wt.RevisionSnapshot(head)
}

// RevisionSnapshot returns the file snapshot of a revision.
func (wt *WorkTree) RevisionSnapshot(revid string) (map[string]store.Entry, error) {
	if revid == store.NullRevision {
		return map[string]store.Entry{}, nil
	}
	rev, err := wt.Repo.Get(revid)
	if err != nil {
		return nil, err
	}
	files := make(map[string]store.Entry, len(rev.Files))
	for path, e := range rev.Files {
		files[path] = e
	}
	return files, nil
}

// DiskSnapshot reads the working files from disk. Entries carry content
// only; file ids and revision markers are resolved at commit time.
func (wt *WorkTree) DiskSnapshot() (map[string]store.Entry, error) {
	files := make(map[string]store.Entry)
	err := filepath.WalkDir(wt.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ControlDirName {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(wt.root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = store.Entry{Content: string(data)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read working files: %w", err)
	}
	return files, nil
}

// HasChanges reports whether the working files differ from the basis.
func (wt *WorkTree) HasChanges() (bool, error) {
	basis, err := wt.BasisSnapshot()
	if err != nil {
		return false, err
	}
	disk, err := wt.DiskSnapshot()
	if err != nil {
		return false, err
	}
	if len(basis) != len(disk) {
		return true, nil
	}
	for path, e := range disk {
		be, ok := basis[path]
		if !ok || be.Content != e.Content {
			return true, nil
		}
	}
	return false, nil
}

// WriteSnapshot replaces the working files with the given snapshot,
// removing files the snapshot does not contain.
func (wt *WorkTree) WriteSnapshot(files map[string]store.Entry) error {
	current, err := wt.DiskSnapshot()
	if err != nil {
		return err
	}
	for path := range current {
		if _, ok := files[path]; ok {
			continue
		}
		if err := os.Remove(filepath.Join(wt.root, filepath.FromSlash(path))); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	for path, e := range files {
		abs := filepath.Join(wt.root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		if err := os.WriteFile(abs, []byte(e.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// CompleteRevert restores the working copy to newParents[0]: working files
// are replaced with its snapshot, the branch position moves to it, the
// remaining parents become pending merges and recorded conflicts are
// cleared. Revisions already created stay in the repository untouched;
// rewriting history never destroys immutable objects.
func (wt *WorkTree) CompleteRevert(newParents []string) error {
	if len(newParents) == 0 {
		newParents = []string{store.NullRevision}
	}
	snapshot, err := wt.RevisionSnapshot(newParents[0])
	if err != nil {
		return err
	}
	if err := wt.WriteSnapshot(snapshot); err != nil {
		return err
	}
	if err := wt.SetLastRevision(newParents[0]); err != nil {
		return err
	}
	if err := wt.setPendingMerges(newParents[1:]); err != nil {
		return err
	}
	return wt.SetConflicts(nil)
}
