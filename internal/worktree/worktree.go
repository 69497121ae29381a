// Package worktree implements the regraft working copy: a directory of
// working files plus a control area holding the branch position, the
// revision store, pending merges, recorded conflicts and the persisted
// rebase state.
package worktree

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/juju/fslock"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/state"
	"regraft.dev/regraft/internal/store"
)

// ControlDirName is the control area directory at the working copy root.
const ControlDirName = ".regraft"

const (
	branchFilename        = "branch"
	pendingMergesFilename = "pending-merges"
	conflictsFilename     = "conflicts"
	lockFilename          = "lock"
)

// WorkTree is an open regraft working copy.
type WorkTree struct {
	root       string
	controlDir string
	lock       *fslock.Lock

	// Repo is the revision store backing this working copy
	Repo *store.FileRepository
	// State persists the rebase plan and active-revision marker
	State *state.Store
}

// Init creates a new working copy rooted at dir.
func Init(dir string) (*WorkTree, error) {
	controlDir := filepath.Join(dir, ControlDirName)
	if _, err := os.Stat(controlDir); err == nil {
		return nil, errors.NewPreconditionError("%s is already a regraft working copy", dir)
	}
	if err := os.MkdirAll(controlDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create control directory: %w", err)
	}
	branchPath := filepath.Join(controlDir, branchFilename)
	content := fmt.Sprintf("0 %s\n", store.NullRevision)
	if err := os.WriteFile(branchPath, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to initialize branch: %w", err)
	}
	if _, err := store.OpenFileRepository(filepath.Join(controlDir, "store")); err != nil {
		return nil, err
	}
	return Open(dir)
}

// Open opens the working copy containing dir, searching upward for the
// control directory.
func Open(dir string) (*WorkTree, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	root := absDir
	for {
		if _, err := os.Stat(filepath.Join(root, ControlDirName)); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, errors.NewPreconditionError("%s is not inside a regraft working copy", absDir)
		}
		root = parent
	}
	controlDir := filepath.Join(root, ControlDirName)
	repo, err := store.OpenFileRepository(filepath.Join(controlDir, "store"))
	if err != nil {
		return nil, err
	}
	return &WorkTree{
		root:       root,
		controlDir: controlDir,
		lock:       fslock.New(filepath.Join(controlDir, lockFilename)),
		Repo:       repo,
		State:      state.NewStore(controlDir),
	}, nil
}

// Root returns the working copy root directory.
func (wt *WorkTree) Root() string {
	return wt.root
}

// Lock takes the working copy write lock. Concurrent operations on one
// working copy are not supported; a held lock fails fast.
func (wt *WorkTree) Lock() error {
	if err := wt.lock.TryLock(); err != nil {
		return fmt.Errorf("another regraft operation is in progress: %w", err)
	}
	return nil
}

// Unlock releases the working copy write lock.
func (wt *WorkTree) Unlock() {
	_ = wt.lock.Unlock()
}

// LastRevisionInfo returns the recorded branch position.
func (wt *WorkTree) LastRevisionInfo() (engine.LastRevisionInfo, error) {
	data, err := os.ReadFile(filepath.Join(wt.controlDir, branchFilename))
	if err != nil {
		return engine.LastRevisionInfo{}, fmt.Errorf("failed to read branch: %w", err)
	}
	revno, revid, ok := strings.Cut(strings.TrimRight(string(data), "\n"), " ")
	if !ok {
		return engine.LastRevisionInfo{}, errors.NewFormatError(string(data))
	}
	n, err := strconv.Atoi(revno)
	if err != nil {
		return engine.LastRevisionInfo{}, errors.NewFormatError(string(data))
	}
	return engine.LastRevisionInfo{Revno: n, RevisionID: revid}, nil
}

// LastRevision returns the branch head revision id.
func (wt *WorkTree) LastRevision() (string, error) {
	info, err := wt.LastRevisionInfo()
	if err != nil {
		return "", err
	}
	return info.RevisionID, nil
}

// SetLastRevision moves the branch to revid, recomputing the revno from
// the length of its first-parent history.
func (wt *WorkTree) SetLastRevision(revid string) error {
	revno := 0
	if revid != store.NullRevision {
		graph, err := store.BuildGraph(wt.Repo, revid)
		if err != nil {
			return err
		}
		revno = len(graph.FirstParentHistory(revid))
	}
	return wt.writeControlFile(branchFilename, formatBranch(revno, revid))
}

func formatBranch(revno int, revid string) string {
	return fmt.Sprintf("%d %s\n", revno, revid)
}

// PendingMerges returns the extra parents recorded for the next commit.
func (wt *WorkTree) PendingMerges() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(wt.controlDir, pendingMergesFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read pending merges: %w", err)
	}
	var merges []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			merges = append(merges, line)
		}
	}
	return merges, nil
}

// AddPendingMerge records an extra parent for the next commit.
func (wt *WorkTree) AddPendingMerge(revid string) error {
	merges, err := wt.PendingMerges()
	if err != nil {
		return err
	}
	for _, m := range merges {
		if m == revid {
			return nil
		}
	}
	merges = append(merges, revid)
	return wt.setPendingMerges(merges)
}

func (wt *WorkTree) setPendingMerges(revids []string) error {
	var b strings.Builder
	for _, id := range revids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	return wt.writeControlFile(pendingMergesFilename, b.String())
}

// ParentIDs returns the parents the next commit would record: the branch
// head (unless the branch is empty) followed by pending merges.
func (wt *WorkTree) ParentIDs() ([]string, error) {
	head, err := wt.LastRevision()
	if err != nil {
		return nil, err
	}
	var parents []string
	if head != store.NullRevision {
		parents = append(parents, head)
	}
	merges, err := wt.PendingMerges()
	if err != nil {
		return nil, err
	}
	return append(parents, merges...), nil
}

// Conflicts returns the recorded conflicted paths.
func (wt *WorkTree) Conflicts() ([]string, error) {
	data, err := os.ReadFile(filepath.Join(wt.controlDir, conflictsFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read conflicts: %w", err)
	}
	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}

// SetConflicts replaces the recorded conflicted paths.
func (wt *WorkTree) SetConflicts(paths []string) error {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return wt.writeControlFile(conflictsFilename, b.String())
}

// Resolve removes paths from the recorded conflicts.
func (wt *WorkTree) Resolve(paths ...string) error {
	current, err := wt.Conflicts()
	if err != nil {
		return err
	}
	resolved := make(map[string]bool, len(paths))
	for _, p := range paths {
		resolved[p] = true
	}
	var remaining []string
	for _, p := range current {
		if !resolved[p] {
			remaining = append(remaining, p)
		}
	}
	return wt.SetConflicts(remaining)
}

func (wt *WorkTree) writeControlFile(name, content string) error {
	path := filepath.Join(wt.controlDir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return os.Rename(tmp, path)
}
