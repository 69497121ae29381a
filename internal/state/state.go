// Package state persists the rebase plan and the active-revision marker
// for one working copy. The presence of a non-empty plan is the sole
// indicator that a rebase is in progress.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"regraft.dev/regraft/internal/engine"
	"regraft.dev/regraft/internal/errors"
	"regraft.dev/regraft/internal/store"
)

const (
	planFilename           = "rebase-plan"
	activeRevisionFilename = "rebase-current"
)

// Store reads and writes rebase state inside a control directory.
type Store struct {
	dir string
}

// NewStore creates a state store over the given control directory.
func NewStore(controlDir string) *Store {
	return &Store{dir: controlDir}
}

// PlanExists reports whether a non-empty rebase plan is stored. A missing
// file and a zero-length file both mean no plan.
func (s *Store) PlanExists() bool {
	data, err := os.ReadFile(filepath.Join(s.dir, planFilename))
	return err == nil && len(data) > 0
}

// ReadPlan returns the stored plan, or ErrNoPlan if none is stored.
func (s *Store) ReadPlan() (engine.LastRevisionInfo, engine.ReplaceMap, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, planFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return engine.LastRevisionInfo{}, nil, errors.ErrNoPlan
		}
		return engine.LastRevisionInfo{}, nil, fmt.Errorf("failed to read rebase plan: %w", err)
	}
	if len(data) == 0 {
		return engine.LastRevisionInfo{}, nil, errors.ErrNoPlan
	}
	return engine.UnmarshalPlan(string(data))
}

// WritePlan stores the branch position and replace map.
func (s *Store) WritePlan(last engine.LastRevisionInfo, replaceMap engine.ReplaceMap) error {
	return s.writeFile(planFilename, engine.MarshalPlan(last, replaceMap))
}

// RemovePlan clears the stored plan. A zero-length value is the canonical
// "no plan" representation, so removal is idempotent.
func (s *Store) RemovePlan() error {
	return s.writeFile(planFilename, "")
}

// WriteActiveRevision records the revision currently mid-replay. An empty
// id means none and is encoded with the reserved null revision token.
func (s *Store) WriteActiveRevision(revid string) error {
	if revid == "" {
		revid = store.NullRevision
	}
	return s.writeFile(activeRevisionFilename, revid)
}

// ReadActiveRevision returns the revision currently mid-replay, or the
// empty string if none is recorded.
func (s *Store) ReadActiveRevision() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, activeRevisionFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read active rebase revision: %w", err)
	}
	revid := strings.TrimRight(string(data), "\n")
	if revid == store.NullRevision {
		return "", nil
	}
	return revid, nil
}

// writeFile replaces the named state file whole-value, so interrupted
// writes never leave a torn plan behind.
func (s *Store) writeFile(name, content string) error {
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}
